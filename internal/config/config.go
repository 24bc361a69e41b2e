package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Store
	DBPath string

	// Filesystem layout. Relative paths are resolved against Root.
	Root         string
	AssetsDir    string
	DetailsDir   string
	ExtractedDir string

	// Legacy .doc conversion
	SofficeBin     string
	ConvertTimeout time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Files larger than this are recorded without content
	MaxFileBytes int64

	// Glossary pages that are document viewers, not term tables.
	ReservedTermPages []int

	// Restructuring
	NumberingLabels    []string
	SectionPlaceholder string

	LogLevel slog.Level
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; variables already set win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		DBPath: envOr("DOCGLOSS_DB", filepath.Join("data", "app_data.sqlite")),

		Root:         envOr("DOCGLOSS_ROOT", "."),
		AssetsDir:    envOr("ASSETS_DIR", filepath.Join("assets", "dep")),
		DetailsDir:   envOr("DETAILS_DIR", filepath.Join("Department", "Details")),
		ExtractedDir: envOr("EXTRACTED_DIR", filepath.Join("data", "extracted")),

		SofficeBin:     envOr("SOFFICE_BIN", "soffice"),
		ConvertTimeout: envDuration("CONVERT_TIMEOUT", 0),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		MaxFileBytes: envInt64("MAX_FILE_BYTES", 104857600), // 100MB

		ReservedTermPages: envInts("RESERVED_TERM_PAGES", []int{12, 13}),

		NumberingLabels:    envList("NUMBERING_LABELS", []string{"#", "الرقم"}),
		SectionPlaceholder: envOr("SECTION_PLACEHOLDER", "Introduction"),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = 104857600
	}
	if cfg.ConvertTimeout < 0 {
		cfg.ConvertTimeout = 0
	}

	cfg.DBPath = cfg.resolve(cfg.DBPath)
	cfg.AssetsDir = cfg.resolve(cfg.AssetsDir)
	cfg.DetailsDir = cfg.resolve(cfg.DetailsDir)
	cfg.ExtractedDir = cfg.resolve(cfg.ExtractedDir)

	return cfg
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("DOCGLOSS_DB is required")
	}
	if c.AssetsDir == "" {
		return fmt.Errorf("ASSETS_DIR is required")
	}
	if c.ExtractedDir == "" {
		return fmt.Errorf("EXTRACTED_DIR is required")
	}
	if len(c.NumberingLabels) == 0 {
		return fmt.Errorf("NUMBERING_LABELS must name at least one label")
	}
	return nil
}

// ImagesDir is where extracted images land, one subdirectory per source stem.
func (c Config) ImagesDir() string {
	return filepath.Join(c.ExtractedDir, "images")
}

// IsReservedTermPage reports whether a glossary page number is a viewer page.
func (c Config) IsReservedTermPage(n int) bool {
	for _, r := range c.ReservedTermPages {
		if r == n {
			return true
		}
	}
	return false
}

func (c Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func envInts(key string, fallback []int) []int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fallback
		}
		out = append(out, n)
	}
	return out
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			return l
		}
	}
	return fallback
}
