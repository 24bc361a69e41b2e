package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DOCGLOSS_ROOT", "/srv/gloss")
	cfg := Load()

	if cfg.DBPath != filepath.Join("/srv/gloss", "data", "app_data.sqlite") {
		t.Errorf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.ImagesDir() != filepath.Join("/srv/gloss", "data", "extracted", "images") {
		t.Errorf("unexpected images dir %q", cfg.ImagesDir())
	}
	if cfg.ConvertTimeout != 0 {
		t.Errorf("expected unbounded conversion by default, got %v", cfg.ConvertTimeout)
	}
	if !cfg.IsReservedTermPage(12) || !cfg.IsReservedTermPage(13) || cfg.IsReservedTermPage(14) {
		t.Errorf("unexpected reserved pages %v", cfg.ReservedTermPages)
	}
	if len(cfg.NumberingLabels) != 2 || cfg.NumberingLabels[0] != "#" {
		t.Errorf("unexpected numbering labels %v", cfg.NumberingLabels)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DOCGLOSS_DB", "/tmp/x.sqlite")
	t.Setenv("CONVERT_TIMEOUT", "90s")
	t.Setenv("RESERVED_TERM_PAGES", "3, 4")
	t.Setenv("NUMBERING_LABELS", "No., #")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")

	cfg := Load()
	if cfg.DBPath != "/tmp/x.sqlite" {
		t.Errorf("expected absolute db path kept, got %q", cfg.DBPath)
	}
	if cfg.ConvertTimeout != 90*time.Second {
		t.Errorf("expected 90s, got %v", cfg.ConvertTimeout)
	}
	if !cfg.IsReservedTermPage(3) || cfg.IsReservedTermPage(12) {
		t.Errorf("unexpected reserved pages %v", cfg.ReservedTermPages)
	}
	if len(cfg.NumberingLabels) != 2 || cfg.NumberingLabels[0] != "No." {
		t.Errorf("unexpected labels %v", cfg.NumberingLabels)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("RESERVED_TERM_PAGES", "twelve")
	t.Setenv("MAX_FILE_BYTES", "-5")
	cfg := Load()
	if len(cfg.ReservedTermPages) != 2 {
		t.Errorf("expected fallback reserved pages, got %v", cfg.ReservedTermPages)
	}
	if cfg.MaxFileBytes != 104857600 {
		t.Errorf("expected default max file size, got %d", cfg.MaxFileBytes)
	}
}

func TestValidate_RequiresLabels(t *testing.T) {
	cfg := Load()
	cfg.NumberingLabels = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty numbering labels")
	}
}
