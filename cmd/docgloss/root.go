package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docgloss/internal/config"
	"github.com/dgallion1/docgloss/internal/store"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docgloss",
	Short: "Index department documents and glossary pages",
	Long: `docgloss extracts text and images from department documents into a
SQLite store, indexes glossary pages into searchable terms, and repairs
exported pages (table numbering and collapsible sections).

Configuration comes from the environment or a .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("docgloss %s (commit: %s, built: %s)\n", Version, Commit, BuildDate))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Human-readable debug logs on stderr")
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// env is what every command needs: validated config, a logger and,
// for commands that touch the database, an open store.
type env struct {
	cfg   config.Config
	log   *slog.Logger
	store *store.Store
}

func (e *env) Close() {
	if e.store != nil {
		e.store.Close()
	}
}

func newLogger(w io.Writer, level slog.Level, debug bool) *slog.Logger {
	if debug {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// setup loads configuration and, when withStore is set, opens the store.
func setup(cmd *cobra.Command, withStore bool) (*env, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, verbose)
	slog.SetDefault(log)

	e := &env{cfg: cfg, log: log}
	if !withStore {
		return e, nil
	}
	st, err := store.Open(cfg.DBPath,
		store.WithMkdirAll(),
		store.WithRoot(cfg.Root),
		store.WithAssetsDir(cfg.AssetsDir),
		store.WithExtractedDir(cfg.ExtractedDir),
	)
	if err != nil {
		return nil, err
	}
	e.store = st
	log.Debug("store opened", "path", cfg.DBPath)
	return e, nil
}
