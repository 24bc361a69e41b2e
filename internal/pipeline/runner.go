// Package pipeline runs batches: document extraction, glossary indexing
// and page repair, one file at a time, recording every outcome in a
// Report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docgloss/internal/config"
	"github.com/dgallion1/docgloss/internal/extract"
	"github.com/dgallion1/docgloss/internal/parser"
	"github.com/dgallion1/docgloss/internal/store"
	"github.com/dgallion1/docgloss/internal/terms"
)

// Runner wires the extractor and indexer to one store.
type Runner struct {
	cfg       config.Config
	converter *parser.SofficeConverter
	extractor *extract.Extractor
	indexer   *terms.Indexer
	log       *slog.Logger
}

// NewRunner builds a runner from configuration. st may be nil for a
// runner that only repairs pages.
func NewRunner(cfg config.Config, st *store.Store, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	conv := &parser.SofficeConverter{Bin: cfg.SofficeBin, Timeout: cfg.ConvertTimeout}
	return &Runner{
		cfg:       cfg,
		converter: conv,
		extractor: extract.New(st, extract.Config{
			Root:         cfg.Root,
			ImagesDir:    cfg.ImagesDir(),
			Converter:    conv,
			Readers:      parser.ReaderConfig{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
			MaxFileBytes: cfg.MaxFileBytes,
			Logger:       log,
		}),
		indexer: terms.New(st, cfg.Root, log),
		log:     log,
	}
}

// Timings returns per-file extraction durations for this runner.
func (r *Runner) Timings() extract.TimingSnapshot {
	return r.extractor.Timings().Snapshot()
}

// Extract extracts paths, or every document in the assets directory when
// paths is empty.
func (r *Runner) Extract(ctx context.Context, paths []string, report *Report) error {
	if len(paths) == 0 {
		found, err := DiscoverAssets(r.cfg.AssetsDir)
		if err != nil {
			return err
		}
		paths = found
	}
	log := r.log.With("run_id", report.RunID, "stage", StageExtract)
	log.Info("extracting documents", "files", len(paths))
	if !r.converter.Available() {
		log.Warn("legacy converter not found; .doc files will be skipped", "bin", r.cfg.SofficeBin)
	}

	for _, res := range r.extractor.ExtractAll(ctx, paths) {
		detail := ""
		if res.DocumentID != 0 {
			detail = fmt.Sprintf("document %d, %d images", res.DocumentID, res.Images)
		}
		report.Add(Item{
			Stage:  StageExtract,
			Path:   res.Path,
			Status: string(res.Status),
			Detail: detail,
			Error:  errString(res.Err),
		})
	}
	return ctx.Err()
}

// Terms indexes paths, or every glossary page in the details directory
// when paths is empty.
func (r *Runner) Terms(ctx context.Context, paths []string, report *Report) error {
	if len(paths) == 0 {
		found, err := DiscoverTermPages(r.cfg.DetailsDir, r.cfg.IsReservedTermPage)
		if err != nil {
			return err
		}
		paths = found
	}
	log := r.log.With("run_id", report.RunID, "stage", StageTerms)
	log.Info("indexing glossary pages", "files", len(paths))

	for _, res := range r.indexer.IndexAll(ctx, paths) {
		detail := ""
		if res.Status == terms.StatusIndexed {
			detail = fmt.Sprintf("section %d, %d terms", res.Section, res.Terms)
		}
		report.Add(Item{
			Stage:  StageTerms,
			Path:   res.Path,
			Status: string(res.Status),
			Detail: detail,
			Error:  errString(res.Err),
		})
	}
	return ctx.Err()
}

// Build extracts every document, then indexes every glossary page.
func (r *Runner) Build(ctx context.Context) (*Report, error) {
	report := NewReport()
	defer report.Finish()

	if err := r.Extract(ctx, nil, report); err != nil {
		return report, fmt.Errorf("extract: %w", err)
	}
	if err := r.Terms(ctx, nil, report); err != nil {
		return report, fmt.Errorf("terms: %w", err)
	}
	return report, nil
}

// Repair applies opts to each page in order, continuing past failures.
func (r *Runner) Repair(ctx context.Context, paths []string, opts RepairOptions, report *Report) error {
	if opts.Segmentation.Logger == nil {
		opts.Segmentation.Logger = r.log
	}
	if len(opts.Labels) == 0 {
		opts.Labels = r.cfg.NumberingLabels
	}
	if opts.Segmentation.Placeholder == "" {
		opts.Segmentation.Placeholder = r.cfg.SectionPlaceholder
	}
	log := r.log.With("run_id", report.RunID, "stage", StageRepair)

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := RepairPage(p, opts)
		if err != nil {
			log.Error("repair failed", "path", p, "error", err)
		} else {
			log.Info("page repaired", "path", p, "out", res.Out, "status", res.Status,
				"filled", res.Filled, "sections", res.Sections)
		}
		report.Add(Item{
			Stage:  StageRepair,
			Path:   p,
			Status: res.Status,
			Detail: fmt.Sprintf("%d cells filled, %d sections", res.Filled, res.Sections),
			Error:  errString(res.Err),
		})
	}
	return nil
}
