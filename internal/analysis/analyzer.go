package analysis

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/adoptai/zapi/internal/config"
	"github.com/adoptai/zapi/internal/domain"
	"github.com/adoptai/zapi/internal/har"
)

// Analyzer runs the full pipeline over one capture file: parse,
// classify, aggregate, estimate, report, and optionally export the
// filtered container. A single Analyzer may run many files; each run
// gets its own Classifier and Aggregator, so concurrent runs are safe.
type Analyzer struct {
	cfg    *config.Config
	logger *slog.Logger
	tracer trace.Tracer
}

// NewAnalyzer creates an analyzer. A nil logger discards output.
func NewAnalyzer(cfg *config.Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{
		cfg:    cfg,
		logger: logger,
		tracer: otel.Tracer("zapi/analysis"),
	}
}

// Result is the outcome of one analysis run.
type Result struct {
	Stats  domain.HarStats
	Report string
	// FilteredPath is the written filtered container, or "" when
	// export was not requested.
	FilteredPath string
}

// AnalyzeFile analyzes the HAR container at path. When saveFiltered is
// set, the accepted subset is written to outputPath (or to
// path+".filtered.har" when outputPath is empty).
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, saveFiltered bool, outputPath string) (*Result, error) {
	ctx, span := a.tracer.Start(ctx, "analysis.AnalyzeFile",
		trace.WithAttributes(attribute.String("har.path", path)))
	defer span.End()

	archive, err := har.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result, keep := a.analyze(archive)

	if saveFiltered {
		if outputPath == "" {
			outputPath = path + ".filtered.har"
		}
		if err := archive.WriteFiltered(outputPath, keep); err != nil {
			return nil, err
		}
		result.FilteredPath = outputPath
	}

	span.SetAttributes(
		attribute.Int("har.total_entries", result.Stats.TotalEntries),
		attribute.Int("har.valid_entries", result.Stats.ValidEntries),
	)
	a.logger.InfoContext(ctx, "analysis complete",
		slog.String("path", path),
		slog.Int("total", result.Stats.TotalEntries),
		slog.Int("valid", result.Stats.ValidEntries),
		slog.Int("skipped", result.Stats.SkippedEntries),
		slog.Int("domains", result.Stats.UniqueDomains),
	)

	return result, nil
}

// AnalyzeArchive analyzes an already-parsed container without touching
// the filesystem.
func (a *Analyzer) AnalyzeArchive(ctx context.Context, archive *har.Archive) *Result {
	_, span := a.tracer.Start(ctx, "analysis.AnalyzeArchive")
	defer span.End()

	result, _ := a.analyze(archive)
	return result
}

func (a *Analyzer) analyze(archive *har.Archive) (*Result, []bool) {
	classifier := NewClassifier(a.cfg.Analysis)
	agg := NewAggregator()
	keep := make([]bool, len(archive.Entries))

	for i := range archive.Entries {
		entry := archive.CaptureEntry(i)
		tag := classifier.Classify(&entry)
		agg.Observe(&entry, tag)
		keep[i] = tag == domain.TagAPIRelevant
	}

	stats := agg.Snapshot()
	model := NewCostModel(a.cfg.Cost)
	stats.EstimatedCostUSD, stats.EstimatedTimeMinutes = model.Estimate(stats.ValidEntries)

	return &Result{Stats: stats, Report: RenderReport(stats)}, keep
}
