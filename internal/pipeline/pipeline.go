// Package pipeline wires loader, engine, serializer, sink and charts into one run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/dietloom-cli/internal/analysis"
	"github.com/KaramelBytes/dietloom-cli/internal/apperr"
	"github.com/KaramelBytes/dietloom-cli/internal/chart"
	"github.com/KaramelBytes/dietloom-cli/internal/dataset"
	"github.com/KaramelBytes/dietloom-cli/internal/metrics"
	"github.com/KaramelBytes/dietloom-cli/internal/report"
	"github.com/KaramelBytes/dietloom-cli/internal/storage"
)

// StageProcess labels the aggregation step in messages and metrics. It never fails.
const StageProcess = "process"

// Process runs the aggregation engine over an already loaded table.
func Process(raw *dataset.Table, topN int) *analysis.Summary {
	if raw == nil {
		raw = &dataset.Table{}
	}
	return analysis.Summarize(raw, topN)
}

// Options describes one run.
type Options struct {
	Source dataset.Source
	TopN   int
	// ResultsPath is where the JSON document is written.
	ResultsPath string
	// Extended adds the ratio rows to the document.
	Extended bool
	// ChartsPath, when set, renders the chart workbook.
	ChartsPath string
	// PublishContainer and PublishBlob, when both set, copy the document into the blob store.
	PublishContainer string
	PublishBlob      string
	// MetricsTextfile, when set, receives the run gauges whether or not the run succeeds.
	MetricsTextfile string
}

// Outcome reports what a successful run produced.
type Outcome struct {
	RunID       string
	Summary     *analysis.Summary
	Document    any
	ResultsPath string
	Charts      []string
	Published   string
}

// Runner executes runs. Out receives the step messages; Logger the structured logs.
type Runner struct {
	Loader     *dataset.Loader
	Store      storage.BlobStore
	Charts     *chart.Renderer
	Serializer report.Serializer
	Metrics    *metrics.Recorder
	Out        io.Writer
	Logger     *slog.Logger
}

// NewRunner builds a runner over store. Store may be nil for local sources without publishing.
func NewRunner(store storage.BlobStore, out io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		Loader:  dataset.NewLoader(store, logger),
		Store:   store,
		Charts:  chart.NewRenderer(logger),
		Metrics: metrics.NewRecorder(),
		Out:     out,
		Logger:  logger,
	}
}

// Run loads, processes and saves, in that order, stopping at the first failing stage.
// The returned error is the stage error from apperr.
func (r *Runner) Run(ctx context.Context, opt Options) (out *Outcome, err error) {
	if opt.ResultsPath == "" {
		opt.ResultsPath = report.DefaultPath
	}
	runID := uuid.NewString()
	logger := r.Logger.With(slog.String("run_id", runID))
	defer func() {
		if err == nil {
			r.Metrics.MarkSuccess(time.Now())
		}
		if werr := r.Metrics.WriteTextfile(opt.MetricsTextfile); werr != nil {
			logger.Warn("write metrics textfile", slog.String("path", opt.MetricsTextfile), slog.Any("error", werr))
		}
	}()

	r.banner("DIETLOOM RUN STARTED")

	r.printf("\nSTEP 1: Loading %s...\n", opt.Source)
	var raw *dataset.Table
	err = r.stage(dataset.StageLoad, func() error {
		var lerr error
		raw, lerr = r.Loader.Load(ctx, opt.Source)
		return lerr
	})
	if err != nil {
		return nil, err
	}
	r.printf("✓ Loaded %d records from %s\n", raw.Len(), opt.Source)

	r.printf("\nSTEP 2: Processing nutritional data...\n")
	var sum *analysis.Summary
	err = r.stage(StageProcess, func() error {
		sum = Process(raw, opt.TopN)
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Metrics.SetCounts(sum.Raw.Len(), sum.Cleaned.Len(), len(sum.Averages))
	r.printf("✓ Processed %d records\n", sum.Cleaned.Len())
	r.printf("✓ Analyzed %d diet types\n", len(sum.Averages))
	if excluded := sum.Raw.Len() - sum.Cleaned.Len(); excluded > 0 {
		r.printf("⚠ Excluded %d incomplete records\n", excluded)
		logger.Debug("excluded incomplete records", slog.Int("count", excluded))
	}

	r.printf("\nSTEP 3: Saving results...\n")
	var doc any
	if opt.Extended {
		doc = r.Serializer.SerializeExtended(sum.Cleaned, sum.Averages, sum.Top, sum.Ratios)
	} else {
		doc = r.Serializer.Serialize(sum.Cleaned, sum.Averages, sum.Top)
	}
	if err = r.stage(report.StageSave, func() error { return report.WriteFile(doc, opt.ResultsPath) }); err != nil {
		return nil, err
	}
	r.printf("✓ Results saved to %s\n", opt.ResultsPath)

	out = &Outcome{RunID: runID, Summary: sum, Document: doc, ResultsPath: opt.ResultsPath}

	if opt.ChartsPath != "" {
		err = r.stage(chart.StageCharts, func() error {
			var cerr error
			out.Charts, cerr = r.Charts.Render(opt.ChartsPath, sum.Averages, sum.Top)
			return cerr
		})
		if err != nil {
			return nil, err
		}
		r.printf("✓ Charts saved to %s (%s)\n", opt.ChartsPath, strings.Join(out.Charts, ", "))
	}

	if opt.PublishContainer != "" && opt.PublishBlob != "" {
		if r.Store == nil {
			err = apperr.WriteError(report.StagePublish, fmt.Errorf("no blob store configured"))
			r.printf("✗ %v\n", err)
			return nil, err
		}
		err = r.stage(report.StagePublish, func() error {
			return report.Publish(ctx, r.Store, opt.PublishContainer, opt.PublishBlob, doc)
		})
		if err != nil {
			return nil, err
		}
		out.Published = r.Store.URL(opt.PublishContainer, opt.PublishBlob)
		r.printf("✓ Results published to %s\n", out.Published)
	}

	r.banner("✅ DIETLOOM RUN COMPLETED SUCCESSFULLY")
	r.printf("Processed: %d records\n", sum.Cleaned.Len())
	r.printf("Diet types: %d\n", len(sum.Averages))
	r.printf("Output: %s\n", opt.ResultsPath)
	r.printf("%s\n\n", strings.Repeat("=", 70))
	logger.Info("run completed",
		slog.String("source", opt.Source.String()),
		slog.Int("records", sum.Raw.Len()),
		slog.Int("cleaned", sum.Cleaned.Len()),
		slog.Int("diet_types", len(sum.Averages)),
	)
	return out, nil
}

// stage times fn, records it, and prints the failure line.
func (r *Runner) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	r.Metrics.ObserveStage(name, d, err)
	if err != nil {
		r.printf("✗ %v\n", err)
		r.Logger.Error("stage failed", slog.String("stage", name), slog.Duration("elapsed", d), slog.Any("error", err))
		return err
	}
	r.Logger.Debug("stage done", slog.String("stage", name), slog.Duration("elapsed", d))
	return nil
}

func (r *Runner) banner(title string) {
	line := strings.Repeat("=", 70)
	r.printf("\n%s\n%s\n%s\n", line, title, line)
}

func (r *Runner) printf(format string, args ...any) {
	if r.Out == nil {
		return
	}
	fmt.Fprintf(r.Out, format, args...)
}
