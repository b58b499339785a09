// Package analysis runs the laureate analysis: thirteen steps over one record
// table, printing summaries to a writer and rendering charts to a directory.
package analysis

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"

	"github.com/paveg/laureate/internal/config"
	"github.com/paveg/laureate/internal/dataframe"
	dferrors "github.com/paveg/laureate/internal/errors"
	lio "github.com/paveg/laureate/internal/io"
	"github.com/paveg/laureate/internal/logger"
	lmem "github.com/paveg/laureate/internal/memory"
	"github.com/paveg/laureate/internal/monitoring"
	"github.com/paveg/laureate/internal/render"
)

// ManifestFile is the name of the manifest written to the output directory.
const ManifestFile = "manifest.json"

// Result holds every table printed by a run and every chart it rendered.
// Release frees the tables.
type Result struct {
	RunID string

	Table *dataframe.DataFrame // the loaded table with all derived columns

	Head                   *dataframe.DataFrame
	Rows                   int
	SexCounts              *dataframe.DataFrame
	TopCountries           *dataframe.DataFrame
	UsaBornByDecade        *dataframe.DataFrame
	FemaleByDecadeCategory *dataframe.DataFrame
	FirstFemaleWinner      *dataframe.DataFrame
	RepeatWinners          *dataframe.DataFrame
	OldestWinner           *dataframe.DataFrame
	YoungestWinner         *dataframe.DataFrame
	YoungestName           string

	Artifacts    []*render.Artifact
	RenderErrors []error
	Metrics      monitoring.MetricsSummary
	PeakBytes    int64 // highest Arrow memory held during the run
}

// Release releases the Arrow memory of every table in the result.
func (r *Result) Release() {
	for _, df := range []*dataframe.DataFrame{
		r.Table, r.Head, r.SexCounts, r.TopCountries, r.UsaBornByDecade,
		r.FemaleByDecadeCategory, r.FirstFemaleWinner, r.RepeatWinners,
		r.OldestWinner, r.YoungestWinner,
	} {
		if df != nil {
			df.Release()
		}
	}
}

// Pipeline runs the analysis with one configuration.
type Pipeline struct {
	cfg      config.Config
	out      io.Writer
	logger   *slog.Logger
	mem      *lmem.TrackingAllocator
	renderer *render.Renderer
	metrics  *monitoring.MetricsCollector
}

// New creates a pipeline printing to out. A nil logger discards.
func New(cfg config.Config, out io.Writer, log *slog.Logger) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}
	return &Pipeline{
		cfg:    cfg,
		out:    out,
		logger: log,
		mem:    lmem.NewTrackingAllocator(nil),
	}
}

// WithAllocator sets the allocator backing every table of the run.
func (p *Pipeline) WithAllocator(mem memory.Allocator) *Pipeline {
	p.mem = lmem.NewTrackingAllocator(mem)
	return p
}

// Run executes the analysis. Load and derivation failures abort the run; a chart
// that cannot be rendered is logged and recorded in Result.RenderErrors.
func (p *Pipeline) Run() (*Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	res := &Result{RunID: uuid.NewString()}
	log := p.logger.With(slog.String("run_id", res.RunID))
	p.metrics = monitoring.NewMetricsCollector(true, log)
	p.renderer = render.NewRenderer(render.Options{
		OutputDir:        p.cfg.OutputDir,
		Width:            p.cfg.Width(),
		Height:           p.cfg.Height(),
		DPI:              p.cfg.DPI,
		LowessFrac:       p.cfg.LowessFrac,
		LowessIterations: p.cfg.LowessIterations,
		Workers:          p.cfg.Workers,
	}, log)

	log.Info("analysis started", slog.String("data", p.cfg.DataPath), slog.String("out", p.cfg.OutputDir))

	s := &steps{p: p, res: res, log: log}
	for _, step := range s.all() {
		if err := p.metrics.RecordStep(step.name, step.run); err != nil {
			res.Metrics = p.metrics.GetSummary()
			log.Error("analysis failed", slog.String("step", step.name), slog.Any("error", err))
			return res, err
		}
	}

	if err := p.finish(res, log); err != nil {
		return res, err
	}

	res.Metrics = p.metrics.GetSummary()
	res.PeakBytes = p.mem.Peak()
	log.Info("analysis finished",
		slog.Int("rows", res.Rows),
		slog.Int("charts", len(res.Artifacts)),
		slog.Int("render_errors", len(res.RenderErrors)),
		slog.Any("metrics", res.Metrics),
		slog.Any("arrow_memory", p.mem))
	return res, nil
}

// finish writes the optional snapshot of the derived table and the manifest.
func (p *Pipeline) finish(res *Result, log *slog.Logger) error {
	if p.cfg.SnapshotPath != "" {
		err := p.metrics.RecordStep("snapshot", func() (int, error) {
			return res.Table.Len(), lio.Save(p.cfg.SnapshotPath, res.Table, p.ioOptions())
		})
		if err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		log.Info("snapshot written", slog.String("path", p.cfg.SnapshotPath))
	}

	if !p.cfg.WriteManifest {
		return nil
	}
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(p.cfg.OutputDir, ManifestFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	if err := render.WriteManifest(f, res.Artifacts); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing manifest: %w", err)
	}
	log.Debug("manifest written", slog.String("path", path))
	return nil
}

func (p *Pipeline) ioOptions() lio.Options {
	opts := lio.DefaultOptions()
	opts.CSV.Delimiter = p.cfg.DelimiterRune()
	return opts
}

// render draws spec over df. A failure is logged and recorded, never returned.
func (p *Pipeline) render(res *Result, log *slog.Logger, spec render.Spec, df *dataframe.DataFrame) {
	artifact, err := p.renderer.Render(spec, df)
	if err != nil {
		log.Warn("chart skipped", slog.String("chart", spec.Name), slog.Any("error", err))
		res.RenderErrors = append(res.RenderErrors, err)
		return
	}
	res.Artifacts = append(res.Artifacts, artifact)
}

// print writes a table followed by a blank line.
func (p *Pipeline) print(df *dataframe.DataFrame) error {
	if err := df.Format(p.out); err != nil {
		return dferrors.NewInternalError("print", err)
	}
	_, err := fmt.Fprintln(p.out)
	return err
}
