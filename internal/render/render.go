package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/paveg/laureate/internal/dataframe"
	dferrors "github.com/paveg/laureate/internal/errors"
	"github.com/paveg/laureate/internal/logger"
	"github.com/paveg/laureate/internal/parallel"
)

// regressionAspect is the width to height ratio of a regression panel.
const regressionAspect = 2

// Options configures a Renderer.
type Options struct {
	OutputDir        string
	Width, Height    int // pixels
	DPI              int
	LowessFrac       float64
	LowessIterations int
	Workers          int // goroutines smoothing lines and drawing panels; 1 runs inline, 0 means one per CPU
}

// DefaultOptions returns an 11x7 inch figure at 100 dpi smoothed with frac 2/3
// and three robustifying iterations, drawn on the calling goroutine.
func DefaultOptions() Options {
	return Options{
		OutputDir:        "figures",
		Width:            1100,
		Height:           700,
		DPI:              100,
		LowessFrac:       2.0 / 3.0,
		LowessIterations: 3,
		Workers:          1,
	}
}

// Artifact is a rendered chart.
type Artifact struct {
	Spec       Spec
	Path       string
	Projection *Projection
}

// Renderer writes charts as PNG files into its output directory.
type Renderer struct {
	opts   Options
	logger *slog.Logger
}

// NewRenderer creates a renderer. A nil logger discards.
func NewRenderer(opts Options, log *slog.Logger) *Renderer {
	if log == nil {
		log = logger.Discard()
	}
	return &Renderer{opts: opts, logger: log}
}

// Render projects spec over df, draws it and writes <OutputDir>/<Name>.png.
// Every failure, including a column missing from df, is a RenderError.
func (r *Renderer) Render(spec Spec, df *dataframe.DataFrame) (*Artifact, error) {
	p, err := Project(spec, df)
	if err != nil {
		return nil, err
	}
	if p.PointCount() == 0 {
		return nil, dferrors.NewRenderError(spec.Name, "", "no data to plot", nil)
	}

	pool := parallel.NewWorkerPool(r.opts.Workers)
	defer pool.Close()

	r.summarize(pool, spec, p)

	panels, err := parallel.TryProcessIndexed(pool, p.Facets(), func(_ int, facet string) (image.Image, error) {
		return r.drawPanel(p, facet)
	})
	if err != nil {
		return nil, dferrors.NewRenderError(spec.Name, "", "drawing chart", err)
	}

	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return nil, dferrors.NewRenderError(spec.Name, "", "creating output directory", err)
	}
	path := filepath.Join(r.opts.OutputDir, spec.Name+".png")
	if err := writePNG(path, stack(panels)); err != nil {
		return nil, dferrors.NewRenderError(spec.Name, "", "writing image", err)
	}

	r.logger.Debug("chart rendered",
		slog.String("chart", spec.Name),
		slog.String("path", path),
		slog.Int("points", p.PointCount()),
		slog.Int("panels", len(panels)),
		slog.Int("dropped", p.Dropped))

	return &Artifact{Spec: spec, Path: path, Projection: p}, nil
}

// summarize adds the derived curves to every line: means with a confidence
// band for aggregated line charts, the LOWESS curve for regression charts.
func (r *Renderer) summarize(pool *parallel.WorkerPool, spec Spec, p *Projection) {
	parallel.ProcessIndexed(pool, p.Lines, func(i int, line Line) struct{} {
		switch {
		case spec.Kind == KindLine && spec.Aggregate:
			p.Lines[i].Estimate = EstimateMeans(line.Points)
		case spec.Kind == KindRegression:
			p.Lines[i].Smooth = Lowess(line.Points, r.opts.LowessFrac, r.opts.LowessIterations)
		}
		return struct{}{}
	})
}

func (r *Renderer) drawPanel(p *Projection, facet string) (image.Image, error) {
	width, height := r.opts.Width, r.opts.Height
	title := p.Title
	if p.Kind == KindRegression {
		height = width / regressionAspect
	}
	if p.Facet != "" {
		title = fmt.Sprintf("%s = %s", p.Facet, facet)
	}

	var (
		series []chart.Series
		bounds = newExtent()
		named  int
	)
	for i, line := range p.Lines {
		if line.Facet != facet {
			continue
		}
		color := chart.GetDefaultColor(i)
		name := line.Hue
		if name == "" {
			name = p.Y
		}

		switch {
		case p.Kind == KindRegression:
			series = append(series,
				scatterSeries(name, line.Points, color),
				pointSeries("lowess", line.Smooth, chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 2}))
			bounds.addPoints(line.Points)
			bounds.addPoints(line.Smooth)
			named += 2
		case len(line.Estimate) > 0:
			series = append(series, estimateSeries(name, line.Estimate, color)...)
			bounds.addEstimates(line.Estimate)
			named += 3
		default:
			series = append(series, pointSeries(name, line.Points, chart.Style{StrokeColor: color, StrokeWidth: 2}))
			bounds.addPoints(line.Points)
			named++
		}
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("facet %q has no data", facet)
	}

	ch := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		DPI:        float64(r.opts.DPI),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:           p.X,
			Range:          bounds.xRange(),
			ValueFormatter: numberFormatter(bounds.integralX),
		},
		YAxis:  yAxis(p, bounds),
		Series: series,
	}
	if named > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

func yAxis(p *Projection, bounds *extent) chart.YAxis {
	if !p.Proportion {
		return chart.YAxis{
			Name:           p.Y,
			Range:          bounds.yRange(),
			ValueFormatter: numberFormatter(false),
		}
	}

	ticks := make([]chart.Tick, 0, 6)
	for i := 0; i <= 5; i++ {
		v := float64(i) / 5
		ticks = append(ticks, chart.Tick{Value: v, Label: PercentLabel(v)})
	}
	return chart.YAxis{
		Name:  p.Y,
		Range: &chart.ContinuousRange{Min: 0, Max: 1},
		Ticks: ticks,
	}
}

// PercentLabel formats a proportion in [0, 1] as a whole percentage.
func PercentLabel(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 0, 64) + "%"
}

func numberFormatter(integral bool) chart.ValueFormatter {
	return func(v interface{}) string {
		f, ok := v.(float64)
		if !ok {
			return fmt.Sprint(v)
		}
		if integral {
			return strconv.FormatFloat(math.Round(f), 'f', 0, 64)
		}
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
}

func pointSeries(name string, points []Point, style chart.Style) chart.ContinuousSeries {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, pt := range points {
		xs[i], ys[i] = pt.X, pt.Y
	}
	return chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: style}
}

// scatterSeries draws the points only, without connecting lines.
func scatterSeries(name string, points []Point, color drawing.Color) chart.ContinuousSeries {
	return pointSeries(name, points, chart.Style{
		StrokeWidth: 0,
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    4,
		DotColor:    color.WithAlpha(160),
	})
}

// estimateSeries draws the mean line with dashed lower and upper band bounds.
func estimateSeries(name string, estimates []Estimate, color drawing.Color) []chart.Series {
	mean := make([]Point, len(estimates))
	lower := make([]Point, len(estimates))
	upper := make([]Point, len(estimates))
	for i, e := range estimates {
		mean[i] = Point{X: e.X, Y: e.Mean}
		lower[i] = Point{X: e.X, Y: e.Lower}
		upper[i] = Point{X: e.X, Y: e.Upper}
	}

	band := chart.Style{StrokeColor: color.WithAlpha(110), StrokeWidth: 1, StrokeDashArray: []float64{4, 3}}
	return []chart.Series{
		pointSeries(name, mean, chart.Style{StrokeColor: color, StrokeWidth: 2}),
		pointSeries(name+" 95% CI", lower, band),
		pointSeries(name+" 95% CI", upper, band),
	}
}

// stack arranges panels top to bottom on a white background.
func stack(panels []image.Image) image.Image {
	if len(panels) == 1 {
		return panels[0]
	}

	width, height := 0, 0
	for _, p := range panels {
		b := p.Bounds()
		width = max(width, b.Dx())
		height += b.Dy()
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	y := 0
	for _, p := range panels {
		b := p.Bounds()
		draw.Draw(out, image.Rect(0, y, b.Dx(), y+b.Dy()), p, b.Min, draw.Over)
		y += b.Dy()
	}
	return out
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}

// extent tracks the data bounds of a panel so every axis gets an explicit,
// non-degenerate range.
type extent struct {
	minX, maxX, minY, maxY float64
	integralX              bool
}

func newExtent() *extent {
	return &extent{
		minX: math.Inf(1), maxX: math.Inf(-1),
		minY: math.Inf(1), maxY: math.Inf(-1),
		integralX: true,
	}
}

func (e *extent) add(x, y float64) {
	e.minX, e.maxX = math.Min(e.minX, x), math.Max(e.maxX, x)
	e.minY, e.maxY = math.Min(e.minY, y), math.Max(e.maxY, y)
	if x != math.Trunc(x) {
		e.integralX = false
	}
}

func (e *extent) addPoints(points []Point) {
	for _, p := range points {
		e.add(p.X, p.Y)
	}
}

func (e *extent) addEstimates(estimates []Estimate) {
	for _, est := range estimates {
		e.add(est.X, est.Lower)
		e.add(est.X, est.Upper)
	}
}

func (e *extent) xRange() *chart.ContinuousRange {
	lo, hi := padded(e.minX, e.maxX, 0)
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func (e *extent) yRange() *chart.ContinuousRange {
	lo, hi := padded(e.minY, e.maxY, 0.05)
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// padded widens [lo, hi] by frac of its span, or by one when the span is zero.
func padded(lo, hi, frac float64) (float64, float64) {
	span := hi - lo
	if span <= 0 {
		return lo - 1, hi + 1
	}
	return lo - span*frac, hi + span*frac
}
