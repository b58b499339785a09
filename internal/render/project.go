package render

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/paveg/laureate/internal/dataframe"
	dferrors "github.com/paveg/laureate/internal/errors"
	"github.com/paveg/laureate/internal/series"
)

// Point is one plotted observation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Estimate is the mean of the y values sharing one x, with its 95% confidence band.
type Estimate struct {
	X     float64 `json:"x"`
	Mean  float64 `json:"mean"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	N     int     `json:"n"`
}

// Line holds the points of one hue value within one facet.
type Line struct {
	Hue      string     `json:"hue,omitempty"`
	Facet    string     `json:"facet,omitempty"`
	Points   []Point    `json:"points"`
	Estimate []Estimate `json:"estimate,omitempty"`
	Smooth   []Point    `json:"smooth,omitempty"`
}

// Projection is the data a chart is drawn from.
type Projection struct {
	Name       string `json:"name"`
	Kind       Kind   `json:"kind"`
	Title      string `json:"title,omitempty"`
	X          string `json:"x"`
	Y          string `json:"y"`
	Hue        string `json:"hue,omitempty"`
	Facet      string `json:"facet,omitempty"`
	Proportion bool   `json:"proportion"`
	Lines      []Line `json:"lines"`
	// Dropped counts rows left out for a missing x, y, hue or facet value.
	Dropped int `json:"dropped"`
}

// Facets returns the distinct facet values in order of first appearance.
// A projection without a facet column has a single unnamed facet.
func (p *Projection) Facets() []string {
	var facets []string
	for _, l := range p.Lines {
		if !slices.Contains(facets, l.Facet) {
			facets = append(facets, l.Facet)
		}
	}
	return facets
}

// PointCount returns the number of plotted observations.
func (p *Projection) PointCount() int {
	n := 0
	for _, l := range p.Lines {
		n += len(l.Points)
	}
	return n
}

// Project reads the columns named by spec from df. Rows whose x, y, hue or facet
// value is missing are dropped. Lines follow the first appearance of their
// (facet, hue) pair and hold their points sorted by x, ties in row order.
func Project(spec Spec, df *dataframe.DataFrame) (*Projection, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	for _, name := range spec.Columns() {
		if !df.HasColumn(name) {
			return nil, dferrors.NewRenderError(spec.Name, name, "missing input column",
				dferrors.NewColumnNotFoundError("Project", name))
		}
	}

	xs, _ := df.Column(spec.X)
	ys, _ := df.Column(spec.Y)
	for _, col := range []dataframe.ISeries{xs, ys} {
		if !numeric(col.Type()) {
			return nil, dferrors.NewRenderError(spec.Name, col.Name(),
				fmt.Sprintf("column must be numeric, got %s", col.Type()), nil)
		}
	}

	p := &Projection{
		Name:       spec.Name,
		Kind:       spec.Kind,
		Title:      spec.Title,
		X:          spec.X,
		Y:          spec.Y,
		Hue:        spec.Hue,
		Facet:      spec.Facet,
		Proportion: spec.Proportion,
	}

	groups, err := partition(spec, df)
	if err != nil {
		return nil, dferrors.NewRenderError(spec.Name, "", "grouping rows", err)
	}

	for _, g := range groups {
		if slices.ContainsFunc(g.Key, series.Value.IsMissing) {
			p.Dropped += g.Len()
			continue
		}

		line := Line{Points: make([]Point, 0, g.Len())}
		k := 0
		if spec.Facet != "" {
			line.Facet = g.Key[k].String()
			k++
		}
		if spec.Hue != "" {
			line.Hue = g.Key[k].String()
		}

		for _, pos := range g.Rows {
			x, okX := xs.At(pos).Number()
			y, okY := ys.At(pos).Number()
			if !okX || !okY || math.IsNaN(x) || math.IsNaN(y) {
				p.Dropped++
				continue
			}
			line.Points = append(line.Points, Point{X: x, Y: y})
		}
		if len(line.Points) == 0 {
			continue
		}
		slices.SortStableFunc(line.Points, func(a, b Point) int { return cmp.Compare(a.X, b.X) })
		p.Lines = append(p.Lines, line)
	}

	return p, nil
}

// partition splits df by facet then hue. Without either, all rows form one group.
func partition(spec Spec, df *dataframe.DataFrame) ([]dataframe.Group, error) {
	var keys []string
	if spec.Facet != "" {
		keys = append(keys, spec.Facet)
	}
	if spec.Hue != "" {
		keys = append(keys, spec.Hue)
	}

	if len(keys) == 0 {
		rows := make([]int, df.Len())
		for i := range rows {
			rows[i] = i
		}
		return []dataframe.Group{{Rows: rows}}, nil
	}

	gb, err := df.GroupBy(keys...)
	if err != nil {
		return nil, err
	}
	return gb.Groups(), nil
}

func numeric(t series.Type) bool {
	return t == series.TypeInt64 || t == series.TypeFloat64 || t == series.TypeBool
}
