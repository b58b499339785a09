// Package render turns chart specs over a record table into PNG artifacts.
//
// A Spec only names columns. Project reads those columns into a Projection,
// the data a chart is drawn from, and Renderer draws it with go-chart.
package render

import (
	dferrors "github.com/paveg/laureate/internal/errors"
)

// Kind selects how a projection is drawn.
type Kind string

const (
	// KindLine draws one line per hue value over the shared x domain.
	KindLine Kind = "line"
	// KindRegression draws the raw points with a LOWESS curve, one panel per facet value.
	KindRegression Kind = "regression"
)

// Spec describes a chart. It owns no data.
type Spec struct {
	Name  string // file name without extension
	Kind  Kind
	Title string
	X, Y  string
	Hue   string // optional: one line per distinct value
	Facet string // optional: one panel per distinct value

	// Proportion fixes the y axis to [0, 1] and labels it in percent.
	Proportion bool
	// Aggregate averages duplicate x values of a line and draws a 95% confidence band.
	Aggregate bool
}

// Columns returns the columns referenced by the spec.
func (s Spec) Columns() []string {
	cols := []string{s.X, s.Y}
	if s.Hue != "" {
		cols = append(cols, s.Hue)
	}
	if s.Facet != "" {
		cols = append(cols, s.Facet)
	}
	return cols
}

// Validate checks the spec itself, independent of any table.
func (s Spec) Validate() error {
	switch {
	case s.Name == "":
		return dferrors.NewRenderError(s.Name, "", "chart name is required", nil)
	case s.X == "" || s.Y == "":
		return dferrors.NewRenderError(s.Name, "", "x and y columns are required", nil)
	case s.Kind != KindLine && s.Kind != KindRegression:
		return dferrors.NewRenderError(s.Name, "", "unknown chart kind "+string(s.Kind), nil)
	}
	return nil
}
