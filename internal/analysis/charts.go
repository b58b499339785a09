package analysis

import (
	"github.com/paveg/laureate/internal/derive"
	"github.com/paveg/laureate/internal/render"
)

// Charts of the analysis, in render order.
var (
	chartUsaBornWinners = render.Spec{
		Name:       "usa_born_winners",
		Kind:       render.KindLine,
		Title:      "Proportion of USA born winners per decade",
		X:          derive.ColDecade,
		Y:          derive.ColUsaBornWinner,
		Proportion: true,
	}
	chartFemaleWinners = render.Spec{
		Name:       "female_winners",
		Kind:       render.KindLine,
		Title:      "Proportion of female winners per decade and category",
		X:          derive.ColDecade,
		Y:          derive.ColFemaleWinner,
		Hue:        derive.ColCategory,
		Proportion: true,
	}
	chartAgeOverYear = render.Spec{
		Name:      "age_over_year",
		Kind:      render.KindLine,
		Title:     "Age of winners at award time",
		X:         derive.ColYear,
		Y:         derive.ColAge,
		Aggregate: true,
	}
	chartAgeLowess = render.Spec{
		Name:  "age_lowess",
		Kind:  render.KindRegression,
		Title: "Age of winners, LOWESS trend",
		X:     derive.ColYear,
		Y:     derive.ColAge,
	}
	chartAgeLowessByCategory = render.Spec{
		Name:  "age_lowess_by_category",
		Kind:  render.KindRegression,
		X:     derive.ColYear,
		Y:     derive.ColAge,
		Facet: derive.ColCategory,
	}
)
