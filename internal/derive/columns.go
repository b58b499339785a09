package derive

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/paveg/laureate/internal/dataframe"
	"github.com/paveg/laureate/internal/series"
)

// Column names of the laureate table.
const (
	ColFullName      = "full_name"
	ColSex           = "sex"
	ColBirthCountry  = "birth_country"
	ColYear          = "year"
	ColCategory      = "category"
	ColBirthDate     = "birth_date"
	ColUsaBornWinner = "usa_born_winner"
	ColDecade        = "decade"
	ColFemaleWinner  = "female_winner"
	ColAge           = "age"
)

// USA is the birth_country value of laureates born in the United States.
const USA = "United States of America"

// UsaBornWinner is true when birth_country is exactly USA. A missing country is false.
func UsaBornWinner() Column {
	return Column{
		Name:   ColUsaBornWinner,
		Type:   series.TypeBool,
		Inputs: []string{ColBirthCountry},
		Fn: func(row dataframe.Row) (series.Value, error) {
			return series.BoolValue(row.Get(ColBirthCountry).Equal(series.StringValue(USA))), nil
		},
	}
}

// FemaleWinner is true when sex is exactly "Female". A missing sex is false.
func FemaleWinner() Column {
	return Column{
		Name:   ColFemaleWinner,
		Type:   series.TypeBool,
		Inputs: []string{ColSex},
		Fn: func(row dataframe.Row) (series.Value, error) {
			return series.BoolValue(row.Get(ColSex).Equal(series.StringValue("Female"))), nil
		},
	}
}

// Decade is the award year floored to a multiple of ten, rounding toward negative
// infinity. A missing year gives a missing decade.
func Decade() Column {
	return Column{
		Name:   ColDecade,
		Type:   series.TypeInt64,
		Inputs: []string{ColYear},
		Fn: func(row dataframe.Row) (series.Value, error) {
			year := row.Get(ColYear)
			switch {
			case year.IsMissing():
				return year, nil
			case year.Type() == series.TypeInt64:
				return series.Int64Value(FloorDecade(year.Int64())), nil
			case year.Type() == series.TypeFloat64:
				f := year.Float64()
				if math.IsNaN(f) || math.IsInf(f, 0) {
					return series.Missing(series.TypeInt64), nil
				}
				return series.Int64Value(int64(math.Floor(f/10) * 10)), nil
			default:
				return series.Value{}, fmt.Errorf("year must be numeric, got %s", year.Type())
			}
		},
	}
}

// FloorDecade returns floor(year/10)*10.
func FloorDecade(year int64) int64 {
	q := year / 10
	if year%10 != 0 && year < 0 {
		q--
	}
	return q * 10
}

// BirthDate parses the raw birth_date text into a calendar date, in UTC. Blank
// values are missing; anything dateparse cannot read is an error. A column that
// already holds dates is kept as is.
func BirthDate() Column {
	return Column{
		Name:   ColBirthDate,
		Type:   series.TypeDate,
		Inputs: []string{ColBirthDate},
		Fn: func(row dataframe.Row) (series.Value, error) {
			raw := row.Get(ColBirthDate)
			switch {
			case raw.IsMissing(), raw.Type() == series.TypeDate:
				return raw, nil
			case raw.Type() != series.TypeString:
				return series.Value{}, fmt.Errorf("birth_date must be text, got %s", raw.Type())
			}

			text := strings.TrimSpace(raw.Str())
			if text == "" {
				return series.Missing(series.TypeDate), nil
			}
			t, err := ParseDate(text)
			if err != nil {
				return series.Value{}, err
			}
			return series.DateValue(t), nil
		},
	}
}

// ParseDate reads a date in any layout dateparse understands and truncates it to
// the calendar day in UTC.
func ParseDate(text string) (time.Time, error) {
	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", text, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Age is the award year minus the birth year. A missing year or birth date gives a
// missing age. birth_date must already be a date column (see BirthDate).
func Age() Column {
	return Column{
		Name:   ColAge,
		Type:   series.TypeInt64,
		Inputs: []string{ColYear, ColBirthDate},
		Fn: func(row dataframe.Row) (series.Value, error) {
			year, born := row.Get(ColYear), row.Get(ColBirthDate)
			if year.IsMissing() || born.IsMissing() {
				return series.Missing(series.TypeInt64), nil
			}
			if born.Type() != series.TypeDate {
				return series.Value{}, fmt.Errorf("birth_date must be a date, got %s", born.Type())
			}
			y, ok := year.Number()
			if !ok || year.Type() == series.TypeBool {
				return series.Value{}, fmt.Errorf("year must be numeric, got %s", year.Type())
			}
			return series.Int64Value(int64(math.Floor(y)) - int64(born.Time().Year())), nil
		},
	}
}

// Laureate returns the derivations of the analysis in the order they are applied.
func Laureate() []Column {
	return []Column{UsaBornWinner(), Decade(), FemaleWinner(), BirthDate(), Age()}
}
