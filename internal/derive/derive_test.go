package derive_test

import (
	"errors"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/laureate/internal/dataframe"
	"github.com/paveg/laureate/internal/derive"
	dferrors "github.com/paveg/laureate/internal/errors"
	"github.com/paveg/laureate/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLaureates(t *testing.T) *dataframe.DataFrame {
	t.Helper()
	mem := memory.NewGoAllocator()

	country, err := series.NewNullable(derive.ColBirthCountry,
		[]string{"United States of America", "France", "", "united states of america"},
		[]bool{true, true, false, true}, mem)
	require.NoError(t, err)
	sex, err := series.NewNullable(derive.ColSex,
		[]string{"Female", "Male", "", "female"},
		[]bool{true, true, false, true}, mem)
	require.NoError(t, err)
	born, err := series.NewNullable(derive.ColBirthDate,
		[]string{"1867-11-07", "1852-08-30", "", "1997-07-12"},
		[]bool{true, true, false, true}, mem)
	require.NoError(t, err)

	return dataframe.New(
		series.New(derive.ColFullName, []string{"A", "B", "Red Cross", "Malala"}, mem),
		series.New(derive.ColYear, []int64{1903, 1909, 1917, 2014}, mem),
		country, sex, born,
	)
}

func column(t *testing.T, df *dataframe.DataFrame, name string) []series.Value {
	t.Helper()
	col, ok := df.Column(name)
	require.True(t, ok, name)
	values := make([]series.Value, col.Len())
	for i := range values {
		values[i] = col.At(i)
	}
	return values
}

func TestLaureateDerivations(t *testing.T) {
	df := newLaureates(t)
	defer df.Release()

	require.NoError(t, derive.Apply(df, derive.Laureate()...))

	assert.Equal(t, []string{
		"full_name", "year", "birth_country", "sex", "birth_date",
		"usa_born_winner", "decade", "female_winner", "age",
	}, df.Columns())

	assert.Equal(t, []series.Value{
		series.BoolValue(true), series.BoolValue(false), series.BoolValue(false), series.BoolValue(false),
	}, column(t, df, derive.ColUsaBornWinner))

	assert.Equal(t, []series.Value{
		series.Int64Value(1900), series.Int64Value(1900), series.Int64Value(1910), series.Int64Value(2010),
	}, column(t, df, derive.ColDecade))

	assert.Equal(t, []series.Value{
		series.BoolValue(true), series.BoolValue(false), series.BoolValue(false), series.BoolValue(false),
	}, column(t, df, derive.ColFemaleWinner))

	dates := column(t, df, derive.ColBirthDate)
	assert.Equal(t, series.TypeDate, dates[0].Type())
	assert.Equal(t, time.Date(1867, 11, 7, 0, 0, 0, 0, time.UTC), dates[0].Time())
	assert.True(t, dates[2].IsMissing())

	ages := column(t, df, derive.ColAge)
	assert.Equal(t, series.Int64Value(36), ages[0])
	assert.Equal(t, series.Int64Value(57), ages[1])
	assert.True(t, ages[2].IsMissing())
	assert.Equal(t, series.Int64Value(17), ages[3])
}

func TestBirthDateReplacesInPlace(t *testing.T) {
	df := newLaureates(t)
	defer df.Release()

	before := df.Columns()
	require.NoError(t, derive.AddColumn(df, derive.BirthDate()))
	assert.Equal(t, before, df.Columns())

	// deriving again over a date column is a no-op
	require.NoError(t, derive.AddColumn(df, derive.BirthDate()))
	col, _ := df.Column(derive.ColBirthDate)
	assert.Equal(t, series.TypeDate, col.Type())
}

func TestBirthDateLayouts(t *testing.T) {
	tests := []struct {
		text     string
		expected time.Time
	}{
		{"1867-11-07", time.Date(1867, 11, 7, 0, 0, 0, 0, time.UTC)},
		{"1867-11-07 00:00:00", time.Date(1867, 11, 7, 0, 0, 0, 0, time.UTC)},
		{"11/07/1867", time.Date(1867, 11, 7, 0, 0, 0, 0, time.UTC)},
		{"November 7, 1867", time.Date(1867, 11, 7, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := derive.ParseDate(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDerivationErrors(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("unparsable birth date", func(t *testing.T) {
		df := dataframe.New(
			series.New(derive.ColYear, []int64{1901, 1902}, mem),
			series.New(derive.ColBirthDate, []string{"1852-08-30", "not a date"}, mem),
		)
		defer df.Release()

		err := derive.AddColumn(df, derive.BirthDate())
		require.Error(t, err)
		assert.True(t, errors.Is(err, dferrors.ErrDerivation))

		var dfErr *dferrors.DataFrameError
		require.True(t, errors.As(err, &dfErr))
		assert.Equal(t, 1, dfErr.Row)
		assert.Equal(t, derive.ColBirthDate, dfErr.Column)

		// the table is untouched
		col, _ := df.Column(derive.ColBirthDate)
		assert.Equal(t, series.TypeString, col.Type())
	})

	t.Run("missing input column", func(t *testing.T) {
		df := dataframe.New(series.New(derive.ColYear, []int64{1901}, mem))
		defer df.Release()

		err := derive.AddColumn(df, derive.UsaBornWinner())
		require.Error(t, err)
		assert.True(t, errors.Is(err, dferrors.ErrDerivation))
		assert.True(t, errors.Is(err, dferrors.ErrColumnNotFound))
		assert.False(t, df.HasColumn(derive.ColUsaBornWinner))
	})

	t.Run("age before birth date is typed", func(t *testing.T) {
		df := dataframe.New(
			series.New(derive.ColYear, []int64{1901}, mem),
			series.New(derive.ColBirthDate, []string{"1852-08-30"}, mem),
		)
		defer df.Release()

		err := derive.AddColumn(df, derive.Age())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "birth_date must be a date, got string")
	})

	t.Run("wrong result type", func(t *testing.T) {
		df := dataframe.New(series.New(derive.ColYear, []int64{1901}, mem))
		defer df.Release()

		err := derive.AddColumn(df, derive.Column{
			Name: "flag",
			Type: series.TypeBool,
			Fn: func(dataframe.Row) (series.Value, error) {
				return series.Int64Value(1), nil
			},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at row 0: produced int64, column type is bool")
	})
}

func TestDecade(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("integer years", func(t *testing.T) {
		tests := []struct {
			year, decade int64
		}{
			{1901, 1900}, {1910, 1910}, {1999, 1990}, {2016, 2010},
			{0, 0}, {-1, -10}, {-10, -10}, {-15, -20},
		}
		for _, tt := range tests {
			got := derive.FloorDecade(tt.year)
			assert.Equal(t, tt.decade, got, "year %d", tt.year)
			assert.Zero(t, got%10)
		}
	})

	t.Run("float and missing years", func(t *testing.T) {
		years, err := series.NewNullable(derive.ColYear, []float64{1905.5, -3, 0}, []bool{true, true, false}, mem)
		require.NoError(t, err)
		df := dataframe.New(years)
		defer df.Release()

		require.NoError(t, derive.AddColumn(df, derive.Decade()))
		assert.Equal(t, []series.Value{
			series.Int64Value(1900), series.Int64Value(-10), series.Missing(series.TypeInt64),
		}, column(t, df, derive.ColDecade))
	})
}

func TestDerivedColumnsUseFrameAllocator(t *testing.T) {
	checked := memory.NewCheckedAllocator(memory.NewGoAllocator())
	df := newLaureates(t).WithAllocator(checked)
	defer df.Release()

	require.NoError(t, derive.AddColumn(df, derive.UsaBornWinner()))
	afterFlag := checked.CurrentAlloc()
	assert.Positive(t, afterFlag)

	require.NoError(t, derive.Apply(df, derive.Decade(), derive.BirthDate(), derive.Age()))
	assert.Greater(t, checked.CurrentAlloc(), afterFlag)
}
