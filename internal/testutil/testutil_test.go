package testutil_test

import (
	"os"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/laureate/internal/series"
	"github.com/paveg/laureate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLaureateFrame(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("default configuration", func(t *testing.T) {
		df := testutil.CreateLaureateFrame(t, mem)
		defer df.Release()

		assert.Equal(t, testutil.LaureateRows, df.Len())
		testutil.AssertDataFrameHasColumns(t, df, []string{
			"year", "category", "prize_share", "laureate_id", "laureate_type",
			"full_name", "birth_date", "birth_city", "birth_country", "sex",
		})

		year, _ := df.Column("year")
		assert.Equal(t, series.TypeInt64, year.Type())
		born, _ := df.Column("birth_date")
		assert.Equal(t, series.TypeString, born.Type())
		assert.Equal(t, 2, born.NullN())

		names := testutil.ColumnValues(t, df, "full_name")
		assert.Equal(t, series.StringValue("Marie Curie, née Sklodowska"), names[5])
		assert.Equal(t, series.StringValue("Malala Yousafzai"), names[15])
	})

	t.Run("with custom row count", func(t *testing.T) {
		df := testutil.CreateLaureateFrame(t, mem, testutil.WithRowCount(40))
		defer df.Release()

		assert.Equal(t, 40, df.Len())
		years := testutil.ColumnValues(t, df, "year")
		assert.Equal(t, years[0], years[testutil.LaureateRows])
	})

	t.Run("without columns", func(t *testing.T) {
		df := testutil.CreateLaureateFrame(t, mem, testutil.WithoutColumns("sex", "birth_city"))
		defer df.Release()

		assert.Equal(t, 8, df.Width())
		assert.False(t, df.HasColumn("sex"))
	})

	t.Run("with delimiter", func(t *testing.T) {
		df := testutil.CreateLaureateFrame(t, mem, testutil.WithDelimiter(';'))
		defer df.Release()

		assert.Equal(t, 10, df.Width())
		assert.Equal(t, testutil.LaureateRows, df.Len())
	})
}

func TestLaureateText(t *testing.T) {
	text := testutil.LaureateText(t, testutil.WithRowCount(2), testutil.WithDelimiter('\t'))
	lines := strings.Split(strings.TrimSpace(text), "\n")

	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "year\tcategory\t"))
	assert.True(t, strings.HasPrefix(lines[2], "1901\tLiterature\t"))
}

func TestWriteLaureateCSV(t *testing.T) {
	path := testutil.WriteLaureateCSV(t, t.TempDir())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testutil.LaureateCSV, string(data))
}

func TestAssertDataFrameEqual(t *testing.T) {
	mem := memory.NewGoAllocator()

	a := testutil.CreateLaureateFrame(t, mem)
	defer a.Release()
	b := testutil.CreateLaureateFrame(t, mem)
	defer b.Release()

	testutil.AssertDataFrameEqual(t, a, b)
}
