package dataframe

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// maxCellWidth truncates long cells so a printed table stays readable.
const maxCellWidth = 40

// Format writes the frame as an aligned text table: a header row of column names,
// then one line per row prefixed by its row label. Missing cells print as NaN
// (NaT for dates).
func (df *DataFrame) Format(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := make([]string, 0, len(df.order)+1)
	header = append(header, "")
	for _, name := range df.order {
		header = append(header, truncateCell(name))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")+"\t"); err != nil {
		return err
	}

	cells := make([]string, 0, len(df.order)+1)
	for pos := 0; pos < df.Len(); pos++ {
		cells = cells[:0]
		cells = append(cells, strconv.Itoa(df.label(pos)))
		for _, name := range df.order {
			cells = append(cells, truncateCell(df.columns[name].At(pos).String()))
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t"); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// Table returns the Format output as a string.
func (df *DataFrame) Table() string {
	var sb strings.Builder
	_ = df.Format(&sb)
	return sb.String()
}

func truncateCell(s string) string {
	r := []rune(s)
	if len(r) <= maxCellWidth {
		return s
	}
	return string(r[:maxCellWidth-3]) + "..."
}
