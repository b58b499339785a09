package analysis

import (
	"fmt"
	"log/slog"

	"github.com/paveg/laureate/internal/dataframe"
	"github.com/paveg/laureate/internal/derive"
	lio "github.com/paveg/laureate/internal/io"
)

type step struct {
	name string
	run  func() (rows int, err error)
}

// steps threads the record table through the analysis. Every step reads or
// extends res.Table.
type steps struct {
	p   *Pipeline
	res *Result
	log *slog.Logger
}

// all returns the steps in the order their output is printed.
func (s *steps) all() []step {
	return []step{
		{"load", s.load},
		{"head", s.head},
		{"count", s.count},
		{"sex_counts", s.sexCounts},
		{"top_countries", s.topCountries},
		{"usa_born_winners", s.usaBornWinners},
		{"female_winners", s.femaleWinners},
		{"first_female_winner", s.firstFemaleWinner},
		{"repeat_winners", s.repeatWinners},
		{"age", s.age},
		{"age_lowess", s.ageLowess},
		{"oldest_winner", s.oldestWinner},
		{"youngest_winner", s.youngestWinner},
		{"youngest_name", s.youngestName},
	}
}

func (s *steps) load() (int, error) {
	df, err := lio.Load(s.p.cfg.DataPath, s.p.ioOptions(), s.p.mem)
	if err != nil {
		return 0, err
	}
	s.res.Table = df
	s.log.Debug("table loaded", slog.Int("rows", df.Len()), slog.Any("columns", df.Columns()))
	return df.Len(), nil
}

func (s *steps) head() (int, error) {
	head, err := s.res.Table.Head(s.p.cfg.HeadRows)
	if err != nil {
		return 0, err
	}
	s.res.Head = head
	return head.Len(), s.p.print(head)
}

func (s *steps) count() (int, error) {
	s.res.Rows = s.res.Table.Len()
	_, err := fmt.Fprintf(s.p.out, "%d\n\n", s.res.Rows)
	return s.res.Rows, err
}

func (s *steps) sexCounts() (int, error) {
	counts, err := s.res.Table.ValueCounts(derive.ColSex)
	if err != nil {
		return 0, err
	}
	s.res.SexCounts = counts
	return s.res.Table.Len(), s.p.print(counts)
}

func (s *steps) topCountries() (int, error) {
	counts, err := s.res.Table.ValueCounts(derive.ColBirthCountry)
	if err != nil {
		return 0, err
	}
	defer counts.Release()

	top, err := counts.Head(s.p.cfg.TopCountries)
	if err != nil {
		return 0, err
	}
	s.res.TopCountries = top
	return s.res.Table.Len(), s.p.print(top)
}

func (s *steps) usaBornWinners() (int, error) {
	df := s.res.Table
	if err := derive.Apply(df, derive.UsaBornWinner(), derive.Decade()); err != nil {
		return 0, err
	}

	gb, err := df.GroupBy(derive.ColDecade)
	if err != nil {
		return 0, err
	}
	prop, err := gb.Mean(derive.ColUsaBornWinner)
	if err != nil {
		return 0, err
	}
	s.res.UsaBornByDecade = prop
	if err := s.p.print(prop); err != nil {
		return 0, err
	}

	s.p.render(s.res, s.log, chartUsaBornWinners, prop)
	return df.Len(), nil
}

func (s *steps) femaleWinners() (int, error) {
	df := s.res.Table
	if err := derive.AddColumn(df, derive.FemaleWinner()); err != nil {
		return 0, err
	}

	gb, err := df.GroupBy(derive.ColDecade, derive.ColCategory)
	if err != nil {
		return 0, err
	}
	prop, err := gb.Mean(derive.ColFemaleWinner)
	if err != nil {
		return 0, err
	}
	s.res.FemaleByDecadeCategory = prop

	s.p.render(s.res, s.log, chartFemaleWinners, prop)
	return df.Len(), nil
}

func (s *steps) firstFemaleWinner() (int, error) {
	female, err := s.res.Table.Filter(dataframe.IsTrue(derive.ColFemaleWinner))
	if err != nil {
		return 0, err
	}
	defer female.Release()

	first, err := female.NSmallest(1, derive.ColYear)
	if err != nil {
		return 0, err
	}
	s.res.FirstFemaleWinner = first
	return female.Len(), s.p.print(first)
}

func (s *steps) repeatWinners() (int, error) {
	gb, err := s.res.Table.GroupBy(derive.ColFullName)
	if err != nil {
		return 0, err
	}
	repeat, err := gb.Filter(dataframe.MinSize(2))
	if err != nil {
		return 0, err
	}
	s.res.RepeatWinners = repeat
	return s.res.Table.Len(), s.p.print(repeat)
}

func (s *steps) age() (int, error) {
	df := s.res.Table
	if err := derive.Apply(df, derive.BirthDate(), derive.Age()); err != nil {
		return 0, err
	}
	s.p.render(s.res, s.log, chartAgeOverYear, df)
	return df.Len(), nil
}

func (s *steps) ageLowess() (int, error) {
	df := s.res.Table
	s.p.render(s.res, s.log, chartAgeLowess, df)
	s.p.render(s.res, s.log, chartAgeLowessByCategory, df)
	return df.Len(), nil
}

func (s *steps) oldestWinner() (int, error) {
	oldest, err := s.res.Table.NLargest(1, derive.ColAge)
	if err != nil {
		return 0, err
	}
	s.res.OldestWinner = oldest
	return s.res.Table.Len(), s.p.print(oldest)
}

func (s *steps) youngestWinner() (int, error) {
	youngest, err := s.res.Table.NSmallest(1, derive.ColAge)
	if err != nil {
		return 0, err
	}
	s.res.YoungestWinner = youngest
	return s.res.Table.Len(), s.p.print(youngest)
}

func (s *steps) youngestName() (int, error) {
	youngest := s.res.YoungestWinner
	if youngest.Len() == 0 {
		s.log.Warn("no winner with a known age")
		return 0, nil
	}

	name := youngest.Row(0).Get(derive.ColFullName)
	if name.IsMissing() {
		s.log.Warn("youngest winner has no name", slog.Int("row", youngest.Row(0).Label()))
		return 1, nil
	}
	s.res.YoungestName = name.Str()
	_, err := fmt.Fprintln(s.p.out, s.res.YoungestName)
	return 1, err
}
