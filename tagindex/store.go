// Package tagindex parses a table with a two-level header of subject groups
// and two leading tag columns per row, and indexes one Series per
// (group, category, subcategory) Triple.
package tagindex

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
)

var ErrNoSubjects = errors.New("group header row has no subject columns")

// RowReader yields the rows of a table, returning io.EOF after the last row.
// *csv.Reader satisfies it.
type RowReader interface {
	Read() ([]string, error)
}

// Series is one measurement per subject, in column order. Series returned by a
// Store are shared and must not be modified.
type Series []float64

// Range is a half-open interval of absolute column indices.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

// Store is the read-only result of loading a table.
type Store struct {
	layout Layout

	// values holds the distinct values of each dimension in first-seen order;
	// known mirrors it for membership tests.
	values [3][]string
	known  [3]map[string]struct{}

	groupRanges  map[string]Range
	categorySubs map[string][]string
	series       map[Triple]Series
}

func newStore(layout Layout) *Store {
	s := &Store{
		layout:       layout,
		groupRanges:  make(map[string]Range),
		categorySubs: make(map[string][]string),
		series:       make(map[Triple]Series),
	}
	for _, d := range Dimensions {
		s.known[d] = make(map[string]struct{})
	}

	return s
}

// Load reads every row from r. Any cell in the measurement region that does
// not parse as a float aborts the load.
func Load(r RowReader, layout Layout) (*Store, error) {
	if err := layout.Validate(); err != nil {
		return nil, pfx.Err(err)
	}

	s := newStore(layout)

	rowNum := 0
	for ; rowNum < layout.HeaderRows; rowNum++ {
		header, err := r.Read()
		if err == io.EOF {
			return nil, pfx.Err(fmt.Errorf("source ended after %d of %d header rows", rowNum, layout.HeaderRows))
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		if rowNum == layout.GroupTagRow {
			if err := s.setGroupRanges(header); err != nil {
				return nil, fmt.Errorf("group header row %d: %w", rowNum, err)
			}
		}
	}

	for ; ; rowNum++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		if err := s.addRow(rowNum, row); err != nil {
			return nil, pfx.Err(err)
		}
	}

	return s, nil
}

// setGroupRanges walks the group header left to right, starting a new range
// whenever the label differs from the previous column. A label that appears
// in two separate runs keeps its first-seen position in the group order but
// its range is the last run.
func (s *Store) setGroupRanges(header []string) error {
	offset := s.layout.RowTags
	if len(header) <= offset {
		return ErrNoSubjects
	}
	labels := header[offset:]

	lastCut := 0
	for i := 1; i < len(labels); i++ {
		if labels[i] != labels[i-1] {
			s.setGroupRange(labels[i-1], Range{Start: lastCut + offset, End: i + offset})
			lastCut = i
		}
	}
	s.setGroupRange(labels[lastCut], Range{Start: lastCut + offset, End: len(labels) + offset})

	return nil
}

func (s *Store) setGroupRange(group string, r Range) {
	s.remember(Group, group)
	s.groupRanges[group] = r
}

func (s *Store) remember(d Dimension, v string) bool {
	if _, exists := s.known[d][v]; exists {
		return false
	}
	s.known[d][v] = struct{}{}
	s.values[d] = append(s.values[d], v)

	return true
}

func (s *Store) addRow(rowNum int, row []string) error {
	if blank(row) {
		return nil
	}
	if len(row) < s.layout.RowTags {
		return fmt.Errorf("row %d has %d columns, expected at least %d tag columns", rowNum, len(row), s.layout.RowTags)
	}

	category := s.layout.cleanTag(row[0])
	subcategory := s.layout.cleanTag(row[1])

	s.remember(Category, category)
	s.remember(Subcategory, subcategory)

	subs := s.categorySubs[category]
	seen := false
	for _, v := range subs {
		if v == subcategory {
			seen = true
			break
		}
	}
	if !seen {
		s.categorySubs[category] = append(subs, subcategory)
	}

	for _, group := range s.values[Group] {
		rng := s.groupRanges[group]
		if len(row) < rng.End {
			return fmt.Errorf("row %d has %d columns, but group %q spans columns [%d, %d)", rowNum, len(row), group, rng.Start, rng.End)
		}

		vals := make(Series, 0, rng.Len())
		for col := rng.Start; col < rng.End; col++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				return fmt.Errorf("row %d column %d (%s|%s|%s): %w", rowNum, col, group, category, subcategory, err)
			}
			vals = append(vals, v)
		}

		s.series[NewTriple(group, category, subcategory)] = vals
	}

	return nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

// Layout returns the layout the store was loaded with.
func (s *Store) Layout() Layout {
	return s.layout
}

// Values returns the distinct values of dimension d in first-seen order.
func (s *Store) Values(d Dimension) []string {
	if !d.Valid() {
		return nil
	}

	return append([]string(nil), s.values[d]...)
}

// Has reports whether v was observed on dimension d.
func (s *Store) Has(d Dimension, v string) bool {
	if !d.Valid() {
		return false
	}
	_, exists := s.known[d][v]

	return exists
}

// SubcategoriesOf returns the subcategories seen under one category.
func (s *Store) SubcategoriesOf(category string) []string {
	return append([]string(nil), s.categorySubs[category]...)
}

// GroupRange returns the column interval of a group.
func (s *Store) GroupRange(group string) (Range, bool) {
	r, exists := s.groupRanges[group]
	return r, exists
}

// Len is the number of stored series.
func (s *Store) Len() int {
	return len(s.series)
}

// Lookup returns the series of one concrete triple.
func (s *Store) Lookup(t Triple) (Series, bool) {
	v, exists := s.series[t]
	return v, exists
}

// Expand lists the concrete triples matching pattern that are present in the
// store. Wildcard components expand to the dimension's full value list; the
// enumeration is group-major, then category, then subcategory.
func (s *Store) Expand(pattern Triple) []Triple {
	var axes [3][]string
	for _, d := range Dimensions {
		if pattern.IsWildcard(d) {
			axes[d] = s.values[d]
		} else {
			axes[d] = []string{pattern[d]}
		}
	}

	out := make([]Triple, 0)
	for i := 0; i < len(axes[Group]); i++ {
		for j := 0; j < len(axes[Category]); j++ {
			for k := 0; k < len(axes[Subcategory]); k++ {
				t := Triple{axes[Group][i], axes[Category][j], axes[Subcategory][k]}
				if _, exists := s.series[t]; exists {
					out = append(out, t)
				}
			}
		}
	}

	return out
}

// Get returns every series matching pattern. Combinations absent from the
// source are omitted.
func (s *Store) Get(pattern Triple) map[Triple]Series {
	matches := s.Expand(pattern)
	out := make(map[Triple]Series, len(matches))
	for _, t := range matches {
		out[t] = s.series[t]
	}

	return out
}
