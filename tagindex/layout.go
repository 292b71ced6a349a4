package tagindex

import (
	"fmt"
	"sort"
	"strings"
)

// Layout describes where the tags live in a source table.
type Layout struct {
	// HeaderRows is the number of leading header rows.
	HeaderRows int

	// GroupTagRow is the 0-based header row holding one group label per
	// subject column.
	GroupTagRow int

	// RowTags is the number of leading tag columns in every row. Only two
	// levels of row tags are supported, so this is also the index of the
	// first subject column.
	RowTags int

	// CollapseTagSpaces removes interior spaces from row tags in addition to
	// trimming them, so "B Cell" and "BCell" address the same category.
	CollapseTagSpaces bool
}

// DefaultLayout is the two-header-row, two-tag-column CyTOF export.
var DefaultLayout = Layout{
	HeaderRows:  2,
	GroupTagRow: 1,
	RowTags:     2,
}

var Layouts = map[string]Layout{
	"CYTOF": DefaultLayout,
	"CYTOF_COLLAPSED": {
		HeaderRows:        2,
		GroupTagRow:       1,
		RowTags:           2,
		CollapseTagSpaces: true,
	},
}

func LayoutNames() string {
	names := make([]string, 0, len(Layouts))
	for m := range Layouts {
		names = append(names, m)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

// LayoutByName returns a named Layout from Layouts.
func LayoutByName(name string) (Layout, error) {
	l, exists := Layouts[strings.ToUpper(name)]
	if !exists {
		return Layout{}, fmt.Errorf("Layout %s is not found. Valid layout names include: %s", name, LayoutNames())
	}

	return l, nil
}

func (l Layout) Validate() error {
	if l.RowTags != 2 {
		return fmt.Errorf("layout has %d row tag columns, but exactly 2 are supported", l.RowTags)
	}
	if l.HeaderRows < 1 {
		return fmt.Errorf("layout needs at least one header row, has %d", l.HeaderRows)
	}
	if l.GroupTagRow < 0 || l.GroupTagRow >= l.HeaderRows {
		return fmt.Errorf("group tag row %d is outside the %d header rows", l.GroupTagRow, l.HeaderRows)
	}

	return nil
}

func (l Layout) cleanTag(tag string) string {
	if l.CollapseTagSpaces {
		tag = strings.ReplaceAll(tag, " ", "")
	}

	return strings.TrimSpace(tag)
}
