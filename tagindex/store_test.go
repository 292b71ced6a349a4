package tagindex

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const exampleTable = `,,m1,m2,m3,m4
,,Naïve,Naïve,Sick,Sick
BCell,pERK,1,3,10,20
`

const wideTable = `,,s1,s2,s3,s4,s5,s6
,,Naïve,Naïve,Sick,Sick,Treated,Treated
BCell,pERK,1,3,10,20,4,6
BCell,pSTAT3,2,2,8,8,1,1
 TCell , pERK ,5,5,5,5,5,5
TCell,pP38,0,1,0,1,0,1
NKCell,pERK,9,9,9,9,9,9
`

func loadString(t *testing.T, table string, layout Layout) *Store {
	t.Helper()

	r := csv.NewReader(strings.NewReader(table))
	r.FieldsPerRecord = -1
	s, err := Load(r, layout)
	if err != nil {
		t.Fatal(err)
	}

	return s
}

func TestExampleScenario(t *testing.T) {
	s := loadString(t, exampleTable, DefaultLayout)

	if r, ok := s.GroupRange("Naïve"); !ok || r != (Range{2, 4}) {
		t.Errorf("Naïve range: got %v (%v), want [2,4)", r, ok)
	}
	if r, ok := s.GroupRange("Sick"); !ok || r != (Range{4, 6}) {
		t.Errorf("Sick range: got %v (%v), want [4,6)", r, ok)
	}

	naive, ok := s.Lookup(NewTriple("Naïve", "BCell", "pERK"))
	if !ok {
		t.Fatal("Naïve|BCell|pERK missing")
	}
	if diff := cmp.Diff(Series{1, 3}, naive); diff != "" {
		t.Errorf("Naïve series mismatch (-want +got):\n%s", diff)
	}

	sick, ok := s.Lookup(NewTriple("Sick", "BCell", "pERK"))
	if !ok {
		t.Fatal("Sick|BCell|pERK missing")
	}
	if diff := cmp.Diff(Series{10, 20}, sick); diff != "" {
		t.Errorf("Sick series mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	s := loadString(t, wideTable, DefaultLayout)

	got := s.Get(NewTriple("Treated", "BCell", "pERK"))
	if len(got) != 1 {
		t.Fatalf("expected exactly one series, got %d", len(got))
	}
	if diff := cmp.Diff(Series{4, 6}, got[NewTriple("Treated", "BCell", "pERK")]); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestValuesPreserveFirstSeenOrder(t *testing.T) {
	s := loadString(t, wideTable, DefaultLayout)

	if diff := cmp.Diff([]string{"Naïve", "Sick", "Treated"}, s.Values(Group)); diff != "" {
		t.Errorf("groups (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"BCell", "TCell", "NKCell"}, s.Values(Category)); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"pERK", "pSTAT3", "pP38"}, s.Values(Subcategory)); diff != "" {
		t.Errorf("subcategories (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"pERK", "pP38"}, s.SubcategoriesOf("TCell")); diff != "" {
		t.Errorf("TCell subcategories (-want +got):\n%s", diff)
	}
}

func TestWildcardCompleteness(t *testing.T) {
	s := loadString(t, wideTable, DefaultLayout)

	// 5 data rows x 3 groups; the 3x3x3 Cartesian product is never reached
	// because not every category carries every subcategory.
	all := s.Get(NewTriple(Wildcard, Wildcard, Wildcard))
	if len(all) != 15 {
		t.Errorf("expected 15 series, got %d", len(all))
	}
	if len(all) != s.Len() {
		t.Errorf("wildcard returned %d series, store holds %d", len(all), s.Len())
	}

	// Case does not matter for the wildcard.
	if got := s.Get(NewTriple("ALL", "BCell", "All")); len(got) != 6 {
		t.Errorf("expected 6 BCell series, got %d", len(got))
	}
}

func TestExpandOrder(t *testing.T) {
	s := loadString(t, wideTable, DefaultLayout)

	got := s.Expand(NewTriple(Wildcard, Wildcard, "pERK"))
	want := []Triple{
		{"Naïve", "BCell", "pERK"},
		{"Naïve", "TCell", "pERK"},
		{"Naïve", "NKCell", "pERK"},
		{"Sick", "BCell", "pERK"},
		{"Sick", "TCell", "pERK"},
		{"Sick", "NKCell", "pERK"},
		{"Treated", "BCell", "pERK"},
		{"Treated", "TCell", "pERK"},
		{"Treated", "NKCell", "pERK"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("expansion order (-want +got):\n%s", diff)
	}
}

func TestAbsentCombinationIsOmitted(t *testing.T) {
	s := loadString(t, wideTable, DefaultLayout)

	if got := s.Get(NewTriple("Naïve", "NKCell", "pSTAT3")); len(got) != 0 {
		t.Errorf("expected no series for an absent combination, got %v", got)
	}
	if got := s.Get(NewTriple("Nobody", Wildcard, Wildcard)); len(got) != 0 {
		t.Errorf("expected no series for an unknown group, got %d", len(got))
	}
}

func TestTagsAreTrimmed(t *testing.T) {
	s := loadString(t, wideTable, DefaultLayout)

	if _, ok := s.Lookup(NewTriple("Sick", "TCell", "pERK")); !ok {
		t.Error("expected padded tags to be trimmed")
	}
}

func TestCollapseTagSpaces(t *testing.T) {
	table := ",,a,b\n,,G,G\nB Cell,p ERK,1,2\n"

	s := loadString(t, table, Layouts["CYTOF_COLLAPSED"])
	if _, ok := s.Lookup(NewTriple("G", "BCell", "pERK")); !ok {
		t.Errorf("expected interior spaces to be removed, have %v", s.Values(Category))
	}

	s = loadString(t, table, DefaultLayout)
	if _, ok := s.Lookup(NewTriple("G", "B Cell", "p ERK")); !ok {
		t.Errorf("expected interior spaces to be kept, have %v", s.Values(Category))
	}
}

func TestDiscontiguousGroupKeepsLastRun(t *testing.T) {
	table := ",,a,b,c,d,e\n,,A,A,B,A,A\nX,Y,1,2,3,4,5\n"
	s := loadString(t, table, DefaultLayout)

	if diff := cmp.Diff([]string{"A", "B"}, s.Values(Group)); diff != "" {
		t.Errorf("groups (-want +got):\n%s", diff)
	}
	if r, _ := s.GroupRange("A"); r != (Range{5, 7}) {
		t.Errorf("expected the later run to win, got %v", r)
	}
	if v, _ := s.Lookup(NewTriple("A", "X", "Y")); !cmp.Equal(Series{4, 5}, v) {
		t.Errorf("A|X|Y: got %v", v)
	}
}

func TestMalformedNumberAbortsLoad(t *testing.T) {
	table := ",,a,b\n,,G,G\nX,Y,1,2\nX,Z,1,oops\n"

	r := csv.NewReader(strings.NewReader(table))
	if _, err := Load(r, DefaultLayout); err == nil {
		t.Error("expected a parse error")
	} else if !strings.Contains(err.Error(), "oops") {
		t.Errorf("expected the offending cell in the error, got %v", err)
	}
}

func TestShortRowAbortsLoad(t *testing.T) {
	table := ",,a,b\n,,G,G\nX,Y,1\n"

	r := csv.NewReader(strings.NewReader(table))
	r.FieldsPerRecord = -1
	if _, err := Load(r, DefaultLayout); err == nil {
		t.Error("expected an error for a row shorter than its group range")
	}
}

func TestHeaderWithoutSubjects(t *testing.T) {
	r := csv.NewReader(strings.NewReader(",\n,\n"))
	if _, err := Load(r, DefaultLayout); !errors.Is(err, ErrNoSubjects) {
		t.Errorf("expected ErrNoSubjects, got %v", err)
	}
}

func TestTruncatedHeader(t *testing.T) {
	r := csv.NewReader(strings.NewReader(",,a\n"))
	if _, err := Load(r, DefaultLayout); err == nil {
		t.Error("expected an error for a missing group header")
	}
}
