package tagindex

import (
	"fmt"
	"strings"
)

// Wildcard matches every value on a dimension. Matching is case-insensitive.
const Wildcard = "all"

// Separator joins the components of a stringified Triple.
const Separator = "|"

// Dimension is one of the three fixed axes of the dataset. The numeric
// values are significant: they are the component positions within a Triple.
type Dimension int

const (
	Group Dimension = iota
	Category
	Subcategory
)

// Dimensions lists the axes in their fixed order.
var Dimensions = [3]Dimension{Group, Category, Subcategory}

func (d Dimension) String() string {
	switch d {
	case Group:
		return "group"
	case Category:
		return "category"
	case Subcategory:
		return "subcategory"
	}

	return fmt.Sprintf("dimension(%d)", int(d))
}

func (d Dimension) Valid() bool {
	return d >= Group && d <= Subcategory
}

// ParseDimension accepts the name of a dimension ("group", "category",
// "subcategory") or its index ("0", "1", "2").
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "group", "0":
		return Group, nil
	case "category", "cell", "1":
		return Category, nil
	case "subcategory", "marker", "2":
		return Subcategory, nil
	}

	return 0, fmt.Errorf("unknown dimension %q: expected group, category or subcategory", s)
}

// Others returns the two dimensions other than d, in ascending order.
func (d Dimension) Others() (Dimension, Dimension) {
	switch d {
	case Group:
		return Category, Subcategory
	case Category:
		return Group, Subcategory
	}

	return Group, Category
}

// Triple addresses data as (group, category, subcategory). Any component may
// be the Wildcard.
type Triple [3]string

func NewTriple(group, category, subcategory string) Triple {
	return Triple{group, category, subcategory}
}

// ParseTriple splits a pipe-joined triple such as "Naive|BCell|all".
func ParseTriple(s string) (Triple, error) {
	parts := strings.Split(s, Separator)
	if len(parts) != 3 {
		return Triple{}, fmt.Errorf("triple %q has %d components, expected 3", s, len(parts))
	}

	return Triple{parts[0], parts[1], parts[2]}, nil
}

func (t Triple) Group() string       { return t[Group] }
func (t Triple) Category() string    { return t[Category] }
func (t Triple) Subcategory() string { return t[Subcategory] }

// At returns the component of t on dimension d.
func (t Triple) At(d Dimension) string {
	return t[d]
}

// With returns a copy of t whose component on dimension d is v.
func (t Triple) With(d Dimension, v string) Triple {
	t[d] = v
	return t
}

// IsWildcard reports whether the component on dimension d matches everything.
func (t Triple) IsWildcard(d Dimension) bool {
	return IsWildcard(t[d])
}

// Concrete reports whether no component is the Wildcard.
func (t Triple) Concrete() bool {
	for _, d := range Dimensions {
		if t.IsWildcard(d) {
			return false
		}
	}

	return true
}

func (t Triple) String() string {
	return t[0] + Separator + t[1] + Separator + t[2]
}

func IsWildcard(v string) bool {
	return strings.EqualFold(v, Wildcard)
}
