package crosssection

import (
	"fmt"
	"math"
	"strings"

	"github.com/carbocation/cytoheat/tagindex"
)

// Metric selects which scalar of an Entry fills a Surface.
type Metric int

const (
	MetricRank Metric = iota
	MetricMean
	MetricPercent
)

var Metrics = []Metric{MetricRank, MetricMean, MetricPercent}

func (m Metric) String() string {
	switch m {
	case MetricRank:
		return "rank"
	case MetricMean:
		return "mean"
	case MetricPercent:
		return "percent_from_control"
	}

	return fmt.Sprintf("metric(%d)", int(m))
}

func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rank":
		return MetricRank, nil
	case "mean":
		return MetricMean, nil
	case "percent", "percent_from_control", "pct":
		return MetricPercent, nil
	}

	return 0, fmt.Errorf("unknown metric %q: expected rank, mean or percent", s)
}

// Value extracts the metric from e.
func (m Metric) Value(e Entry) float64 {
	switch m {
	case MetricRank:
		return float64(e.Rank)
	case MetricMean:
		return e.Mean
	case MetricPercent:
		return e.PercentFromControl
	}

	return math.NaN()
}

// Surface is a matrix of one metric over the two dimensions that remain when
// one dimension is held at a single value. Rows follow the lower-numbered
// remaining dimension, columns the higher. Cells without data are NaN.
type Surface struct {
	Fixed   tagindex.Dimension
	Focused string
	Metric  Metric

	RowDimension    tagindex.Dimension
	ColumnDimension tagindex.Dimension
	RowLabels       []string
	ColumnLabels    []string

	Values [][]float64
}

// Diverging reports whether the surface should be drawn on a scale centred at
// zero.
func (s *Surface) Diverging() bool {
	return s.Metric == MetricPercent
}

// Bounds returns the smallest and largest finite cell values. ok is false when
// there are none.
func (s *Surface) Bounds() (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, row := range s.Values {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			ok = true
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}

	return min, max, ok
}

// Reshape builds the Surface for entries whose fixed dimension equals focused.
// Each cell is read from the Result of the pattern that wildcards the fixed
// dimension and takes the row and column values on the other two; Results not
// yet cached are computed.
func (a *Analyzer) Reshape(fixed tagindex.Dimension, focused string, metric Metric) (*Surface, error) {
	if !fixed.Valid() {
		return nil, fmt.Errorf("invalid dimension %d", int(fixed))
	}
	if !a.store.Has(fixed, focused) {
		return nil, fmt.Errorf("%s %q: %w", fixed, focused, ErrUnknownValue)
	}

	rowDim, colDim := fixed.Others()
	s := &Surface{
		Fixed:           fixed,
		Focused:         focused,
		Metric:          metric,
		RowDimension:    rowDim,
		ColumnDimension: colDim,
		RowLabels:       a.store.Values(rowDim),
		ColumnLabels:    a.store.Values(colDim),
	}

	base := tagindex.NewTriple(tagindex.Wildcard, tagindex.Wildcard, tagindex.Wildcard)
	s.Values = make([][]float64, len(s.RowLabels))
	for i := 0; i < len(s.RowLabels); i++ {
		s.Values[i] = make([]float64, len(s.ColumnLabels))
		for j := 0; j < len(s.ColumnLabels); j++ {
			pattern := base.With(rowDim, s.RowLabels[i]).With(colDim, s.ColumnLabels[j])
			r := a.AnalyzeOne(pattern)

			e, ok := r.Lookup(pattern.With(fixed, focused))
			if !ok {
				s.Values[i][j] = math.NaN()
				continue
			}
			s.Values[i][j] = metric.Value(e)
		}
	}

	return s, nil
}
