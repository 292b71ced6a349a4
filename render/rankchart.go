package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/carbocation/cytoheat/crosssection"
	"github.com/carbocation/cytoheat/tagindex"
	"github.com/carbocation/pfx"
	"github.com/wcharczuk/go-chart/v2"
)

// RankChart draws the means of r as bars in rank order. limit caps the number
// of bars; 0 draws them all.
func RankChart(w io.Writer, r *crosssection.Result, limit int) error {
	bars := make([]chart.Value, 0, len(r.Entries))
	lo, hi := 0.0, 0.0
	for _, e := range r.Entries {
		if limit > 0 && len(bars) >= limit {
			break
		}
		if math.IsNaN(e.Mean) || math.IsInf(e.Mean, 0) {
			continue
		}

		bars = append(bars, chart.Value{
			Value: e.Mean,
			Label: FocusedLabel(r.Pattern, e.Triple),
		})
		lo, hi = math.Min(lo, e.Mean), math.Max(hi, e.Mean)
	}
	if len(bars) == 0 {
		return pfx.Err(fmt.Errorf("%s has no entries to chart", r.Pattern))
	}
	if lo == hi {
		hi = lo + 1
	}

	graph := chart.BarChart{
		Title: r.Pattern.String(),
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Width:      int(math.Max(512, float64(96+80*len(bars)))),
		Height:     384,
		BarWidth:   48,
		BarSpacing: 32,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// FocusedLabel names t by its components on the wildcarded dimensions of
// pattern, which are the only ones that vary within a result.
func FocusedLabel(pattern, t tagindex.Triple) string {
	parts := make([]string, 0, 3)
	for _, d := range tagindex.Dimensions {
		if pattern.IsWildcard(d) {
			parts = append(parts, t.At(d))
		}
	}
	if len(parts) == 0 {
		return t.String()
	}

	return strings.Join(parts, tagindex.Separator)
}
