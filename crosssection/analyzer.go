// Package crosssection ranks every combination of two tag dimensions by mean,
// relates each entry to a control group, and reshapes the results into
// matrices for heatmaps.
package crosssection

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/BenLubar/memoize"
	"github.com/carbocation/cytoheat/tagindex"
	"github.com/carbocation/pfx"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrUnknownControl = errors.New("control group is not present in the data")
	ErrUnknownValue   = errors.New("value is not present on the dimension")
)

// Entry is the summary of one concrete series within a Result.
type Entry struct {
	Triple tagindex.Triple

	// Rank is 0 for the largest mean.
	Rank int
	Mean float64

	// PercentFromControl is (Mean - control mean) / control mean, where the
	// control mean is taken from the same category and subcategory under the
	// control group. It is 0 for entries of the control group itself and NaN
	// when the control counterpart is absent.
	PercentFromControl float64
	ControlMissing     bool

	N      int
	StdDev float64
	Median float64
}

// Result holds the ranked entries for one pattern, in rank order.
type Result struct {
	Pattern tagindex.Triple
	Entries []Entry

	index map[tagindex.Triple]int
}

// Lookup finds the entry for a concrete triple.
func (r *Result) Lookup(t tagindex.Triple) (Entry, bool) {
	i, exists := r.index[t]
	if !exists {
		return Entry{}, false
	}

	return r.Entries[i], true
}

func (r *Result) Len() int {
	return len(r.Entries)
}

// Analyzer computes and caches Results over one Store. Cached Results are
// never replaced.
type Analyzer struct {
	store   *tagindex.Store
	control string

	mu      sync.Mutex
	results map[tagindex.Triple]*Result

	controlMu   sync.Mutex
	controlMean func(string, string) float64
}

// New builds an Analyzer whose percent-from-control values are relative to the
// named control group.
func New(store *tagindex.Store, control string) (*Analyzer, error) {
	if store == nil {
		return nil, pfx.Err(fmt.Errorf("nil store"))
	}
	if !store.Has(tagindex.Group, control) {
		return nil, fmt.Errorf("%q: %w (groups: %v)", control, ErrUnknownControl, store.Values(tagindex.Group))
	}

	a := &Analyzer{
		store:   store,
		control: control,
		results: make(map[tagindex.Triple]*Result),
	}

	lookup := func(category, subcategory string) float64 {
		series, exists := store.Lookup(tagindex.NewTriple(control, category, subcategory))
		if !exists {
			return math.NaN()
		}
		return Mean(series)
	}
	a.controlMean = memoize.Memoize(lookup).(func(string, string) float64)

	return a, nil
}

func (a *Analyzer) Store() *tagindex.Store {
	return a.store
}

func (a *Analyzer) Control() string {
	return a.control
}

// Mean is the arithmetic mean of a series, NaN when it is empty.
func Mean(s tagindex.Series) float64 {
	if len(s) == 0 {
		return math.NaN()
	}

	return stat.Mean(s, nil)
}

// PercentFromControl is the relative deviation of mean from controlMean. A zero
// control mean yields +Inf or -Inf by the sign of the difference, and 0 when
// the two means are equal.
func PercentFromControl(mean, controlMean float64) float64 {
	diff := mean - controlMean
	if controlMean == 0 {
		switch {
		case diff > 0:
			return math.Inf(1)
		case diff < 0:
			return math.Inf(-1)
		}
		return 0
	}

	return diff / controlMean
}

func (a *Analyzer) lookupControlMean(category, subcategory string) float64 {
	a.controlMu.Lock()
	defer a.controlMu.Unlock()

	return a.controlMean(category, subcategory)
}

// AnalyzeOne ranks every series matching pattern. The result is cached by
// pattern.
func (a *Analyzer) AnalyzeOne(pattern tagindex.Triple) *Result {
	if r, ok := a.Result(pattern); ok {
		return r
	}

	return a.keep(a.analyze(pattern))
}

// Result returns a cached Result.
func (a *Analyzer) Result(pattern tagindex.Triple) (*Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, exists := a.results[pattern]
	return r, exists
}

// Results returns every cached Result, ordered by pattern.
func (a *Analyzer) Results() []*Result {
	a.mu.Lock()
	out := make([]*Result, 0, len(a.results))
	for _, r := range a.results {
		out = append(out, r)
	}
	a.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Pattern.String() < out[j].Pattern.String()
	})

	return out
}

// keep caches r unless a Result for the same pattern is already cached, and
// returns whichever is cached.
func (a *Analyzer) keep(r *Result) *Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, exists := a.results[r.Pattern]; exists {
		return existing
	}
	a.results[r.Pattern] = r

	return r
}

func (a *Analyzer) analyze(pattern tagindex.Triple) *Result {
	triples := a.store.Expand(pattern)

	entries := make([]Entry, 0, len(triples))
	for _, t := range triples {
		series, _ := a.store.Lookup(t)
		entries = append(entries, summarize(t, series))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return ranksBefore(entries[i], entries[j])
	})

	r := &Result{
		Pattern: pattern,
		Entries: entries,
		index:   make(map[tagindex.Triple]int, len(entries)),
	}

	for i := range r.Entries {
		e := &r.Entries[i]
		e.Rank = i
		r.index[e.Triple] = i

		if e.Triple.Group() == a.control {
			e.PercentFromControl = 0
			continue
		}

		cm := a.lookupControlMean(e.Triple.Category(), e.Triple.Subcategory())
		if math.IsNaN(cm) {
			e.ControlMissing = true
			e.PercentFromControl = math.NaN()
			continue
		}
		e.PercentFromControl = PercentFromControl(e.Mean, cm)
	}

	return r
}

// ranksBefore orders by mean descending, then by triple string descending.
// NaN means sort last.
func ranksBefore(x, y Entry) bool {
	xNaN, yNaN := math.IsNaN(x.Mean), math.IsNaN(y.Mean)
	switch {
	case xNaN && !yNaN:
		return false
	case yNaN && !xNaN:
		return true
	case !xNaN && x.Mean != y.Mean:
		return x.Mean > y.Mean
	}

	return x.Triple.String() > y.Triple.String()
}

func summarize(t tagindex.Triple, series tagindex.Series) Entry {
	e := Entry{
		Triple: t,
		Mean:   Mean(series),
		N:      len(series),
		StdDev: math.NaN(),
		Median: math.NaN(),
	}

	data := stats.Float64Data(series)
	if sd, err := stats.StandardDeviationSample(data); err == nil {
		e.StdDev = sd
	}
	if med, err := stats.Median(data); err == nil {
		e.Median = med
	}

	return e
}

// Pairs are the dimension pairs held fixed by AnalyzeAll. The remaining
// dimension of each pair is the focused variable.
var Pairs = [3][2]tagindex.Dimension{
	{tagindex.Group, tagindex.Category},
	{tagindex.Group, tagindex.Subcategory},
	{tagindex.Category, tagindex.Subcategory},
}

// AnalyzeAll analyzes every concrete value pair of every dimension pair in
// Pairs, with the third dimension wildcarded. The pairs are processed
// concurrently; each writes to its own map, merged into the cache at the end.
func (a *Analyzer) AnalyzeAll(ctx context.Context) error {
	partials := make([]map[tagindex.Triple]*Result, len(Pairs))

	g, ctx := errgroup.WithContext(ctx)
	for i, pair := range Pairs {
		i, pair := i, pair
		g.Go(func() error {
			out := make(map[tagindex.Triple]*Result)
			for _, pattern := range a.pairPatterns(pair) {
				if err := ctx.Err(); err != nil {
					return err
				}
				if _, cached := a.Result(pattern); cached {
					continue
				}
				out[pattern] = a.analyze(pattern)
			}
			partials[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return pfx.Err(err)
	}

	for _, partial := range partials {
		for _, r := range partial {
			a.keep(r)
		}
	}

	return nil
}

// pairPatterns lists, in index order, the patterns that fix the two
// dimensions of pair to concrete values and wildcard the third.
func (a *Analyzer) pairPatterns(pair [2]tagindex.Dimension) []tagindex.Triple {
	first := a.store.Values(pair[0])
	second := a.store.Values(pair[1])

	base := tagindex.NewTriple(tagindex.Wildcard, tagindex.Wildcard, tagindex.Wildcard)
	out := make([]tagindex.Triple, 0, len(first)*len(second))
	for i := 0; i < len(first); i++ {
		for j := 0; j < len(second); j++ {
			out = append(out, base.With(pair[0], first[i]).With(pair[1], second[j]))
		}
	}

	return out
}
