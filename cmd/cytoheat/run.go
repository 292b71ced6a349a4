package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"cloud.google.com/go/storage"
	"github.com/carbocation/cytoheat"
	"github.com/carbocation/cytoheat/crosssection"
	"github.com/carbocation/cytoheat/export"
	"github.com/carbocation/cytoheat/render"
	"github.com/carbocation/cytoheat/tagindex"
	"github.com/carbocation/pfx"
)

type config struct {
	Input      string
	Control    string
	LayoutName string
	Sheet      string
	Delimiter  rune
	OutDir     string

	// Fixed lists the dimensions to draw surfaces for.
	Fixed   []tagindex.Dimension
	Focused string
	Metrics []crosssection.Metric

	PNG        bool
	Annotate   bool
	CellSize   float64
	Colormap   string
	RankCharts bool
	RankLimit  int

	Storage *storage.Client
}

func parseFixed(s string) ([]tagindex.Dimension, error) {
	if tagindex.IsWildcard(s) {
		return tagindex.Dimensions[:], nil
	}

	d, err := tagindex.ParseDimension(s)
	if err != nil {
		return nil, err
	}

	return []tagindex.Dimension{d}, nil
}

func parseMetrics(s string) ([]crosssection.Metric, error) {
	out := make([]crosssection.Metric, 0)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		m, err := crosssection.ParseMetric(part)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no metrics requested")
	}

	return out, nil
}

func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	}

	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)

	return r, nil
}

func run(ctx context.Context, cfg config) error {
	layout, err := tagindex.LayoutByName(cfg.LayoutName)
	if err != nil {
		return pfx.Err(err)
	}

	var cmap *render.Colormap
	if cfg.Colormap != "" {
		c, err := render.ParseColormap(cfg.Colormap)
		if err != nil {
			return pfx.Err(err)
		}
		cmap = &c
	}

	log.Println("Reading", cfg.Input)
	tbl, err := cytoheat.OpenTable(ctx, cfg.Input, cytoheat.TableOptions{
		Storage:   cfg.Storage,
		Sheet:     cfg.Sheet,
		Delimiter: cfg.Delimiter,
	})
	if err != nil {
		return err
	}
	log.Printf("Read %d rows (%s, %s)\n", tbl.Len(), tbl.Format, tbl.Compression)

	store, err := tagindex.Load(tbl, layout)
	if err != nil {
		return pfx.Err(err)
	}
	log.Printf("Loaded %d series: %d groups, %d categories, %d subcategories\n",
		store.Len(),
		len(store.Values(tagindex.Group)),
		len(store.Values(tagindex.Category)),
		len(store.Values(tagindex.Subcategory)))

	analyzer, err := crosssection.New(store, cfg.Control)
	if err != nil {
		return pfx.Err(err)
	}
	if err := analyzer.AnalyzeAll(ctx); err != nil {
		return err
	}
	results := analyzer.Results()
	log.Println("Analyzed", len(results), "combinations")

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return pfx.Err(err)
	}

	if err := writeFile(filepath.Join(cfg.OutDir, "results.tsv"), func(f *os.File) error {
		return export.WriteResults(f, results)
	}); err != nil {
		return err
	}

	for _, fixed := range cfg.Fixed {
		focused := store.Values(fixed)
		if cfg.Focused != "" {
			if !store.Has(fixed, cfg.Focused) {
				// A focused value names one dimension; the others are skipped.
				continue
			}
			focused = []string{cfg.Focused}
		}

		for _, value := range focused {
			for _, metric := range cfg.Metrics {
				if err := writeSurface(analyzer, cfg, cmap, fixed, value, metric); err != nil {
					return err
				}
			}
		}
	}

	if cfg.RankCharts {
		dir := filepath.Join(cfg.OutDir, "rankcharts")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return pfx.Err(err)
		}
		for _, r := range results {
			if r.Len() == 0 {
				continue
			}
			r := r
			name := filepath.Join(dir, fileSafe(r.Pattern.String())+".png")
			if err := writeFile(name, func(f *os.File) error {
				return render.RankChart(f, r, cfg.RankLimit)
			}); err != nil {
				return err
			}
		}
	}

	log.Println("Wrote output to", cfg.OutDir)

	return nil
}

func writeSurface(a *crosssection.Analyzer, cfg config, cmap *render.Colormap, fixed tagindex.Dimension, value string, metric crosssection.Metric) error {
	s, err := a.Reshape(fixed, value, metric)
	if err != nil {
		return pfx.Err(err)
	}

	dir := filepath.Join(cfg.OutDir, "surfaces")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return pfx.Err(err)
	}
	base := filepath.Join(dir, fmt.Sprintf("%s_%s_%s", metric, fixed, fileSafe(value)))

	if err := writeFile(base+".tsv", func(f *os.File) error {
		return export.WriteSurface(f, s)
	}); err != nil {
		return err
	}

	if !cfg.PNG {
		return nil
	}

	return writeFile(base+".png", func(f *os.File) error {
		return render.Heatmap(f, s, render.HeatmapOptions{
			CellSize: cfg.CellSize,
			Colormap: cmap,
			Annotate: cfg.Annotate,
		})
	})
}

func writeFile(name string, fill func(f *os.File) error) error {
	f, err := os.Create(name)
	if err != nil {
		return pfx.Err(err)
	}

	if err := fill(f); err != nil {
		f.Close()
		return pfx.Err(fmt.Errorf("%s: %w", name, err))
	}

	return f.Close()
}

// fileSafe keeps letters, digits, dots and dashes, and replaces everything
// else with an underscore.
func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' {
			return r
		}
		return '_'
	}, s)
}
