// cytoheat loads a CyTOF-style table with a two-row group header, ranks every
// (group, cell type, marker) combination by mean, relates each to a control
// group, and writes the results plus heatmap surfaces for each dimension.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	_ "github.com/carbocation/cytoheat/compileinfoprint"
	"github.com/carbocation/cytoheat/tagindex"
)

func main() {
	var cfg config
	var fixed, metrics, delimiter string

	flag.StringVar(&cfg.Input, "input", "", "Path to the table (.csv, .tsv, optionally compressed, .xls, .xlsx, or gs://...)")
	flag.StringVar(&cfg.Control, "control", "", "Name of the control group, exactly as it appears in the group header row")
	flag.StringVar(&cfg.LayoutName, "layout", "CYTOF", "Header layout. Valid layout names include: "+tagindex.LayoutNames())
	flag.StringVar(&cfg.Sheet, "sheet", "", "Spreadsheet sheet to read. Defaults to the first sheet.")
	flag.StringVar(&delimiter, "delimiter", "", "Delimiter for text tables ('tab', ',', ...). Detected if empty.")
	flag.StringVar(&cfg.OutDir, "out", ".", "Directory for the output files")
	flag.StringVar(&fixed, "fixed", "all", "Dimension held at one value per surface: group, category, subcategory, or all")
	flag.StringVar(&cfg.Focused, "focused", "", "Value of the fixed dimension to draw. If empty, every value is drawn.")
	flag.StringVar(&metrics, "metrics", "rank,mean,percent", "Comma-separated metrics to draw: rank, mean, percent")
	flag.BoolVar(&cfg.PNG, "png", true, "Render each surface as a PNG heatmap")
	flag.BoolVar(&cfg.Annotate, "annotate", true, "Write cell values on the heatmaps")
	flag.Float64Var(&cfg.CellSize, "cell", 48, "Heatmap cell size in pixels")
	flag.StringVar(&cfg.Colormap, "colormap", "", "Override the heatmap colours with 2 or 3 comma-separated hex colours")
	flag.BoolVar(&cfg.RankCharts, "rankcharts", false, "Also draw a ranked bar chart for every analyzed combination")
	flag.IntVar(&cfg.RankLimit, "rank_limit", 0, "Maximum bars per rank chart. 0 means no limit.")
	flag.Parse()

	if cfg.Input == "" || cfg.Control == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	var err error
	if cfg.Fixed, err = parseFixed(fixed); err != nil {
		log.Fatalln(err)
	}
	if cfg.Metrics, err = parseMetrics(metrics); err != nil {
		log.Fatalln(err)
	}
	if cfg.Delimiter, err = parseDelimiter(delimiter); err != nil {
		log.Fatalln(err)
	}

	ctx := context.Background()

	// Initialize the Google Storage client only if we're pointing to Google
	// Storage paths.
	if strings.HasPrefix(cfg.Input, "gs://") {
		cfg.Storage, err = storage.NewClient(ctx)
		if err != nil {
			log.Fatalln(err)
		}
		defer cfg.Storage.Close()
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatalln(err)
	}
}
