// cytotags prints the tag index of a CyTOF-style table: the values of each
// dimension, the column range of each group, and the subcategories measured
// for each category. With -triple it prints the matching series instead.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/cytoheat"
	_ "github.com/carbocation/cytoheat/compileinfoprint"
	"github.com/carbocation/cytoheat/export"
	"github.com/carbocation/cytoheat/tagindex"
	"github.com/carbocation/pfx"
)

func main() {
	var input, layoutName, sheet, triple string

	flag.StringVar(&input, "input", "", "Path to the table (.csv, .tsv, optionally compressed, .xls, .xlsx, or gs://...)")
	flag.StringVar(&layoutName, "layout", "CYTOF", "Header layout. Valid layout names include: "+tagindex.LayoutNames())
	flag.StringVar(&sheet, "sheet", "", "Spreadsheet sheet to read. Defaults to the first sheet.")
	flag.StringVar(&triple, "triple", "", "Optional. Print the series matching group|category|subcategory, where any component may be 'all'")
	flag.Parse()

	if input == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx := context.Background()

	var client *storage.Client
	if strings.HasPrefix(input, "gs://") {
		var err error
		client, err = storage.NewClient(ctx)
		if err != nil {
			log.Fatalln(err)
		}
		defer client.Close()
	}

	layout, err := tagindex.LayoutByName(layoutName)
	if err != nil {
		log.Fatalln(err)
	}

	tbl, err := cytoheat.OpenTable(ctx, input, cytoheat.TableOptions{Storage: client, Sheet: sheet})
	if err != nil {
		log.Fatalln(err)
	}

	store, err := tagindex.Load(tbl, layout)
	if err != nil {
		log.Fatalln(err)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	if triple == "" {
		err = printIndex(w, store)
	} else {
		err = printSeries(w, store, triple)
	}
	if err != nil {
		log.Fatalln(err)
	}
}

func printIndex(w io.Writer, store *tagindex.Store) error {
	for _, d := range tagindex.Dimensions {
		fmt.Fprintf(w, "%s\t%d\t%s\n", d, len(store.Values(d)), strings.Join(store.Values(d), "\t"))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "group\tstart\tend\tsubjects")
	for _, g := range store.Values(tagindex.Group) {
		r, _ := store.GroupRange(g)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", g, r.Start, r.End, r.Len())
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "category\tsubcategories")
	for _, c := range store.Values(tagindex.Category) {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", c, strings.Join(store.SubcategoriesOf(c), "\t")); err != nil {
			return pfx.Err(err)
		}
	}

	return nil
}

func printSeries(w io.Writer, store *tagindex.Store, pattern string) error {
	p, err := tagindex.ParseTriple(pattern)
	if err != nil {
		return pfx.Err(err)
	}

	matches := store.Expand(p)
	if len(matches) == 0 {
		return fmt.Errorf("no series match %s", p)
	}

	series := store.Get(p)
	for _, t := range matches {
		cells := make([]string, 0, len(series[t])+1)
		cells = append(cells, t.String())
		for _, v := range series[t] {
			cells = append(cells, export.FormatValue(v))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return pfx.Err(err)
		}
	}

	return nil
}
