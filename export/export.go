// Package export writes analysis results and surfaces as tab-delimited text.
package export

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/carbocation/cytoheat/crosssection"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// Missing is written for cells with no data.
const Missing = "NA"

type ResultRow struct {
	Pattern            string  `csv:"pattern"`
	Triple             string  `csv:"triple"`
	Group              string  `csv:"group"`
	Category           string  `csv:"category"`
	Subcategory        string  `csv:"subcategory"`
	Rank               int     `csv:"rank"`
	Mean               float64 `csv:"mean"`
	PercentFromControl float64 `csv:"percent_from_control"`
	ControlMissing     bool    `csv:"control_missing"`
	N                  int     `csv:"n"`
	StdDev             float64 `csv:"sd"`
	Median             float64 `csv:"median"`
}

// Rows flattens results into one row per entry, in result then rank order.
func Rows(results []*crosssection.Result) []ResultRow {
	out := make([]ResultRow, 0)
	for _, r := range results {
		for _, e := range r.Entries {
			out = append(out, ResultRow{
				Pattern:            r.Pattern.String(),
				Triple:             e.Triple.String(),
				Group:              e.Triple.Group(),
				Category:           e.Triple.Category(),
				Subcategory:        e.Triple.Subcategory(),
				Rank:               e.Rank,
				Mean:               e.Mean,
				PercentFromControl: e.PercentFromControl,
				ControlMissing:     e.ControlMissing,
				N:                  e.N,
				StdDev:             e.StdDev,
				Median:             e.Median,
			})
		}
	}

	return out
}

// WriteResults writes a header and one row per entry of each result.
func WriteResults(w io.Writer, results []*crosssection.Result) error {
	rows := Rows(results)

	csvw := csv.NewWriter(w)
	csvw.Comma = '\t'
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(csvw)); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// WriteSurface writes the column labels as a header, then one line per row
// label followed by that row's values.
func WriteSurface(w io.Writer, s *crosssection.Surface) error {
	csvw := csv.NewWriter(w)
	csvw.Comma = '\t'

	header := make([]string, 0, len(s.ColumnLabels)+1)
	header = append(header, s.RowDimension.String()+"\\"+s.ColumnDimension.String())
	header = append(header, s.ColumnLabels...)
	if err := csvw.Write(header); err != nil {
		return pfx.Err(err)
	}

	for i, label := range s.RowLabels {
		line := make([]string, 0, len(s.ColumnLabels)+1)
		line = append(line, label)
		for _, v := range s.Values[i] {
			line = append(line, FormatValue(v))
		}
		if err := csvw.Write(line); err != nil {
			return pfx.Err(err)
		}
	}

	csvw.Flush()
	if err := csvw.Error(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return Missing
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}
