package cytoheat

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/carbocation/cytoheat/tagindex"
	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `,,m1,m2,m3,m4
,,Naïve,Naïve,Sick,Sick
BCell,pERK,1,3,10,20
TCell,pERK,2,2,4,4
`

func readAll(t *testing.T, tbl *Table) [][]string {
	t.Helper()

	out := make([][]string, 0)
	for {
		row, err := tbl.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		out = append(out, row)
	}

	return out
}

func TestReadTableCSV(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader(sampleCSV), "cytof.csv", TableOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if tbl.Format != FormatText || tbl.Delimiter != ',' || tbl.Compression != DataTypeNoCompression {
		t.Errorf("got format %s, delimiter %q, compression %s", tbl.Format, tbl.Delimiter, tbl.Compression)
	}
	if tbl.Len() != 4 {
		t.Errorf("expected 4 rows, got %d", tbl.Len())
	}

	rows := readAll(t, tbl)
	if diff := cmp.Diff([]string{"BCell", "pERK", "1", "3", "10", "20"}, rows[2]); diff != "" {
		t.Errorf("row 2 (-want +got):\n%s", diff)
	}

	tbl.Rewind()
	if row, err := tbl.Read(); err != nil || row[2] != "m1" {
		t.Errorf("Rewind: got %v, %v", row, err)
	}
}

func TestReadTableDetectsTabs(t *testing.T) {
	tsv := "\t\tm1\tm2\n\t\tA\tB\nBCell\tpERK\t1\t3\nTCell\tpERK\t2\t2\n"

	tbl, err := ReadTable(strings.NewReader(tsv), "cytof.txt", TableOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Delimiter != '\t' {
		t.Errorf("expected a tab delimiter, got %q", tbl.Delimiter)
	}
}

func TestReadTableGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(sampleCSV)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadTable(&buf, "cytof.csv.gz", TableOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Compression != DataTypeGzip {
		t.Errorf("expected gzip, got %s", tbl.Compression)
	}
	if tbl.Delimiter != ',' {
		t.Errorf("expected the .csv extension under .gz to set the delimiter, got %q", tbl.Delimiter)
	}

	s, err := tagindex.Load(tbl, tagindex.DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 4 {
		t.Errorf("expected 4 series, got %d", s.Len())
	}
}

func TestReadTableXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"", "", "m1", "m2", "m3", "m4"},
		{"", "", "Naïve", "Naïve", "Sick", "Sick"},
		{"BCell", "pERK", 1, 3, 10, 20},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		row := row
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	tbl, err := ReadTable(buf, "cytof.xlsx", TableOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Format != FormatXLSX || tbl.Sheet != "Sheet1" {
		t.Errorf("got format %s, sheet %q", tbl.Format, tbl.Sheet)
	}

	s, err := tagindex.Load(tbl, tagindex.DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := s.Lookup(tagindex.NewTriple("Sick", "BCell", "pERK"))
	if !ok {
		t.Fatal("Sick|BCell|pERK missing")
	}
	if diff := cmp.Diff(tagindex.Series{10, 20}, v); diff != "" {
		t.Errorf("series (-want +got):\n%s", diff)
	}
}

func TestDetectDataType(t *testing.T) {
	cases := map[DataType][]byte{
		DataTypeGzip:          {0x1f, 0x8b, 0x08, 0x00},
		DataTypeZip:           {0x50, 0x4b, 0x03, 0x04, 0x14},
		DataTypeXZ:            {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
		DataTypeZ:             {0x1f, 0x9d, 0x90},
		DataTypeBZip2:         {0x42, 0x5a, 0x68, 0x39},
		DataTypeNoCompression: []byte(",,a,b"),
	}
	for want, head := range cases {
		if got := DetectDataType(head); got != want {
			t.Errorf("%x: got %s, want %s", head, got, want)
		}
	}

	// Streams shorter than the longest signature still work.
	r, dt, err := MaybeDecompress(strings.NewReader("a"))
	if err != nil {
		t.Fatal(err)
	}
	if dt != DataTypeNoCompression {
		t.Errorf("got %s", dt)
	}
	if b, _ := io.ReadAll(r); string(b) != "a" {
		t.Errorf("got %q", b)
	}
}

func TestSplitGSPath(t *testing.T) {
	bucket, object, err := SplitGSPath("gs://lab-bucket/runs/2023/MiceCYTOF.csv")
	if err != nil {
		t.Fatal(err)
	}
	if bucket != "lab-bucket" || object != "runs/2023/MiceCYTOF.csv" {
		t.Errorf("got %q, %q", bucket, object)
	}

	if _, _, err := SplitGSPath("gs://lab-bucket"); err == nil {
		t.Error("expected an error without an object path")
	}
}

func TestExpandHome(t *testing.T) {
	if got, err := ExpandHome("/data/cytof.csv"); err != nil || got != "/data/cytof.csv" {
		t.Errorf("absolute path changed: %q, %v", got, err)
	}

	got, err := ExpandHome("~/cytof.csv")
	if err != nil {
		t.Skip(err)
	}
	if strings.HasPrefix(got, "~") || !strings.HasSuffix(got, "cytof.csv") {
		t.Errorf("got %q", got)
	}
}
