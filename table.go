package cytoheat

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

type Format byte

const (
	FormatText Format = iota
	FormatXLS
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatXLS:
		return "xls"
	case FormatXLSX:
		return "xlsx"
	}

	return "text"
}

// DetectFormat infers the table format from a file name. Anything that is not
// a spreadsheet is treated as delimited text, possibly compressed.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		return FormatXLS
	case ".xlsx", ".xlsm":
		return FormatXLSX
	}

	return FormatText
}

type TableOptions struct {
	// Storage is required to read gs:// paths.
	Storage *storage.Client

	// Sheet names the spreadsheet sheet to read. The first sheet is used when
	// empty.
	Sheet string

	// Delimiter overrides delimiter detection for text tables.
	Delimiter rune
}

// Table is a fully loaded table whose rows are handed out one at a time by
// Read. It satisfies tagindex.RowReader.
type Table struct {
	Name        string
	Format      Format
	Compression DataType
	Delimiter   rune
	Sheet       string

	rows [][]string
	next int
}

// OpenTable loads a whole table from a local or gs:// path.
func OpenTable(ctx context.Context, path string, opts TableOptions) (*Table, error) {
	rc, err := Open(ctx, path, opts.Storage)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return ReadTable(rc, path, opts)
}

// ReadTable loads a whole table from r. name is only used to pick the format
// and, for text, the delimiter.
func ReadTable(r io.Reader, name string, opts TableOptions) (*Table, error) {
	t := &Table{
		Name:        name,
		Format:      DetectFormat(name),
		Compression: DataTypeNoCompression,
	}

	var err error
	switch t.Format {
	case FormatXLS:
		err = t.readXLS(r, opts.Sheet)
	case FormatXLSX:
		err = t.readXLSX(r, opts.Sheet)
	default:
		err = t.readText(r, opts.Delimiter)
	}
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", name, err))
	}

	return t, nil
}

func (t *Table) readText(r io.Reader, delimiter rune) error {
	dr, dt, err := MaybeDecompress(r)
	if err != nil {
		return err
	}
	t.Compression = dt

	data, err := io.ReadAll(dr)
	if err != nil {
		return err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if delimiter == 0 {
		delimiter = delimiterForPath(t.Name)
	}
	if delimiter == 0 {
		delimiter = DetermineDelimiter(data)
	}
	t.Delimiter = delimiter

	csvr := csv.NewReader(bytes.NewReader(data))
	csvr.Comma = delimiter
	csvr.FieldsPerRecord = -1
	csvr.LazyQuotes = true

	t.rows, err = csvr.ReadAll()
	return err
}

func (t *Table) readXLS(r io.Reader, sheetName string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	spreadsheet, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return err
	}
	if spreadsheet == nil {
		return fmt.Errorf("no workbook stream found")
	}

	var sheet *xls.WorkSheet
	for sheetID := 0; sheetID < spreadsheet.NumSheets(); sheetID++ {
		candidate := spreadsheet.GetSheet(sheetID)
		if candidate == nil {
			continue
		}
		if sheetName == "" || candidate.Name == sheetName {
			sheet = candidate
			break
		}
	}
	if sheet == nil {
		return fmt.Errorf("sheet %q not found", sheetName)
	}
	t.Sheet = sheet.Name

	for rowID := 0; rowID <= int(sheet.MaxRow); rowID++ {
		row := sheet.Row(rowID)
		if row == nil {
			t.appendRow(nil)
			continue
		}

		cells := make([]string, 0, row.LastCol()+1)
		for colID := 0; colID <= row.LastCol(); colID++ {
			cells = append(cells, row.Col(colID))
		}
		t.appendRow(cells)
	}

	return nil
}

func (t *Table) readXLSX(r io.Reader, sheetName string) error {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return fmt.Errorf("workbook has no sheets")
		}
		sheetName = sheets[0]
	}
	t.Sheet = sheetName

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return err
	}
	for _, row := range rows {
		t.appendRow(row)
	}

	return nil
}

// appendRow drops trailing empty cells. Empty rows are kept so that header
// positions are not shifted.
func (t *Table) appendRow(cells []string) {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}

	t.rows = append(t.rows, cells[:end])
}

// Read returns the next row, or io.EOF after the last one.
func (t *Table) Read() ([]string, error) {
	if t.next >= len(t.rows) {
		return nil, io.EOF
	}
	row := t.rows[t.next]
	t.next++

	return row, nil
}

// Len is the number of rows in the table.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rewind makes the next Read return the first row again.
func (t *Table) Rewind() {
	t.next = 0
}
