package cytoheat

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/csimplestring/go-csv/detector"
)

// sniffBytes bounds how much of a table is handed to the delimiter detector.
const sniffBytes = 64 * 1024

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in data, assuming a CSV-like table. Only the head of data is sampled.
func DetermineDelimiter(data []byte) rune {
	if len(data) > sniffBytes {
		data = data[:sniffBytes]
	}

	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(data), '"')

	if len(delimiters) > 0 && len(delimiters[0]) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}

// delimiterForPath returns the delimiter implied by a file extension, or 0
// when the extension says nothing.
func delimiterForPath(path string) rune {
	switch strings.ToLower(filepath.Ext(stripCompressionExt(path))) {
	case ".csv":
		return ','
	case ".tsv", ".tab":
		return '\t'
	}

	return 0
}
