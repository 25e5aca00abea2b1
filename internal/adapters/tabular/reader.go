// Package tabular decodes uploaded station files (CSV and XLSX) into
// domain tables. Cells are kept as text; the coordinate parser decides
// what a value means.
package tabular

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// ErrUnsupportedFile is returned for an extension with no decoder.
var ErrUnsupportedFile = errors.New("unsupported file type")

// MaxRows caps the number of data rows read from one file.
const MaxRows = 100_000

// Reader implements ports.TableReader by dispatching on the file extension.
type Reader struct {
	MaxRows int
}

// NewReader returns a Reader with the default row cap.
func NewReader() *Reader {
	return &Reader{MaxRows: MaxRows}
}

// Read decodes r according to filename's extension (.csv, .txt, .xlsx).
func (rd *Reader) Read(filename string, r io.Reader) (domain.Table, error) {
	limit := rd.MaxRows
	if limit <= 0 {
		limit = MaxRows
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ReadCSV(r, limit)
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, limit)
	default:
		return domain.Table{}, fmt.Errorf("read %q: %w (want .csv or .xlsx)", filename, ErrUnsupportedFile)
	}
}

// headerNames trims header cells, names blank ones and suffixes duplicates
// so that every column can be addressed by name.
func headerNames(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := map[string]int{}
	for i, h := range raw {
		base := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if base == "" {
			base = fmt.Sprintf("column_%d", i+1)
		}
		seen[base]++
		if seen[base] == 1 {
			out = append(out, base)
		} else {
			out = append(out, fmt.Sprintf("%s_%d", base, seen[base]))
		}
	}
	return out
}

// buildTable turns string records into a table, padding short rows and
// skipping rows that are blank in every column.
func buildTable(header []string, records [][]string) domain.Table {
	t := domain.Table{Columns: headerNames(header)}
	for _, rec := range records {
		row := make([]domain.Cell, len(t.Columns))
		blank := true
		for i := range row {
			if i >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[i])
			if v == "" {
				continue
			}
			row[i] = domain.TextCell(v)
			blank = false
		}
		if !blank {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}
