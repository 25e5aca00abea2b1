package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// ReadXLSX reads the first worksheet of a workbook. The first non-empty
// row is the header. Cells are read as stored, not as displayed, so a number
// format such as "0.00" does not truncate coordinates.
func ReadXLSX(r io.Reader, maxRows int) (domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.Table{}, fmt.Errorf("read xlsx: %w", domain.ErrEmptyTable)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.Table{}, fmt.Errorf("read xlsx sheet %q: %w", sheets[0], err)
	}

	for len(rows) > 0 && len(rows[0]) == 0 {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return domain.Table{}, fmt.Errorf("read xlsx: %w", domain.ErrEmptyTable)
	}
	if len(rows)-1 > maxRows {
		return domain.Table{}, fmt.Errorf("read xlsx: more than %d rows", maxRows)
	}
	return buildTable(rows[0], rows[1:]), nil
}
