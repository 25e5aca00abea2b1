package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CellKind tells how a cell value was supplied by the table reader.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is a single table value. Readers supply either text or a number;
// the coordinate parser inspects both forms.
type Cell struct {
	Kind CellKind
	Text string
	Num  float64
}

// TextCell builds a text cell.
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// NumberCell builds a numeric cell.
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Num: f} }

// String renders the cell the way a spreadsheet would show it.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	default:
		return ""
	}
}

// IsEmpty reports whether the cell carries no usable value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty || (c.Kind == CellText && strings.TrimSpace(c.Text) == "")
}

// MarshalJSON writes numbers as JSON numbers, text as strings and empty cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellText:
		return json.Marshal(c.Text)
	case CellNumber:
		return json.Marshal(c.Num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, a number, or null.
func (c *Cell) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*c = Cell{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = TextCell(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = NumberCell(f)
	return nil
}

// Table is a caller-owned dataset of rows with named columns.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of the named column (exact match) or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col); missing trailing cells read as empty.
func (t Table) Cell(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return Cell{}
	}
	return t.Rows[row][col]
}

// Clone returns a deep copy so pipeline stages never alias the caller's rows.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]Cell, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]Cell(nil), r...)
	}
	return out
}
