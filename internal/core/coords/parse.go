package coords

import (
	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// Value is the outcome of parsing one coordinate cell.
type Value struct {
	Deg float64 `json:"value"`
	OK  bool    `json:"ok"`
	DMM bool    `json:"dmm"` // repaired from a DMM mistype
}

// ParseCell parses one latitude or longitude cell in DMS or decimal-degree
// form. UTM is positional across four columns and goes through ParseUTMRow.
func ParseCell(c domain.Cell, format domain.Format, axis domain.Axis, autoFixDMM bool) Value {
	switch format {
	case domain.FormatDMS:
		if d, ok := ParseDMS(c.String()); ok {
			return Value{Deg: d, OK: true}
		}
	case domain.FormatDecimalDegrees:
		return ParseDecimal(c, axis, autoFixDMM)
	}
	return Value{}
}
