package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownFormat is returned for a format selector outside DMS / Decimal Degrees / UTM.
	ErrUnknownFormat = errors.New("unknown coordinate format")
	// ErrEmptyTable is returned when the input has no data rows at all.
	ErrEmptyTable = errors.New("input table has no rows")
	// ErrPlanNotFound is returned when a plan id is not in the cache.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrSourceNotFound is returned for an unconfigured station source name.
	ErrSourceNotFound = errors.New("station source not found")
	// ErrInvalidConfig is returned when plan settings are out of range.
	ErrInvalidConfig = errors.New("invalid plan config")
	// ErrUnavailable is returned when an optional backend (queue, database) is not connected.
	ErrUnavailable = errors.New("backend unavailable")
)

// ColumnError reports that no latitude or longitude column could be resolved.
type ColumnError struct {
	Axis      Axis
	Requested string // explicit column name, empty when aliases were used
	Columns   []string
}

func (e *ColumnError) Error() string {
	if e.Requested != "" {
		return fmt.Sprintf("resolve columns: %s column %q not found (have: %s)",
			e.Axis, e.Requested, strings.Join(e.Columns, ", "))
	}
	return fmt.Sprintf("resolve columns: no %s column found (have: %s)",
		e.Axis, strings.Join(e.Columns, ", "))
}

// ConversionError reports that every row failed to resolve to a coordinate.
type ConversionError struct {
	Format          Format
	Rows            int
	SuggestedFormat Format // empty when no other format does better
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("convert coordinates: none of %d rows could be read as %s; format selection does not match data",
		e.Rows, e.Format)
	if e.SuggestedFormat != "" {
		msg += fmt.Sprintf(" (try %s)", e.SuggestedFormat)
	}
	return msg
}

// UTMColumnsError reports a table too narrow for positional UTM input.
type UTMColumnsError struct {
	Columns int
}

func (e *UTMColumnsError) Error() string {
	return fmt.Sprintf("convert coordinates: UTM needs easting, northing, zone number and zone letter as the first 4 columns, table has %d",
		e.Columns)
}

// CornerError reports a manual extent corner that could not be parsed.
type CornerError struct {
	Corner string
	Value  string
}

func (e *CornerError) Error() string {
	return fmt.Sprintf("manual extent: %s corner %q is not a DMS coordinate", e.Corner, e.Value)
}
