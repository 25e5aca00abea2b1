package postgres

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// maxSourceRows caps how many rows one station source may return.
const maxSourceRows = 100_000

// StationSource implements ports.StationSource by running named SELECT
// statements inside read-only transactions.
type StationSource struct {
	db      *DB
	queries map[string]string
}

// NewStationSource creates a StationSource over name → SQL.
func NewStationSource(db *DB, queries map[string]string) *StationSource {
	q := make(map[string]string, len(queries))
	for k, v := range queries {
		q[k] = v
	}
	return &StationSource{db: db, queries: q}
}

// Sources lists the configured names, sorted.
func (s *StationSource) Sources() []string {
	names := make([]string, 0, len(s.queries))
	for k := range s.queries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Load runs the named query and converts its result set into a table.
func (s *StationSource) Load(ctx context.Context, name string) (domain.Table, error) {
	query, ok := s.queries[name]
	if !ok {
		return domain.Table{}, domain.ErrSourceNotFound
	}

	tx, err := s.db.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return domain.Table{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return domain.Table{}, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var t domain.Table
	for _, fd := range rows.FieldDescriptions() {
		t.Columns = append(t.Columns, fd.Name)
	}
	for rows.Next() {
		if t.Len() >= maxSourceRows {
			return domain.Table{}, fmt.Errorf("query: more than %d rows", maxSourceRows)
		}
		vals, err := rows.Values()
		if err != nil {
			return domain.Table{}, fmt.Errorf("scan: %w", err)
		}
		row := make([]domain.Cell, len(vals))
		for i, v := range vals {
			row[i] = cellFromValue(v)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return domain.Table{}, fmt.Errorf("rows: %w", err)
	}
	return t, nil
}

// cellFromValue maps a decoded column value to a cell. Numbers stay
// numeric so decimal columns reach the parser without a text round trip.
func cellFromValue(v any) domain.Cell {
	switch x := v.(type) {
	case nil:
		return domain.Cell{}
	case float64:
		return domain.NumberCell(x)
	case float32:
		return domain.NumberCell(float64(x))
	case int64:
		return domain.NumberCell(float64(x))
	case int32:
		return domain.NumberCell(float64(x))
	case int16:
		return domain.NumberCell(float64(x))
	case int8:
		return domain.NumberCell(float64(x))
	case int:
		return domain.NumberCell(float64(x))
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return domain.Cell{}
		}
		return domain.NumberCell(f.Float64)
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		return domain.NumberCell(f)
	case string:
		return domain.TextCell(x)
	case []byte:
		return domain.TextCell(string(x))
	case time.Time:
		return domain.TextCell(x.Format(time.RFC3339))
	default:
		return domain.TextCell(fmt.Sprint(x))
	}
}
