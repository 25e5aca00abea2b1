package ports

import (
	"context"
	"io"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// StationSource loads station tables from a read-only backing store.
type StationSource interface {
	// Sources lists the configured source names, sorted.
	Sources() []string
	// Load runs the named source and returns its rows. Unknown names
	// return domain.ErrSourceNotFound.
	Load(ctx context.Context, name string) (domain.Table, error)
}

// TableReader decodes an uploaded file into a table. The file name selects
// the decoder by extension.
type TableReader interface {
	Read(filename string, r io.Reader) (domain.Table, error)
}
