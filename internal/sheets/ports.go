package sheets

import (
	"context"
	"errors"

	"transferdash/internal/core"
)

// ErrNotConfigured is returned when a source is missing the settings it needs
// to reach its backing store.
var ErrNotConfigured = errors.New("data source not configured")

// Ports for outbound adapters.
type (
	// TransferReader returns every row of the transfer log. Rows whose
	// timestamp could not be parsed are included with a zero Timestamp.
	TransferReader interface {
		ReadTransfers(ctx context.Context) ([]core.TransferRecord, error)
	}

	// ReaderFunc adapts a function to TransferReader.
	ReaderFunc func(ctx context.Context) ([]core.TransferRecord, error)
)

func (f ReaderFunc) ReadTransfers(ctx context.Context) ([]core.TransferRecord, error) {
	return f(ctx)
}
