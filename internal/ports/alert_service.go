package ports

import (
	"context"

	"depsentry/internal/types"
)

type AlertServicePort interface {
	// BatchSize is the maximum number of purls accepted per lookup
	// round-trip. It is a contract of the remote service, not a local
	// tuning knob.
	BatchSize() int
	FetchBatch(ctx context.Context, purls []string, filter types.AlertFilter) ([]types.BatchResult, error)
}
