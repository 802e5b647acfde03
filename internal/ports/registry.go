package ports

import (
	"context"

	"depsentry/internal/types"
)

type PackageMetadataPort interface {
	Packument(ctx context.Context, name string) (types.Packument, error)
}
