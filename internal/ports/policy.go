package ports

import "depsentry/internal/types"

type ScanPolicyPort interface {
	LoadPolicy(path string) (types.ScanPolicy, error)
}
