package ports

import "depsentry/internal/types"

type GraphPort interface {
	LoadGraph(path string) (*types.Node, error)
	SaveGraph(path string, root *types.Node) error
}
