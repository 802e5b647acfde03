package adapters

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"depsentry/internal/types"
)

// GraphFileAdapter loads and saves resolved dependency graph snapshots
// as JSON trees, the interchange format produced by the external
// resolver. Snapshots are plain trees; edges are reconstructed from
// each node's declared dependency map.
type GraphFileAdapter struct{}

func NewGraphFileAdapter() GraphFileAdapter {
	return GraphFileAdapter{}
}

type nodeJSON struct {
	Name         string               `json:"name"`
	Version      string               `json:"version"`
	Resolved     string               `json:"resolved,omitempty"`
	Integrity    string               `json:"integrity,omitempty"`
	Deprecated   string               `json:"deprecated,omitempty"`
	Dependencies map[string]string    `json:"dependencies,omitempty"`
	Overrides    map[string]string    `json:"overrides,omitempty"`
	Children     map[string]*nodeJSON `json:"children,omitempty"`
}

func (a GraphFileAdapter) LoadGraph(path string) (*types.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("failed to read graph snapshot %s", path)).
			WithCause(err)
	}
	var root nodeJSON
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse graph snapshot %s", path)).
			WithCause(err)
	}
	return buildNode(&root), nil
}

func (a GraphFileAdapter) SaveGraph(path string, root *types.Node) error {
	if root == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("graph root is required")
	}
	data, err := json.MarshalIndent(dumpNode(root), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func buildNode(raw *nodeJSON) *types.Node {
	node := &types.Node{
		Name:         raw.Name,
		Version:      raw.Version,
		Resolved:     raw.Resolved,
		Integrity:    raw.Integrity,
		Deprecated:   raw.Deprecated,
		Dependencies: raw.Dependencies,
		Overrides:    raw.Overrides,
		Children:     map[string]*types.Node{},
		EdgesOut:     map[string]*types.Edge{},
	}
	for name, child := range raw.Children {
		node.Children[name] = buildNode(child)
	}
	for name, spec := range raw.Dependencies {
		node.EdgesOut[name] = &types.Edge{
			Name: name,
			Spec: spec,
			To:   node.Children[name],
		}
	}
	return node
}

func dumpNode(node *types.Node) *nodeJSON {
	raw := &nodeJSON{
		Name:         node.Name,
		Version:      node.Version,
		Resolved:     node.Resolved,
		Integrity:    node.Integrity,
		Deprecated:   node.Deprecated,
		Dependencies: node.Dependencies,
		Overrides:    node.Overrides,
	}
	if len(node.Children) > 0 {
		raw.Children = map[string]*nodeJSON{}
		for name, child := range node.Children {
			raw.Children[name] = dumpNode(child)
		}
	}
	return raw
}
