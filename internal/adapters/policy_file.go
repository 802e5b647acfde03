package adapters

import (
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"depsentry/internal/types"
)

// PolicyFileAdapter reads a shared scan policy from a YAML file,
// typically checked into the consuming repository.
type PolicyFileAdapter struct{}

func NewPolicyFileAdapter() PolicyFileAdapter {
	return PolicyFileAdapter{}
}

func (a PolicyFileAdapter) LoadPolicy(path string) (types.ScanPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ScanPolicy{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("failed to read policy file %s", path)).
			WithCause(err)
	}
	var policy types.ScanPolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return types.ScanPolicy{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse policy file %s", path)).
			WithCause(err)
	}
	return policy, nil
}
