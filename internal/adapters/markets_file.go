package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"vsix-sync/internal/types"
)

// MarketsFileAdapter loads the yaml markets spec. Validation lives in
// core.ValidateMarketsSpec; this adapter only handles file I/O and
// decoding.
type MarketsFileAdapter struct{}

func NewMarketsFileAdapter() MarketsFileAdapter {
	return MarketsFileAdapter{}
}

func (a MarketsFileAdapter) Load(path string) (types.MarketsSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.MarketsSpec{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("markets spec file not found").
			WithCause(err)
	}
	var spec types.MarketsSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return types.MarketsSpec{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse markets spec yaml").
			WithCause(err)
	}
	return spec, nil
}
