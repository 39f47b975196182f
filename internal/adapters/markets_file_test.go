package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketsYAML = `api_version: v1
markets:
  - name: stable
    engine: 1.93.1
    directory: /srv/markets/stable
  - name: legacy
    engine: 1.85.2
    directory: /srv/markets/legacy
extensions:
  - golang.go
  - ms-python.python
defaults:
  editor_cli: code
  disabled_file: /etc/vsix-sync/disabled
`

func TestMarketsFileLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(marketsYAML), 0o644))

	spec, err := NewMarketsFileAdapter().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "v1", spec.APIVersion)
	require.Len(t, spec.Markets, 2)
	assert.Equal(t, "stable", spec.Markets[0].Name)
	assert.Equal(t, "1.93.1", spec.Markets[0].Engine)
	assert.Equal(t, "/srv/markets/legacy", spec.Markets[1].Directory)
	assert.Equal(t, []string{"golang.go", "ms-python.python"}, spec.Extensions)
	assert.Equal(t, "code", spec.Defaults.EditorCLI)
	assert.Equal(t, "/etc/vsix-sync/disabled", spec.Defaults.DisabledFile)
}

func TestMarketsFileMissing(t *testing.T) {
	_, err := NewMarketsFileAdapter().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestMarketsFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("markets: [unbalanced"), 0o644))

	_, err := NewMarketsFileAdapter().Load(path)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
