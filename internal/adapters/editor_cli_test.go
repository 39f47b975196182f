package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstalledList(t *testing.T) {
	output := "Pub.Alpha@1.2.3\npub.beta@2.0.0\n\nnot-a-valid-line\n"
	installed := ParseInstalledList(output, nil)

	require.Len(t, installed, 2)
	alpha := installed["pub.alpha"]
	assert.Equal(t, "pub.alpha", alpha.ID)
	assert.Equal(t, "1.2.3", alpha.Version)
	assert.True(t, alpha.Enabled)
}

func TestParseInstalledListMarksDisabled(t *testing.T) {
	disabled := map[string]struct{}{"pub.beta": {}}
	installed := ParseInstalledList("pub.alpha@1.0.0\npub.beta@2.0.0\n", disabled)

	assert.True(t, installed["pub.alpha"].Enabled)
	assert.False(t, installed["pub.beta"].Enabled)
}

func TestParseInstalledListKeepsVersionWithAt(t *testing.T) {
	// Split on the first @ only.
	installed := ParseInstalledList("pub.alpha@1.0.0@weird\n", nil)
	require.Len(t, installed, 1)
	assert.Equal(t, "1.0.0@weird", installed["pub.alpha"].Version)
}

func TestDisabledIDsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disabled.txt")
	require.NoError(t, os.WriteFile(path, []byte("# disabled in profile\nPub.Beta\n\npub.gamma\n"), 0o644))

	adapter := NewEditorCLIAdapter("code", path)
	ids, err := adapter.disabledIDs()
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"pub.beta": {}, "pub.gamma": {}}, ids)
}

func TestDisabledIDsFileMissing(t *testing.T) {
	adapter := NewEditorCLIAdapter("code", "/does/not/exist")
	_, err := adapter.disabledIDs()
	assert.Error(t, err)
}

func TestListFailsWhenCLIUnavailable(t *testing.T) {
	adapter := NewEditorCLIAdapter("definitely-not-an-editor-cli", "")
	_, err := adapter.List(context.Background())
	assert.Error(t, err)
}

func TestNewEditorCLIAdapterDefaultsToCode(t *testing.T) {
	adapter := NewEditorCLIAdapter("", "")
	assert.Equal(t, "code", adapter.CLI)
}
