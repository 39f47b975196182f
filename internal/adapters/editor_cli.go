package adapters

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"vsix-sync/internal/shared"
	"vsix-sync/internal/types"
)

// EditorCLIAdapter snapshots installed extensions through a VS Code style
// command line interface ("code", "cursor", ...). The CLI reports
// id@version lines but not enabled state, so disabled ids come from an
// optional sidecar file exported from the editor profile: one id per line,
// empty lines and #-comments ignored.
type EditorCLIAdapter struct {
	CLI          string
	DisabledFile string
}

func NewEditorCLIAdapter(cli string, disabledFile string) EditorCLIAdapter {
	if strings.TrimSpace(cli) == "" {
		cli = "code"
	}
	return EditorCLIAdapter{CLI: cli, DisabledFile: disabledFile}
}

func (a EditorCLIAdapter) List(ctx context.Context) (map[string]types.InstalledExtension, error) {
	cmd := exec.CommandContext(ctx, a.CLI, "--list-extensions", "--show-versions")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("editor CLI unavailable: " + a.CLI).
			WithCause(shared.CommandError(output, err))
	}
	disabled, err := a.disabledIDs()
	if err != nil {
		return nil, err
	}
	return ParseInstalledList(string(output), disabled), nil
}

// ParseInstalledList parses `--list-extensions --show-versions` output.
// Lines without an @ separator are ignored.
func ParseInstalledList(output string, disabled map[string]struct{}) map[string]types.InstalledExtension {
	installed := map[string]types.InstalledExtension{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "@") {
			continue
		}
		parts := strings.SplitN(line, "@", 2)
		id := shared.NormalizeExtensionID(parts[0])
		version := strings.TrimSpace(parts[1])
		if id == "" || version == "" {
			continue
		}
		_, isDisabled := disabled[id]
		installed[id] = types.InstalledExtension{
			ID:      id,
			Version: version,
			Enabled: !isDisabled,
		}
	}
	return installed
}

func (a EditorCLIAdapter) disabledIDs() (map[string]struct{}, error) {
	ids := map[string]struct{}{}
	if strings.TrimSpace(a.DisabledFile) == "" {
		return ids, nil
	}
	data, err := os.ReadFile(a.DisabledFile)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("disabled extensions file not found").
			WithCause(err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids[shared.NormalizeExtensionID(line)] = struct{}{}
	}
	return ids, nil
}
