package adapters

import (
	"context"
	"os/exec"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"vsix-sync/internal/shared"
	"vsix-sync/internal/types"
)

// EditorExecAdapter applies plan actions through the target editor's CLI.
type EditorExecAdapter struct {
	CLI string
}

func NewEditorExecAdapter(cli string) EditorExecAdapter {
	if cli == "" {
		cli = "code"
	}
	return EditorExecAdapter{CLI: cli}
}

func (a EditorExecAdapter) Apply(ctx context.Context, action types.Action) error {
	args, err := ActionArgs(action)
	if err != nil {
		return err
	}
	log.Info().Str("cli", a.CLI).Strs("args", args).Msg("applying action")
	cmd := exec.CommandContext(ctx, a.CLI, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("editor CLI action failed: " + string(action.Kind) + " " + action.ID).
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

// ActionArgs maps one action to editor CLI arguments. Updates pass --force
// so the CLI replaces the already-installed version.
func ActionArgs(action types.Action) ([]string, error) {
	switch action.Kind {
	case types.ActionInstall:
		return []string{"--install-extension", action.ArtifactLocation}, nil
	case types.ActionUpdate:
		return []string{"--install-extension", action.ArtifactLocation, "--force"}, nil
	case types.ActionUninstall:
		return []string{"--uninstall-extension", action.ID}, nil
	case types.ActionEnable:
		return []string{"--enable-extension", action.ID}, nil
	case types.ActionDisable:
		return []string{"--disable-extension", action.ID}, nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported action kind: " + string(action.Kind))
	}
}
