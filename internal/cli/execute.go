package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crmarques/restmodel/core"
	"github.com/crmarques/restmodel/faults"
	"github.com/crmarques/restmodel/internal/cli/common"
)

type Dependencies struct {
	// NewModelContext builds the model context for a command invocation.
	// Left nil, commands fail with an internal error; main wires the
	// default config-file bootstrap.
	NewModelContext func(flags common.GlobalFlags) (*core.ModelContext, error)
}

func (d Dependencies) commandDependencies() common.CommandDependencies {
	return common.CommandDependencies{
		NewModelContext: d.NewModelContext,
	}
}

func DefaultDependencies() Dependencies {
	return Dependencies{
		NewModelContext: func(flags common.GlobalFlags) (*core.ModelContext, error) {
			return core.NewModelContext(core.BootstrapConfig{
				ConfigPath: flags.ConfigPath,
				Logger:     flags.Logger(),
			})
		},
	}
}

func Execute(deps Dependencies) error {
	root := NewRootCommand(deps)
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(root.ErrOrStderr(), strings.TrimSpace(err.Error()))
		return err
	}
	return nil
}

func ExitCodeForError(err error) int {
	if err == nil {
		return 0
	}

	var typedErr *faults.TypedError
	if !errors.As(err, &typedErr) {
		return 1
	}

	switch typedErr.Category {
	case faults.ValidationError, faults.MissingParentKeyError:
		return 2
	case faults.NotFoundError:
		return 3
	case faults.AuthError:
		return 4
	case faults.ConflictError:
		return 5
	case faults.TransportError:
		return 6
	default:
		return 1
	}
}
