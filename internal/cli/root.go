// Package cli assembles the restmodel command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/crmarques/restmodel/debugctx"
	"github.com/crmarques/restmodel/internal/cli/common"
	resourcecmd "github.com/crmarques/restmodel/internal/cli/resource"
	versioncmd "github.com/crmarques/restmodel/internal/cli/version"
)

func NewRootCommand(deps Dependencies) *cobra.Command {
	commandDeps := deps.commandDependencies()
	var globalFlags common.GlobalFlags

	root := &cobra.Command{
		Use:   "restmodel",
		Short: "Work with REST resources through the configured model",
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
		Args: cobra.NoArgs,
		PersistentPreRun: func(command *cobra.Command, _ []string) {
			commandContext := command.Context()
			if commandContext == nil {
				commandContext = context.Background()
			}
			commandContext = debugctx.WithEnabled(commandContext, globalFlags.Debug)
			commandContext = debugctx.WithWriter(commandContext, command.ErrOrStderr())
			command.SetContext(commandContext)

			debugctx.Printf(
				command.Context(),
				"root flags config=%q verbose=%d command=%q",
				globalFlags.ConfigPath,
				globalFlags.Verbose,
				command.CommandPath(),
			)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	common.BindGlobalFlags(root, &globalFlags)

	root.AddCommand(
		resourcecmd.NewTypesCommand(commandDeps, &globalFlags),
		resourcecmd.NewListCommand(commandDeps, &globalFlags),
		resourcecmd.NewGetCommand(commandDeps, &globalFlags),
		resourcecmd.NewCreateCommand(commandDeps, &globalFlags),
		resourcecmd.NewUpdateCommand(commandDeps, &globalFlags),
		resourcecmd.NewDeleteCommand(commandDeps, &globalFlags),
		versioncmd.NewCommand(),
	)

	return root
}
