// Package resource implements the record-facing CLI commands.
package resource

import (
	"github.com/spf13/cobra"

	"github.com/crmarques/restmodel/internal/cli/common"
	"github.com/crmarques/restmodel/model"
)

func NewTypesCommand(deps common.CommandDependencies, flags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the configured resource types",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			modelContext, err := deps.ModelContext(*flags)
			if err != nil {
				return err
			}
			return common.PrintJSON(command.OutOrStdout(), modelContext.TypeKeys())
		},
	}
}

func NewListCommand(deps common.CommandDependencies, flags *common.GlobalFlags) *cobra.Command {
	var parentPairs []string

	command := &cobra.Command{
		Use:   "list <type>",
		Short: "List records of a resource type",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			modelContext, err := deps.ModelContext(*flags)
			if err != nil {
				return err
			}
			parents, err := common.ParseParents(parentPairs)
			if err != nil {
				return err
			}

			collection, err := modelContext.All(command.Context(), args[0], parents, model.RequestOptions{})
			if err != nil {
				return err
			}

			records := make([]map[string]any, 0, len(collection))
			for _, instance := range collection {
				records = append(records, instance.Properties())
			}
			return common.PrintJSON(command.OutOrStdout(), records)
		},
	}
	command.Flags().StringArrayVar(&parentPairs, "parent", nil, "parent key as name=value, repeatable")
	return command
}

func NewGetCommand(deps common.CommandDependencies, flags *common.GlobalFlags) *cobra.Command {
	var parentPairs []string

	command := &cobra.Command{
		Use:   "get <type> <id>",
		Short: "Get one record by primary key",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			modelContext, err := deps.ModelContext(*flags)
			if err != nil {
				return err
			}
			parents, err := common.ParseParents(parentPairs)
			if err != nil {
				return err
			}

			instance, err := modelContext.Find(command.Context(), args[0], parents, args[1], model.RequestOptions{})
			if err != nil {
				return err
			}
			return common.PrintJSON(command.OutOrStdout(), instance.Properties())
		},
	}
	command.Flags().StringArrayVar(&parentPairs, "parent", nil, "parent key as name=value, repeatable")
	return command
}

func NewCreateCommand(deps common.CommandDependencies, flags *common.GlobalFlags) *cobra.Command {
	var parentPairs []string
	var data string

	command := &cobra.Command{
		Use:   "create <type>",
		Short: "Create a record from a JSON payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			modelContext, err := deps.ModelContext(*flags)
			if err != nil {
				return err
			}
			parents, err := common.ParseParents(parentPairs)
			if err != nil {
				return err
			}
			props, err := common.DecodeData(data, command.InOrStdin())
			if err != nil {
				return err
			}
			for name, value := range parents {
				props[name] = value
			}

			class, err := modelContext.Class(args[0])
			if err != nil {
				return err
			}
			instance := class.New(props)
			if err := modelContext.Save(command.Context(), instance, model.RequestOptions{}); err != nil {
				return err
			}
			return common.PrintJSON(command.OutOrStdout(), instance.Properties())
		},
	}
	command.Flags().StringArrayVar(&parentPairs, "parent", nil, "parent key as name=value, repeatable")
	command.Flags().StringVar(&data, "data", "", "JSON object payload, or - for stdin")
	return command
}

func NewUpdateCommand(deps common.CommandDependencies, flags *common.GlobalFlags) *cobra.Command {
	var parentPairs []string
	var data string

	command := &cobra.Command{
		Use:   "update <type> <id>",
		Short: "Update a record with a JSON payload",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			modelContext, err := deps.ModelContext(*flags)
			if err != nil {
				return err
			}
			parents, err := common.ParseParents(parentPairs)
			if err != nil {
				return err
			}
			props, err := common.DecodeData(data, command.InOrStdin())
			if err != nil {
				return err
			}

			instance, err := modelContext.Find(command.Context(), args[0], parents, args[1], model.RequestOptions{})
			if err != nil {
				return err
			}
			for name, value := range props {
				instance.Set(name, value)
			}
			if err := modelContext.Save(command.Context(), instance, model.RequestOptions{}); err != nil {
				return err
			}
			return common.PrintJSON(command.OutOrStdout(), instance.Properties())
		},
	}
	command.Flags().StringArrayVar(&parentPairs, "parent", nil, "parent key as name=value, repeatable")
	command.Flags().StringVar(&data, "data", "", "JSON object payload, or - for stdin")
	return command
}

func NewDeleteCommand(deps common.CommandDependencies, flags *common.GlobalFlags) *cobra.Command {
	var parentPairs []string

	command := &cobra.Command{
		Use:   "delete <type> <id>",
		Short: "Delete a record by primary key",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			modelContext, err := deps.ModelContext(*flags)
			if err != nil {
				return err
			}
			parents, err := common.ParseParents(parentPairs)
			if err != nil {
				return err
			}

			class, err := modelContext.Class(args[0])
			if err != nil {
				return err
			}

			descriptor := class.Descriptor()
			props := map[string]any{descriptor.PrimaryKeys[0]: args[1]}
			for name, value := range parents {
				props[name] = value
			}
			instance := class.New(props)

			return modelContext.Delete(command.Context(), instance, model.RequestOptions{})
		},
	}
	command.Flags().StringArrayVar(&parentPairs, "parent", nil, "parent key as name=value, repeatable")
	return command
}
