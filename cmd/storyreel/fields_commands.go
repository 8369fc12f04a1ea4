package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFieldsCommand(ctx *commandContext) *cobra.Command {
	fieldsCmd := &cobra.Command{
		Use:   "fields",
		Short: "Inspect and edit individual field values",
	}
	fieldsCmd.AddCommand(newFieldsListCommand(ctx))
	fieldsCmd.AddCommand(newFieldsGetCommand(ctx))
	fieldsCmd.AddCommand(newFieldsSetCommand(ctx))
	return fieldsCmd
}

func newFieldsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every field with its current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				names := rt.stores.Names()
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					entry, _ := rt.stores.Lookup(name)
					value, err := entry.GetText(cmd.Context())
					if err != nil {
						value = "error: " + err.Error()
					}
					rows = append(rows, []string{name, value})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{textCol("Field"), textCol("Value")}, rows))
				return nil
			})
		},
	}
}

func newFieldsGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <store.key>",
		Short: "Print one field value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				entry, ok := rt.stores.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown field %q (see `storyreel fields list`)", args[0])
				}
				value, err := entry.GetText(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	}
}

func newFieldsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <store.key> <value>",
		Short: "Write one field value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				entry, ok := rt.stores.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown field %q (see `storyreel fields list`)", args[0])
				}
				if err := entry.SetText(cmd.Context(), args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", entry.Name(), args[1])
				return nil
			})
		},
	}
}
