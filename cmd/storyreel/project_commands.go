package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storyreel/internal/snapshot"
)

var errSeeLog = errors.New("see the storyreel log for details")

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Save, load, and manage projects",
	}

	projectCmd.AddCommand(newProjectListCommand(ctx))
	projectCmd.AddCommand(newProjectSaveCommand(ctx))
	projectCmd.AddCommand(newProjectLoadCommand(ctx))
	projectCmd.AddCommand(newProjectSwitchCommand(ctx))
	projectCmd.AddCommand(newProjectNewCommand(ctx))
	projectCmd.AddCommand(newProjectDeleteCommand(ctx))
	projectCmd.AddCommand(newProjectShowCommand(ctx))
	projectCmd.AddCommand(newProjectCleanCommand(ctx))

	return projectCmd
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				names := rt.host.List(cmd.Context())
				out := cmd.OutOrStdout()
				if len(names) == 0 {
					fmt.Fprintln(out, "No saved projects")
					return nil
				}
				active := rt.projects.Active(cmd.Context())
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					fields, size := "-", "-"
					if snap, ok := rt.projects.Show(cmd.Context(), name); ok {
						fields = strconv.Itoa(snap.Present())
					}
					if info, err := os.Stat(rt.projects.Layout().StatePath(name)); err == nil {
						size = humanize.Bytes(uint64(info.Size()))
					}
					rows = append(rows, []string{name, yesNo(name == active), fields, size, rt.projects.Layout().ProjectDir(name)})
				}
				fmt.Fprintln(out, renderTable([]column{
					textCol("Project"), textCol("Active"), numCol("Fields"), numCol("Size"), textCol("Directory"),
				}, rows))
				return nil
			})
		},
	}
}

func newProjectSaveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the active project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				if !rt.host.Save(cmd.Context()) {
					return fmt.Errorf("save failed: %w", errSeeLog)
				}
				name := rt.projects.Active(cmd.Context())
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", name, rt.projects.Layout().StatePath(name))
				return nil
			})
		},
	}
}

func newProjectLoadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load <name>",
		Short: "Load a project without saving the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				if !rt.host.Load(cmd.Context(), args[0]) {
					return fmt.Errorf("load %s failed: %w", args[0], errSeeLog)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s\n", args[0])
				return nil
			})
		},
	}
}

func newProjectSwitchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <name>",
		Short: "Save the active project and load another",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				if !rt.host.Switch(cmd.Context(), args[0]) {
					return fmt.Errorf("switch to %s failed: %w", args[0], errSeeLog)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Switched to %s\n", args[0])
				return nil
			})
		},
	}
}

func newProjectNewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Save the active project and start a fresh one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				if !rt.host.Create(cmd.Context(), args[0]) {
					return fmt.Errorf("create %s failed: %w", args[0], errSeeLog)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", args[0])
				return nil
			})
		},
	}
}

func newProjectDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a project directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				if !rt.host.Delete(cmd.Context(), args[0]) {
					return fmt.Errorf("project %s not deleted (missing or not removable)", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show a saved project without loading it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				name := rt.projects.Active(cmd.Context())
				if len(args) == 1 {
					name = args[0]
				}
				if strings.TrimSpace(name) == "" {
					return errors.New("no active project; pass a project name")
				}
				snap, ok := rt.projects.Show(cmd.Context(), name)
				if !ok {
					return fmt.Errorf("project %s has no readable state file", name)
				}
				out := cmd.OutOrStdout()
				if raw {
					data, err := snapshot.Encode(snap)
					if err != nil {
						return err
					}
					_, err = out.Write(data)
					return err
				}
				fmt.Fprint(out, renderSnapshot(snap, shouldColorize(out)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the state file as stored")
	return cmd
}

func newProjectCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove temp files left by interrupted saves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				result := rt.projects.CleanStaleTemp(cmd.Context(), maxAge)
				out := cmd.OutOrStdout()
				for _, path := range result.Removed {
					fmt.Fprintf(out, "Removed %s\n", path)
				}
				fmt.Fprintf(out, "Removed %d stale temp files\n", len(result.Removed))
				if len(result.Errors) > 0 {
					return fmt.Errorf("%d temp files could not be removed: %w", len(result.Errors), errSeeLog)
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", time.Hour, "Only remove temp files older than this")
	return cmd
}

func renderSnapshot(snap snapshot.Snapshot, colorize bool) string {
	caser := cases.Title(language.English)
	var b strings.Builder
	for i, group := range snapshot.Groups() {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, line := range renderSectionHeader(caser.String(group.Name), colorize) {
			b.WriteString(line + "\n")
		}
		rows := make([][]string, 0, len(group.Fields))
		for _, field := range group.Fields {
			rows = append(rows, []string{field, formatSnapshotValue(snap.Value(field))})
		}
		b.WriteString(renderTable([]column{textCol("Field"), textCol("Value")}, rows))
		b.WriteString("\n")
	}
	return b.String()
}

func formatSnapshotValue(value any, present bool) string {
	if !present {
		return "-"
	}
	switch v := value.(type) {
	case string:
		if v == "" {
			return `""`
		}
		return v
	case bool:
		return yesNo(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
