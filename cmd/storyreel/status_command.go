package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories and the job backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Preflight", colorize) {
					fmt.Fprintln(out, line)
				}
				failed := 0
				for _, result := range preflight.RunAll(cmd.Context(), rt.cfg, rt.jobs) {
					kind := statusOK
					if !result.Passed {
						kind = statusError
						failed++
					}
					fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}

				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Projects", colorize) {
					fmt.Fprintln(out, line)
				}
				active := rt.projects.Active(cmd.Context())
				if active == "" {
					fmt.Fprintln(out, renderStatusLine("Active project", statusWarn, "none", colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Active project", statusInfo, active, colorize))
				}
				names := rt.host.List(cmd.Context())
				saved := fmt.Sprintf("%d", len(names))
				if len(names) > 0 {
					saved += " (" + strings.Join(names, ", ") + ")"
				}
				fmt.Fprintln(out, renderStatusLine("Saved projects", statusInfo, saved, colorize))

				if failed > 0 {
					return fmt.Errorf("%d preflight checks failed", failed)
				}
				return nil
			})
		},
	}
}
