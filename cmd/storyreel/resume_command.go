package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Reconcile stale processing flags against background jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				result := <-rt.host.OnForegroundResume(cmd.Context())
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderStatusLine("Narration audio", outcomeKind(result.Audio), string(result.Audio), colorize))
				scenes := string(result.Scenes)
				if result.ScenesCleared > 0 {
					scenes = fmt.Sprintf("%s (%d scenes)", scenes, result.ScenesCleared)
				}
				fmt.Fprintln(out, renderStatusLine("Scene video", outcomeKind(result.Scenes), scenes, colorize))
				return nil
			})
		},
	}
}
