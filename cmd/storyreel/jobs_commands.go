package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/jobs"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and record background jobs",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsRecordCommand(ctx))
	jobsCmd.AddCommand(newJobsEnqueueCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <tag>",
		Short: "List jobs for a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				list, err := rt.jobs.Query(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintf(out, "No jobs tagged %s\n", args[0])
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, job := range list {
					updated := ""
					if !job.UpdatedAt.IsZero() {
						updated = job.UpdatedAt.Local().Format(time.DateTime)
					}
					rows = append(rows, []string{job.ID, string(job.State), yesNo(job.State.Active()), updated})
				}
				fmt.Fprintln(out, renderTable([]column{textCol("ID"), textCol("State"), textCol("Active"), textCol("Updated")}, rows))
				return nil
			})
		},
	}
}

func newJobsRecordCommand(ctx *commandContext) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "record <tag> <state>",
		Short: "Record a job state in the local ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				ledger, ok := rt.jobs.(*jobs.Ledger)
				if !ok {
					return fmt.Errorf("jobs record requires jobs.backend = %q", config.JobsBackendLedger)
				}
				state, err := jobs.ParseState(args[1])
				if err != nil {
					return err
				}
				job, err := ledger.Record(cmd.Context(), jobs.Job{ID: strings.TrimSpace(id), Tag: args[0], State: state})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s as %s\n", job.Tag, job.ID, job.State)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Existing job ID to update")
	return cmd
}

func newJobsEnqueueCommand(ctx *commandContext) *cobra.Command {
	var payload string
	var queue string
	cmd := &cobra.Command{
		Use:   "enqueue <tag>",
		Short: "Enqueue an asynq task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(cmd, func(rt *runtime) error {
				client, ok := rt.jobs.(*jobs.Asynq)
				if !ok {
					return fmt.Errorf("jobs enqueue requires jobs.backend = %q", config.JobsBackendAsynq)
				}
				job, err := client.Enqueue(cmd.Context(), args[0], []byte(payload), queue)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %s %s\n", job.Tag, job.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&payload, "payload", "", "Task payload")
	cmd.Flags().StringVar(&queue, "queue", jobs.DefaultQueue, "asynq queue name")
	return cmd
}
