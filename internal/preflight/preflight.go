package preflight

import (
	"context"

	"storyreel/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for cfg. jobs may be nil when the
// backend could not be constructed.
func RunAll(ctx context.Context, cfg *config.Config, jobs Pinger) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Projects directory", cfg.Paths.ProjectsDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckJobs(ctx, jobsCheckName(cfg), jobs))
	return results
}

func jobsCheckName(cfg *config.Config) string {
	if cfg.Jobs.Backend == config.JobsBackendAsynq {
		return "Job backend (asynq " + cfg.Jobs.RedisAddr + ")"
	}
	return "Job backend (ledger)"
}
