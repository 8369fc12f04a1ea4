package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/database"
	"storyreel/internal/fieldstore"
	"storyreel/internal/jobs"
	"storyreel/internal/lifecycle"
	"storyreel/internal/logging"
	"storyreel/internal/project"
	"storyreel/internal/reconcile"
	"storyreel/internal/settings"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

// runtime is the wired store graph shared by commands.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *database.DB
	stores   *settings.Stores
	projects *project.Store
	jobs     jobs.Backend
	host     *lifecycle.Host
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	db, err := database.Open(ctx, cfg.FieldsDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open field database: %w", err)
	}
	backend, err := jobs.Open(cfg, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open job backend: %w", err)
	}

	stores := settings.New(fieldstore.NewSQLiteBackend(db))
	projects := project.NewStore(project.NewLayout(cfg.Paths.ProjectsDir), stores, logger)
	reconciler := reconcile.New(stores, backend, reconcile.Options{
		AudioTag: cfg.Jobs.AudioTag,
		VideoTag: cfg.Jobs.VideoTag,
	}, logger)

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		stores:   stores,
		projects: projects,
		jobs:     backend,
		host:     lifecycle.New(projects, reconciler, logger),
	}, nil
}

func (c *commandContext) withRuntime(cmd *cobra.Command, fn func(*runtime) error) error {
	rt, err := c.openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()
	return fn(rt)
}

func (r *runtime) close() error {
	return errors.Join(r.jobs.Close(), r.db.Close())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
