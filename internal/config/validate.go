package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateJobs(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.ProjectsDir == "" {
		return errors.New("paths.projects_dir must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateJobs() error {
	switch c.Jobs.Backend {
	case JobsBackendLedger, JobsBackendAsynq:
	default:
		return fmt.Errorf("jobs.backend: unsupported value %q (want %q or %q)", c.Jobs.Backend, JobsBackendLedger, JobsBackendAsynq)
	}
	if c.Jobs.RedisDB < 0 {
		return errors.New("jobs.redis_db must be >= 0")
	}
	if c.Jobs.AudioTag == c.Jobs.VideoTag {
		return fmt.Errorf("jobs.audio_tag and jobs.video_tag must differ (both %q)", c.Jobs.AudioTag)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
