package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeJobs()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ProjectsDir) == "" {
		c.Paths.ProjectsDir = defaultProjectsDir
	}
	if c.Paths.ProjectsDir, err = expandPath(c.Paths.ProjectsDir); err != nil {
		return fmt.Errorf("paths.projects_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeJobs() {
	c.Jobs.Backend = strings.ToLower(strings.TrimSpace(c.Jobs.Backend))
	if c.Jobs.Backend == "" {
		c.Jobs.Backend = defaultJobsBackend
	}
	if value, ok := os.LookupEnv("STORYREEL_REDIS_ADDR"); ok && strings.TrimSpace(value) != "" {
		c.Jobs.RedisAddr = value
	}
	c.Jobs.RedisAddr = strings.TrimSpace(c.Jobs.RedisAddr)
	if c.Jobs.RedisAddr == "" {
		c.Jobs.RedisAddr = defaultRedisAddr
	}
	if c.Jobs.RedisPassword == "" {
		if value, ok := os.LookupEnv("STORYREEL_REDIS_PASSWORD"); ok {
			c.Jobs.RedisPassword = value
		}
	}
	c.Jobs.AudioTag = strings.TrimSpace(c.Jobs.AudioTag)
	if c.Jobs.AudioTag == "" {
		c.Jobs.AudioTag = defaultAudioTag
	}
	c.Jobs.VideoTag = strings.TrimSpace(c.Jobs.VideoTag)
	if c.Jobs.VideoTag == "" {
		c.Jobs.VideoTag = defaultVideoTag
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
