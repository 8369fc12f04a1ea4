package config

const (
	defaultConfigPath  = "~/.config/storyreel/config.toml"
	defaultProjectsDir = "~/.local/share/storyreel/projects"
	defaultDataDir     = "~/.local/share/storyreel"
	defaultLogDir      = "~/.local/share/storyreel/logs"
	defaultJobsBackend = JobsBackendLedger
	defaultRedisAddr   = "127.0.0.1:6379"
	defaultAudioTag    = "narration_audio"
	defaultVideoTag    = "video_processing"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

const (
	// JobsBackendLedger answers job queries from the local SQLite ledger.
	JobsBackendLedger = "ledger"
	// JobsBackendAsynq answers job queries from an asynq Redis deployment.
	JobsBackendAsynq = "asynq"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProjectsDir: defaultProjectsDir,
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
		},
		Jobs: Jobs{
			Backend:   defaultJobsBackend,
			RedisAddr: defaultRedisAddr,
			AudioTag:  defaultAudioTag,
			VideoTag:  defaultVideoTag,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
