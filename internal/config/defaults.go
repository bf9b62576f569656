package config

const (
	defaultStagingDir     = "~/.local/share/scribe/staging"
	defaultLogDir         = "~/.local/share/scribe/logs"
	defaultDatabasePath   = "~/.local/share/scribe/scribe.db"
	defaultRemoteBasePath = "recordings"
	defaultRemoteRegion   = "us-east-1"

	defaultCapCount        = 25
	defaultMaxFileMiB      = 512
	defaultCleanStaleHours = 24

	defaultTranscriberURL     = "http://127.0.0.1:8578/inference"
	defaultTranscriberModel   = "large-v3"
	defaultTranscriberTimeout = 600

	defaultRemoteMaxRetries   = 3
	defaultRemoteBaseDelayMS  = 2000
	defaultRemoteMaxDelayMS   = 30000
	defaultExternalMaxRetries = 3
	defaultExternalBaseDelay  = 1000
	defaultExternalMaxDelayMS = 60000

	defaultLogLevel    = "info"
	defaultLogFormat   = "console"
	defaultMetricsBind = "127.0.0.1:9521"
)

func defaultAudioExtensions() []string {
	return []string{".mp3", ".wav", ".m4a", ".ogg", ".flac"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir:   defaultStagingDir,
			LogDir:       defaultLogDir,
			DatabasePath: defaultDatabasePath,
		},
		Remote: Remote{
			Region:   defaultRemoteRegion,
			BasePath: defaultRemoteBasePath,
			UseSSL:   true,
		},
		Ingest: Ingest{
			CapCount:        defaultCapCount,
			AudioExtensions: defaultAudioExtensions(),
			MaxFileMiB:      defaultMaxFileMiB,
			CleanStaleHours: defaultCleanStaleHours,
		},
		Transcriber: Transcriber{
			URL:            defaultTranscriberURL,
			Model:          defaultTranscriberModel,
			TimeoutSeconds: defaultTranscriberTimeout,
		},
		Retry: Retry{
			Remote: RetrySettings{
				MaxRetries:  defaultRemoteMaxRetries,
				BaseDelayMS: defaultRemoteBaseDelayMS,
				MaxDelayMS:  defaultRemoteMaxDelayMS,
				Exponential: true,
			},
			External: RetrySettings{
				MaxRetries:  defaultExternalMaxRetries,
				BaseDelayMS: defaultExternalBaseDelay,
				MaxDelayMS:  defaultExternalMaxDelayMS,
				Exponential: true,
			},
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Metrics: Metrics{
			Bind: defaultMetricsBind,
		},
	}
}
