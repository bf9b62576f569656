package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate checks the configuration for values a run cannot proceed without.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.StagingDir == "" {
		problems = append(problems, "paths.staging_dir is required")
	}
	if c.Paths.LogDir == "" {
		problems = append(problems, "paths.log_dir is required")
	}
	if c.Paths.DatabasePath == "" {
		problems = append(problems, "paths.database_path is required")
	}

	// An empty endpoint selects the local-directory backend rooted at
	// base_path; the S3 settings only matter when an endpoint is set.
	if c.Remote.Endpoint == "" {
		if !filepath.IsAbs(c.Remote.BasePath) {
			problems = append(problems, "remote.endpoint is required unless remote.base_path points at an absolute local directory")
		}
	} else {
		if c.Remote.Bucket == "" {
			problems = append(problems, "remote.bucket is required")
		}
		if c.Remote.AccessKey == "" || c.Remote.SecretKey == "" {
			problems = append(problems, "remote credentials are required (set remote.access_key/secret_key or SCRIBE_REMOTE_ACCESS_KEY/SCRIBE_REMOTE_SECRET_KEY)")
		}
	}

	if c.Ingest.CapCount <= 0 {
		problems = append(problems, "ingest.cap_count must be positive")
	}
	if len(c.Ingest.AudioExtensions) == 0 {
		problems = append(problems, "ingest.audio_extensions must not be empty")
	}

	if c.Transcriber.URL == "" {
		problems = append(problems, "transcriber.url is required")
	}
	if c.Transcriber.TimeoutSeconds < 0 {
		problems = append(problems, "transcriber.timeout_seconds must not be negative")
	}

	if c.Archive.Enabled {
		if c.Archive.Endpoint == "" || c.Archive.Bucket == "" {
			problems = append(problems, "archive.endpoint and archive.bucket are required when archive.enabled")
		}
		if c.Archive.AccessKey == "" || c.Archive.SecretKey == "" {
			problems = append(problems, "archive credentials are required when archive.enabled")
		}
	}

	for name, settings := range map[string]RetrySettings{
		"retry.remote":   c.Retry.Remote,
		"retry.external": c.Retry.External,
	} {
		if settings.MaxRetries < 0 {
			problems = append(problems, name+".max_retries must not be negative")
		}
		if settings.BaseDelayMS < 0 {
			problems = append(problems, name+".base_delay_ms must not be negative")
		}
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if c.Metrics.Enabled && c.Metrics.Bind == "" {
		problems = append(problems, "metrics.bind is required when metrics.enabled")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
