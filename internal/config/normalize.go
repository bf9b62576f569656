package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = ExpandPath(c.Paths.StagingDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.DatabasePath, err = ExpandPath(c.Paths.DatabasePath); err != nil {
		return err
	}

	c.Remote.Endpoint = strings.TrimSpace(c.Remote.Endpoint)
	c.Remote.Bucket = strings.TrimSpace(c.Remote.Bucket)
	c.Remote.Region = strings.TrimSpace(c.Remote.Region)
	if c.Remote.Endpoint == "" {
		// Local-directory backend: base_path is a filesystem path.
		if c.Remote.BasePath, err = ExpandPath(c.Remote.BasePath); err != nil {
			return err
		}
	} else {
		c.Remote.BasePath = strings.Trim(strings.TrimSpace(c.Remote.BasePath), "/")
	}
	c.Remote.AccessKey = fallbackEnv(c.Remote.AccessKey, "SCRIBE_REMOTE_ACCESS_KEY")
	c.Remote.SecretKey = fallbackEnv(c.Remote.SecretKey, "SCRIBE_REMOTE_SECRET_KEY")

	c.Ingest.AudioExtensions = normalizeExtensions(c.Ingest.AudioExtensions)

	c.Transcriber.URL = strings.TrimSpace(c.Transcriber.URL)
	c.Transcriber.Model = strings.TrimSpace(c.Transcriber.Model)
	c.Transcriber.Language = strings.TrimSpace(c.Transcriber.Language)

	c.Archive.Endpoint = strings.TrimSpace(c.Archive.Endpoint)
	c.Archive.Bucket = strings.TrimSpace(c.Archive.Bucket)
	c.Archive.Prefix = strings.Trim(strings.TrimSpace(c.Archive.Prefix), "/")
	c.Archive.AccessKey = fallbackEnv(c.Archive.AccessKey, "SCRIBE_ARCHIVE_ACCESS_KEY")
	c.Archive.SecretKey = fallbackEnv(c.Archive.SecretKey, "SCRIBE_ARCHIVE_SECRET_KEY")

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)

	return nil
}

func fallbackEnv(value, envName string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return strings.TrimSpace(os.Getenv(envName))
}

func normalizeExtensions(exts []string) []string {
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}
