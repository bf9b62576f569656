// Package stt wraps the speech-to-text HTTP service (a whisper-server
// style inference endpoint) behind a typed-error boundary.
package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scribe/internal/services"
)

const (
	defaultHTTPTimeout = 10 * time.Minute
	responseBodyLimit  = 1 << 20
)

// Config captures the runtime settings required to talk to the service.
type Config struct {
	// URL is the full inference endpoint, e.g. http://host:8578/inference.
	URL string
	// Model is passed through to the service when set.
	Model string
	// Language forces a transcription language; empty means auto-detect.
	Language string
	// TimeoutSeconds bounds one request. Zero applies a generous default,
	// since transcription latency scales with recording length.
	TimeoutSeconds int
	// MaxFileBytes rejects oversize uploads before any network call.
	// Zero disables the check.
	MaxFileBytes int64
}

// Client calls the transcription service.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a transcription client from the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			URL:            strings.TrimSpace(cfg.URL),
			Model:          strings.TrimSpace(cfg.Model),
			Language:       strings.TrimSpace(cfg.Language),
			TimeoutSeconds: cfg.TimeoutSeconds,
			MaxFileBytes:   cfg.MaxFileBytes,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Result is the transcription outcome for one recording.
type Result struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcribe uploads the audio file at localPath and returns its transcript.
// Oversize input is rejected with a validation error before any upload.
func (c *Client) Transcribe(ctx context.Context, localPath string) (Result, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return Result{}, services.NewResource("stat audio file", localPath, err)
	}
	if c.cfg.MaxFileBytes > 0 && info.Size() > c.cfg.MaxFileBytes {
		return Result{}, services.NewValidation("transcribe", "file exceeds maximum size",
			"path", localPath,
			"size_bytes", info.Size(),
			"max_bytes", c.cfg.MaxFileBytes,
		)
	}

	body, contentType, err := c.buildRequestBody(localPath)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, body)
	if err != nil {
		return Result{}, services.NewExternalService("stt", "build request", err, false)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network-level failures are transient by assumption.
		return Result{}, services.NewExternalService("stt", "transcribe", err, true)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return Result{}, services.NewExternalService("stt", "read response", err, true)
	}

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
		return Result{}, services.NewExternalService("stt", "transcribe", detail,
			services.RetryableHTTPStatus(resp.StatusCode))
	}

	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return Result{}, services.NewExternalService("stt", "decode response", err, false)
	}
	result.Text = strings.TrimSpace(result.Text)
	if result.Text == "" {
		return Result{}, services.NewExternalService("stt", "transcribe",
			fmt.Errorf("empty transcript in response: %s", snippet(payload)), false)
	}
	return result, nil
}

func (c *Client) buildRequestBody(localPath string) (*bytes.Buffer, string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return nil, "", services.NewResource("open audio file", localPath, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return nil, "", services.NewExternalService("stt", "build request", err, false)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", services.NewResource("read audio file", localPath, err)
	}

	fields := map[string]string{"response_format": "json"}
	if c.cfg.Model != "" {
		fields["model"] = c.cfg.Model
	}
	if c.cfg.Language != "" {
		fields["language"] = c.cfg.Language
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", services.NewExternalService("stt", "build request", err, false)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", services.NewExternalService("stt", "build request", err, false)
	}
	return &buf, writer.FormDataContentType(), nil
}

func snippet(payload []byte) string {
	s := strings.TrimSpace(string(payload))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
