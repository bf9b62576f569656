package services

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestRemoteAccessDefaults(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewRemoteAccess("list", "ftp.example.com", "/recordings", cause)

	if err.Code != CodeRemoteAccess {
		t.Fatalf("code = %q, want %q", err.Code, CodeRemoteAccess)
	}
	if !err.Retryable {
		t.Fatal("remote access errors should default to retryable")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if got := err.Context["host"]; got != "ftp.example.com" {
		t.Fatalf("context host = %v", got)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("message lost original cause: %q", err.Error())
	}
}

func TestRemoteAuthNotRetryable(t *testing.T) {
	err := NewRemoteAuth("connect", "ftp.example.com", errors.New("530 login incorrect"))
	if err.Retryable {
		t.Fatal("authentication failures must not be retryable")
	}
	if err.Code != CodeRemoteAccess {
		t.Fatalf("auth failures stay in the remote_access kind, got %q", err.Code)
	}
}

func TestValidationNeverRetryable(t *testing.T) {
	err := NewValidation("transcribe", "file exceeds maximum size", "size_bytes", int64(900), "max_bytes", int64(100))
	if err.Retryable {
		t.Fatal("validation errors must not be retryable")
	}
	if err.Context["operation"] != "transcribe" {
		t.Fatalf("context operation = %v", err.Context["operation"])
	}
	if err.Context["size_bytes"] != int64(900) {
		t.Fatalf("context size_bytes = %v", err.Context["size_bytes"])
	}
}

func TestExternalServiceRetryability(t *testing.T) {
	transient := NewExternalService("stt", "transcribe", errors.New("http 503"), true)
	if !transient.Retryable {
		t.Fatal("transient external failure should be retryable")
	}
	terminal := NewExternalService("stt", "transcribe", errors.New("http 400"), false)
	if terminal.Retryable {
		t.Fatal("terminal external failure should not be retryable")
	}
}

func TestRetryableDispatch(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil-cause resource", NewResource("create scratch dir", "/tmp/x", fs.ErrPermission), true},
		{"validation", NewValidation("transcribe", "bad format"), false},
		{"auth", NewRemoteAuth("connect", "host", nil), false},
		{"unclassified", errors.New("boom"), true},
		{"wrapped typed", fmt.Errorf("stage fetch: %w", NewValidation("fetch", "oversize")), false},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Errorf("%s: Retryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NewResource("write", "/tmp/y", nil)); got != CodeResource {
		t.Fatalf("CodeOf = %q", got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestRetryableHTTPStatus(t *testing.T) {
	for status, want := range map[int]bool{
		200: false,
		400: false,
		401: false,
		404: false,
		408: true,
		429: true,
		500: true,
		503: true,
	} {
		if got := RetryableHTTPStatus(status); got != want {
			t.Errorf("status %d: got %v, want %v", status, got, want)
		}
	}
}
