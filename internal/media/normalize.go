// Package media normalizes fetched recordings into the mono 16kHz WAV
// form the transcription engine expects, via the ffmpeg CLI.
package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"scribe/internal/services"
)

// FFmpegCommand is the binary invoked for normalization.
const FFmpegCommand = "ffmpeg"

// Normalizer converts arbitrary audio into the pipeline's canonical form.
type Normalizer struct {
	binary string
}

// NewNormalizer builds a normalizer. An empty binary falls back to ffmpeg
// on PATH.
func NewNormalizer(binary string) *Normalizer {
	if strings.TrimSpace(binary) == "" {
		binary = FFmpegCommand
	}
	return &Normalizer{binary: binary}
}

// Normalize transcodes source into a mono 16kHz PCM WAV at dest. A failed
// transcode is deterministic for a given input, so it is not retryable.
func (n *Normalizer) Normalize(ctx context.Context, source, dest string) error {
	cmd := exec.CommandContext(ctx, n.binary, normalizeArgs(source, dest)...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		detail := fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
		return services.NewExternalService("ffmpeg", "normalize audio", detail, false)
	}
	return nil
}

func normalizeArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}
