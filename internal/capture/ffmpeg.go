package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"aircheck/internal/config"
)

// commandContext is indirected for tests.
var commandContext = exec.CommandContext

// Runner abstracts the external capture tool.
type Runner interface {
	// Capture records sourceURL for the given duration into outputPath.
	// A non-nil error means the tool exited abnormally or was terminated.
	Capture(ctx context.Context, sourceURL string, duration time.Duration, outputPath string) error
}

// CLI invokes the ffmpeg binary for stream captures.
type CLI struct {
	binary  string
	codec   string
	bitrate string
}

// Option configures the CLI runner.
type Option func(*CLI)

// WithBinary overrides the ffmpeg executable path.
func WithBinary(path string) Option {
	return func(c *CLI) {
		if path != "" {
			c.binary = path
		}
	}
}

// NewCLI creates an ffmpeg runner from configuration.
func NewCLI(cfg *config.Config, opts ...Option) *CLI {
	cli := &CLI{
		binary:  cfg.FFmpegBinary(),
		codec:   cfg.Capture.AudioCodec,
		bitrate: cfg.Capture.AudioBitrate,
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Capture runs ffmpeg against the stream URL. The -t flag bounds the
// recording; the caller bounds the process itself through ctx.
func (c *CLI) Capture(ctx context.Context, sourceURL string, duration time.Duration, outputPath string) error {
	seconds := int(duration / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", sourceURL,
		"-t", strconv.Itoa(seconds),
		"-c:a", c.codec,
		"-b:a", c.bitrate,
		"-y", outputPath,
	}

	cmd := commandContext(ctx, c.binary, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return fmt.Errorf("%s: %w", c.binary, err)
		}
		return fmt.Errorf("%s: %w: %s", c.binary, err, detail)
	}
	return nil
}
