package capture

import (
	"context"
	"os/exec"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestCLIBuildsExpectedArguments(t *testing.T) {
	var gotBinary string
	var gotArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotBinary = name
		gotArgs = args
		return exec.CommandContext(ctx, "true")
	}
	t.Cleanup(func() { commandContext = original })

	cfg := testConfig(t)
	cli := NewCLI(cfg, WithBinary("/opt/ffmpeg/bin/ffmpeg"))

	err := cli.Capture(context.Background(), "http://example.net/stream", 30*time.Second, "/tmp/out.mp3")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	if gotBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("binary = %q", gotBinary)
	}
	want := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "http://example.net/stream",
		"-t", "30",
		"-c:a", cfg.Capture.AudioCodec,
		"-b:a", cfg.Capture.AudioBitrate,
		"-y", "/tmp/out.mp3",
	}
	if !reflect.DeepEqual(gotArgs, want) {
		t.Fatalf("args = %v, want %v", gotArgs, want)
	}
}

func TestCLISurfacesStderrOnFailure(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "echo 'Server returned 404 Not Found' >&2; exit 1")
	}
	t.Cleanup(func() { commandContext = original })

	cfg := testConfig(t)
	cli := NewCLI(cfg)

	err := cli.Capture(context.Background(), "http://example.net/stream", 30*time.Second, "/tmp/out.mp3")
	if err == nil {
		t.Fatal("Capture: want error for non-zero exit")
	}
	if got := err.Error(); !strings.Contains(got, "404 Not Found") {
		t.Fatalf("error = %q, want stderr detail included", got)
	}
}

func TestCLIReportsContextErrorOnDeadline(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sleep", "10")
	}
	t.Cleanup(func() { commandContext = original })

	cfg := testConfig(t)
	cli := NewCLI(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := cli.Capture(ctx, "http://example.net/stream", 30*time.Second, "/tmp/out.mp3")
	if err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
}
