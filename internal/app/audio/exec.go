package audio

import (
	"bytes"
	"context"
	"os/exec"

	"go.uber.org/zap"
)

// CommandRunner runs an external tool and returns what it wrote to stdout
// and stderr.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

type tools struct {
	ffmpeg  string
	ffprobe string
	run     CommandRunner
	logger  *zap.Logger
}

func newTools(opts []Option) tools {
	t := tools{
		ffmpeg:  "ffmpeg",
		ffprobe: "ffprobe",
		run:     ExecRunner,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Option configures a Segmenter or FFmpegConverter.
type Option func(*tools)

// WithCommandRunner replaces the process runner, mainly for tests.
func WithCommandRunner(run CommandRunner) Option {
	return func(t *tools) {
		if run != nil {
			t.run = run
		}
	}
}

// WithBinaries overrides the ffmpeg and ffprobe executables.
func WithBinaries(ffmpeg, ffprobe string) Option {
	return func(t *tools) {
		if ffmpeg != "" {
			t.ffmpeg = ffmpeg
		}
		if ffprobe != "" {
			t.ffprobe = ffprobe
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(t *tools) {
		if logger != nil {
			t.logger = logger
		}
	}
}
