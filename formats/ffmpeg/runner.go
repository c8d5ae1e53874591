// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single ffmpeg or ffprobe invocation.
const DefaultTimeout = 2 * time.Minute

// CommandRunner executes external commands. Tests substitute a fake.
type CommandRunner interface {
	Output(ctx context.Context, name string, args []string) ([]byte, error)
	LookPath(name string) (string, error)
}

type osCommandRunner struct{}

func (osCommandRunner) Output(ctx context.Context, name string, args []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %w: %s", ErrFailed, err, msg)
		}
		return nil, fmt.Errorf("%w: %w", ErrFailed, err)
	}

	return stdout.Bytes(), nil
}

func (osCommandRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return path, nil
}

// Runner drives the ffmpeg and ffprobe binaries. The zero value is not
// usable; create one with New. A Runner is safe for concurrent use.
type Runner struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	cmd         CommandRunner
}

type Option func(*Runner)

func WithFFmpegPath(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.ffmpegPath = path
		}
	}
}

func WithFFprobePath(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.ffprobePath = path
		}
	}
}

// WithTimeout sets the per-invocation timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithCommandRunner replaces the process runner.
func WithCommandRunner(c CommandRunner) Option {
	return func(r *Runner) {
		r.cmd = c
	}
}

func New(opts ...Option) *Runner {
	r := &Runner{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		timeout:     DefaultTimeout,
		cmd:         osCommandRunner{},
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Available reports whether the ffmpeg binary can be found.
func (r *Runner) Available() bool {
	_, err := r.cmd.LookPath(r.ffmpegPath)
	return err == nil
}

func (r *Runner) run(ctx context.Context, name string, args []string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out, err := r.cmd.Output(ctx, name, args)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("%w: %w", err, ctxErr)
		}
		return nil, err
	}

	return out, nil
}

func (r *Runner) ffmpeg(ctx context.Context, args ...string) error {
	base := []string{"-nostdin", "-y", "-v", "error"}
	_, err := r.run(ctx, r.ffmpegPath, append(base, args...))

	return err
}
