// SPDX-License-Identifier: EPL-2.0

package audconv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/formats/ffmpeg"
	"github.com/ik5/audconv/formats/wav"
	"github.com/ik5/audconv/internal/scratch"
	"github.com/ik5/audconv/normalize"
)

// Input is the audio handed to a conversion: either bytes with the name
// they were uploaded under, or a file on disk.
type Input struct {
	Data     []byte
	Filename string
	Path     string
}

func FromBytes(data []byte, filename string) Input {
	return Input{Data: data, Filename: filename}
}

func FromPath(path string) Input {
	return Input{Path: path}
}

func (in Input) name() string {
	if in.Path != "" {
		return in.Path
	}

	return in.Filename
}

// Request describes one conversion.
type Request struct {
	Input Input
	// Format is the declared input format; empty means resolve from the name.
	Format string
	// Target is wav, webm or mp3.
	Target string
	// SampleRate and Channels of the output; zero selects the converter
	// defaults. For mp3 targets zero keeps the source value. Other values
	// must be within normalize.MinSampleRate..MaxSampleRate and 1 or 2.
	SampleRate int
	Channels   int
	// Quality is the WebM tier: low, medium or high.
	Quality string

	// OutputPath receives the result with mode 0644; missing parent
	// directories are created. When empty and InMemory is false a new file
	// is created in the converter's temp directory.
	OutputPath string
	InMemory   bool

	// Passthrough encodes the decoded audio without normalization.
	Passthrough bool
}

// Result holds either the output (Path or Data) or Err, never both.
type Result struct {
	Path      string
	Data      []byte
	MediaType string
	Err       error
}

func (r Result) OK() bool { return r.Err == nil }

// Observer is notified once per finished conversion.
type Observer interface {
	ObserveConversion(target, outcome string, elapsed time.Duration)
}

type Options struct {
	// TempDir holds temporary artifacts; os.TempDir when empty.
	TempDir string
	// Default output format, 16000 Hz mono when zero.
	SampleRate int
	Channels   int
	// Quality is the default WebM tier.
	Quality string

	FFmpeg   *ffmpeg.Runner
	Logger   *slog.Logger
	Observer Observer
}

// Converter runs the resolve, decode, normalize and encode pipeline.
// It holds only configuration and is safe for concurrent use.
type Converter struct {
	tempDir  string
	target   normalize.Target
	quality  ffmpeg.Quality
	ffmpeg   *ffmpeg.Runner
	natives  *audio.Registry
	enc      *encoder
	logger   *slog.Logger
	observer Observer
}

func New(opts Options) *Converter {
	c := &Converter{
		tempDir:  opts.TempDir,
		target:   normalize.Target{SampleRate: opts.SampleRate, Channels: opts.Channels},
		quality:  ffmpeg.ParseQuality(opts.Quality),
		ffmpeg:   opts.FFmpeg,
		natives:  NativeDecoders(),
		logger:   opts.Logger,
		observer: opts.Observer,
	}

	if c.target.SampleRate <= 0 {
		c.target.SampleRate = normalize.DefaultSampleRate
	}
	if c.target.Channels <= 0 {
		c.target.Channels = normalize.DefaultChannels
	}
	if c.ffmpeg == nil {
		c.ffmpeg = ffmpeg.New()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.enc = &encoder{ffmpeg: c.ffmpeg}

	return c
}

// ConvertAnyToWAV decodes in, normalizes it and writes a 16-bit PCM WAV.
func (c *Converter) ConvertAnyToWAV(ctx context.Context, in Input, format string, rate, channels int) Result {
	return c.Convert(ctx, Request{
		Input:      in,
		Format:     format,
		Target:     string(formats.TargetWAV),
		SampleRate: rate,
		Channels:   channels,
	})
}

// ConvertWAVToWebM re-encodes a WAV as WebM/Vorbis. The audio is assumed
// to be normalized already and is not processed again.
func (c *Converter) ConvertWAVToWebM(ctx context.Context, in Input, quality string) Result {
	return c.Convert(ctx, Request{
		Input:       in,
		Format:      string(formats.WAV),
		Target:      string(formats.TargetWebM),
		Quality:     quality,
		Passthrough: true,
	})
}

// ConvertBytesToTarget converts uploaded bytes, resolving their format
// from filename. MP3 output is transcoded directly by ffmpeg and skips
// loudness adjustment and fades.
func (c *Converter) ConvertBytesToTarget(ctx context.Context, data []byte, filename, target string, rate, channels int) Result {
	return c.Convert(ctx, Request{
		Input:      FromBytes(data, filename),
		Target:     target,
		SampleRate: rate,
		Channels:   channels,
	})
}

// Convert runs req. Errors and panics are returned in Result.Err, and
// every temporary file created for the call is removed before it returns.
func (c *Converter) Convert(ctx context.Context, req Request) Result {
	start := time.Now()
	id := uuid.NewString()
	logger := c.logger.With("call_id", id)

	res := c.convert(ctx, logger, id, req)

	elapsed := time.Since(start)
	outcome := Outcome(res.Err)
	target := targetLabel(req.Target)
	c.observe(logger, target, outcome, elapsed)

	if res.Err != nil {
		logger.Warn("conversion failed",
			"target", target, "outcome", outcome, "elapsed", elapsed, "err", res.Err)
		return res
	}
	logger.Info("conversion finished",
		"target", target, "media_type", res.MediaType, "path", res.Path, "elapsed", elapsed)

	return res
}

// targetLabel is the canonical target name, or "invalid" for anything
// ParseTarget rejects, so callers cannot mint new label values.
func targetLabel(name string) string {
	t, err := formats.ParseTarget(name)
	if err != nil {
		return "invalid"
	}

	return string(t)
}

func (c *Converter) observe(logger *slog.Logger, target, outcome string, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("conversion observer panicked", "panic", r)
		}
	}()

	c.observer.ObserveConversion(target, outcome, elapsed)
}

func (c *Converter) convert(ctx context.Context, logger *slog.Logger, id string, req Request) (res Result) {
	target, err := formats.ParseTarget(req.Target)
	if err != nil {
		return Result{Err: err}
	}
	if err := (normalize.Target{SampleRate: req.SampleRate, Channels: req.Channels}).Validate(); err != nil {
		return Result{Err: fmt.Errorf("%w: %w", ErrInvalidRequest, err)}
	}

	scope := scratch.New(c.tempDir, id)
	defer func() {
		if err := scope.Release(); err != nil {
			logger.Warn("removing temporary files", "err", err)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("conversion panicked", "panic", r)
			res = Result{Err: fmt.Errorf("%w: %v", ErrInternal, r)}
		}
	}()

	in, err := materialize(scope, req.Input)
	if err != nil {
		return Result{Err: err}
	}

	if target == formats.TargetMP3 {
		return deliver(scope, req, target, func(dst string) error {
			return c.enc.encodeMP3File(ctx, in, dst, req.SampleRate, req.Channels)
		})
	}

	format, ignored := formats.ResolveHint(req.Input.name(), req.Format)
	if ignored {
		logger.Warn("ignoring unknown format hint", "hint", req.Format)
	}

	dec := &decoder{natives: c.natives, ffmpeg: c.ffmpeg, logger: logger}
	buf, err := dec.decode(ctx, scope, in, format)
	if err != nil {
		return Result{Err: err}
	}

	if !req.Passthrough {
		buf, _ = normalize.New(normalize.WithLogger(logger)).Normalize(buf, c.targetFor(req))
	}

	if target == formats.TargetWAV && req.InMemory {
		data, err := wav.Encode(buf)
		if err != nil {
			return Result{Err: &EncodeError{Target: target, Cause: err}}
		}
		return Result{Data: data, MediaType: target.MediaType()}
	}

	q := c.quality
	if req.Quality != "" {
		q = ffmpeg.ParseQuality(req.Quality)
	}

	return deliver(scope, req, target, func(dst string) error {
		return c.enc.encode(ctx, scope, buf, target, q, dst)
	})
}

func (c *Converter) targetFor(req Request) normalize.Target {
	t := c.target
	if req.SampleRate > 0 {
		t.SampleRate = req.SampleRate
	}
	if req.Channels > 0 {
		t.Channels = req.Channels
	}

	return t
}

// materialize returns a file path holding the input, writing byte input
// to a temporary file named after the original extension.
func materialize(scope *scratch.Scope, in Input) (string, error) {
	if in.Path != "" {
		if _, err := os.Stat(in.Path); err != nil {
			return "", fmt.Errorf("%w", err)
		}
		return in.Path, nil
	}
	if len(in.Data) == 0 {
		return "", ErrEmptyInput
	}

	var ext string
	if e := filepath.Ext(in.Filename); e != "" {
		if _, ok := formats.Lookup(e); ok {
			ext = strings.ToLower(e)
		}
	}

	return scope.WriteFile("in-*"+ext, in.Data)
}

// deliver runs write against a partial file and moves the result into
// place, or reads it back for in-memory requests.
func deliver(scope *scratch.Scope, req Request, target formats.Target, write func(dst string) error) Result {
	if req.InMemory {
		tmp, err := scope.Path("out-*" + target.Extension())
		if err != nil {
			return Result{Err: &EncodeError{Target: target, Cause: err}}
		}
		if err := write(tmp); err != nil {
			return Result{Err: err}
		}

		data, err := os.ReadFile(tmp)
		if err != nil {
			return Result{Err: &EncodeError{Target: target, Cause: err}}
		}
		return Result{Data: data, MediaType: target.MediaType()}
	}

	dst, reserved := req.OutputPath, false
	if dst == "" {
		p, err := scope.Path("out-*" + target.Extension())
		if err != nil {
			return Result{Err: &EncodeError{Target: target, Cause: err}}
		}
		dst, reserved = p, true
	} else if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Result{Err: &EncodeError{Target: target, Cause: err}}
	}

	partial, err := scope.Sibling(dst)
	if err != nil {
		return Result{Err: &EncodeError{Target: target, Cause: err}}
	}
	if err := write(partial); err != nil {
		return Result{Err: err}
	}
	if err := scope.Commit(partial, dst); err != nil {
		return Result{Err: &EncodeError{Target: target, Cause: err}}
	}
	if reserved {
		scope.Keep(dst)
	}

	return Result{Path: dst, MediaType: target.MediaType()}
}
