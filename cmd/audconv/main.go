// SPDX-License-Identifier: EPL-2.0

// Command audconv converts audio files from the command line.
//
//	audconv -target webm -out out/ a.mp3 b.flac
//	audconv -info call.wav
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/audconv"
	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/formats/ffmpeg"
	"github.com/ik5/audconv/internal/config"
	"github.com/ik5/audconv/internal/logging"
)

type options struct {
	configPath  string
	target      string
	format      string
	out         string
	rate        int
	channels    int
	quality     string
	passthrough bool
	info        bool
	jobs        int
	verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options

	fs := flag.NewFlagSet("audconv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.target, "target", "wav", "Output format: wav, webm or mp3")
	fs.StringVar(&opts.format, "format", "", "Input format, detected from the file when empty")
	fs.StringVar(&opts.out, "out", "", "Output file, or directory when converting several inputs")
	fs.IntVar(&opts.rate, "rate", 0, "Output sample rate in Hz (configured default when 0)")
	fs.IntVar(&opts.channels, "channels", 0, "Output channels, 1 or 2 (configured default when 0)")
	fs.StringVar(&opts.quality, "quality", "", "WebM quality: low, medium or high")
	fs.BoolVar(&opts.passthrough, "raw", false, "Skip normalization")
	fs.BoolVar(&opts.info, "info", false, "Print stream information instead of converting")
	fs.IntVar(&opts.jobs, "jobs", runtime.NumCPU(), "Conversions to run at once")
	fs.BoolVar(&opts.verbose, "v", false, "Debug logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: audconv [flags] <input>...")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	inputs := fs.Args()
	if len(inputs) == 0 {
		fs.Usage()
		return 2
	}

	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			fmt.Fprintf(stderr, "audconv: %v\n", err)
			return 1
		}
	}
	// diagnostics go to stderr so stdout stays clean for -info
	cfg.Logging.Format = "text"
	cfg.Logging.Level = "warn"
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	logger := logging.NewWithWriter(cfg.Logging, stderr)

	if opts.quality == "" {
		opts.quality = cfg.Audio.Quality
	}

	conv := audconv.New(audconv.Options{
		TempDir:    cfg.Audio.TempDir,
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		Quality:    cfg.Audio.Quality,
		FFmpeg: ffmpeg.New(
			ffmpeg.WithFFmpegPath(cfg.FFmpeg.FFmpegPath),
			ffmpeg.WithFFprobePath(cfg.FFmpeg.FFprobePath),
			ffmpeg.WithTimeout(cfg.FFmpeg.GetTimeoutDuration()),
		),
		Logger: logger,
	})

	if opts.info {
		return printInfo(ctx, conv, inputs, stdout, stderr)
	}

	return convertAll(ctx, conv, opts, inputs, stdout, stderr)
}

func printInfo(ctx context.Context, conv *audconv.Converter, inputs []string, stdout, stderr io.Writer) int {
	code := 0
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	for _, in := range inputs {
		info := conv.AudioInfo(ctx, in)
		if info == nil {
			fmt.Fprintf(stderr, "audconv: %s: unable to read audio\n", in)
			code = 1
			continue
		}

		if err := enc.Encode(struct {
			File string `json:"file"`
			*formats.Info
		}{in, info}); err != nil {
			fmt.Fprintf(stderr, "audconv: %v\n", err)
			return 1
		}
	}

	return code
}

// outputPath names the output for in. A single input may be written to
// opts.out directly; otherwise opts.out is a directory.
func outputPath(opts options, in string, single bool) (string, error) {
	target, err := formats.ParseTarget(opts.target)
	if err != nil {
		return "", err
	}

	name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + target.Extension()
	if opts.out == "" {
		return filepath.Join(filepath.Dir(in), name), nil
	}

	if st, err := os.Stat(opts.out); err == nil && st.IsDir() {
		return filepath.Join(opts.out, name), nil
	}
	if single {
		return opts.out, nil
	}

	return "", fmt.Errorf("-out %s must be an existing directory for several inputs", opts.out)
}

func convertAll(ctx context.Context, conv *audconv.Converter, opts options, inputs []string, stdout, stderr io.Writer) int {
	outputs := make([]string, len(inputs))
	for i, in := range inputs {
		dst, err := outputPath(opts, in, len(inputs) == 1)
		if err != nil {
			fmt.Fprintf(stderr, "audconv: %v\n", err)
			return 1
		}
		if abs(dst) == abs(in) {
			fmt.Fprintf(stderr, "audconv: %s: output would overwrite the input\n", in)
			return 1
		}
		outputs[i] = dst
	}

	failed := make([]error, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.jobs))
	for i, in := range inputs {
		g.Go(func() error {
			res := conv.Convert(ctx, audconv.Request{
				Input:       audconv.FromPath(in),
				Format:      opts.format,
				Target:      opts.target,
				SampleRate:  opts.rate,
				Channels:    opts.channels,
				Quality:     opts.quality,
				OutputPath:  outputs[i],
				Passthrough: opts.passthrough,
			})
			// one bad file does not stop the others
			failed[i] = res.Err
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(stderr, "audconv: %v\n", err)
		return 1
	}

	code := 0
	for i, in := range inputs {
		if failed[i] != nil {
			fmt.Fprintf(stderr, "audconv: %s: %v\n", in, failed[i])
			code = 1
			continue
		}
		fmt.Fprintf(stdout, "%s -> %s\n", in, outputs[i])
	}

	return code
}

func abs(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}

	return path
}
