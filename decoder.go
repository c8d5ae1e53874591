// SPDX-License-Identifier: EPL-2.0

package audconv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/formats/aiff"
	"github.com/ik5/audconv/formats/ffmpeg"
	"github.com/ik5/audconv/formats/flac"
	"github.com/ik5/audconv/formats/mp3"
	"github.com/ik5/audconv/formats/vorbis"
	"github.com/ik5/audconv/formats/wav"
	"github.com/ik5/audconv/internal/scratch"
)

// NativeDecoders returns a registry of the pure-Go decoders keyed by format.
func NativeDecoders() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(string(formats.WAV), wav.Decoder{})
	r.Register(string(formats.MP3), mp3.Decoder{})
	r.Register(string(formats.Ogg), vorbis.Decoder{})
	r.Register(string(formats.FLAC), flac.Decoder{})
	r.Register(string(formats.AIFF), aiff.Decoder{})

	return r
}

// attempt is the outcome of one decode try.
type attempt struct {
	via string
	buf *audio.Buffer
	err error
}

func (a attempt) ok() bool { return a.err == nil }

type decoder struct {
	natives *audio.Registry
	ffmpeg  *ffmpeg.Runner
	logger  *slog.Logger
}

// decode reads the file at path into memory. A known format is tried
// first with its own demuxer; if that fails, or the format is Unknown,
// the content is sniffed and decoded natively when possible, then handed
// to ffmpeg without a forced demuxer.
func (d *decoder) decode(ctx context.Context, scope *scratch.Scope, path string, f formats.Format) (*audio.Buffer, error) {
	var (
		attempts []attempt
		tried    = map[string]bool{}
	)

	try := func(a attempt) bool {
		tried[a.via] = true
		attempts = append(attempts, a)
		if a.ok() {
			d.logger.Debug("decoded audio", "via", a.via,
				"sample_rate", a.buf.SampleRate, "channels", a.buf.Channels, "duration", a.buf.Duration())
			return true
		}
		d.logger.Debug("decode attempt failed", "via", a.via, "err", a.err)
		return false
	}

	// explicit
	if f != formats.Unknown {
		if try(d.specific(ctx, scope, path, f)) {
			return attempts[len(attempts)-1].buf, nil
		}
		d.logger.Info("declared format failed, auto-detecting", "format", f)
	}

	// auto-detect
	if sniffed := sniffFile(path); sniffed != formats.Unknown {
		if _, ok := d.natives.Get(string(sniffed)); ok && !tried[string(sniffed)] {
			if try(d.native(path, sniffed)) {
				return attempts[len(attempts)-1].buf, nil
			}
		}
	}
	if try(d.viaFFmpeg(ctx, scope, path, "")) {
		return attempts[len(attempts)-1].buf, nil
	}

	errs := make([]error, 0, len(attempts))
	for _, a := range attempts {
		errs = append(errs, fmt.Errorf("%s: %w", a.via, a.err))
	}

	return nil, &DecodeError{Format: f, Cause: errs[len(errs)-1], attempts: errs}
}

func (d *decoder) specific(ctx context.Context, scope *scratch.Scope, path string, f formats.Format) attempt {
	if _, ok := d.natives.Get(string(f)); ok {
		return d.native(path, f)
	}

	return d.viaFFmpeg(ctx, scope, path, f.Demuxer())
}

func (d *decoder) native(path string, f formats.Format) attempt {
	a := attempt{via: string(f)}

	dec, ok := d.natives.Get(string(f))
	if !ok {
		a.err = fmt.Errorf("%w: %s", formats.ErrUnsupportedFormat, f)
		return a
	}

	file, err := os.Open(path)
	if err != nil {
		a.err = fmt.Errorf("%w", err)
		return a
	}
	defer file.Close()

	src, err := dec.Decode(file)
	if err != nil {
		a.err = err
		return a
	}
	defer src.Close()

	a.buf, a.err = audio.Collect(src, 0)

	return a
}

// viaFFmpeg converts path to an intermediate WAV with ffmpeg and reads it.
func (d *decoder) viaFFmpeg(ctx context.Context, scope *scratch.Scope, path, demuxer string) attempt {
	a := attempt{via: "ffmpeg"}
	if demuxer != "" {
		a.via += ":" + demuxer
	}

	out, err := scope.Path("decoded-*.wav")
	if err != nil {
		a.err = err
		return a
	}
	if err := d.ffmpeg.ToWAV(ctx, path, out, demuxer); err != nil {
		a.err = err
		return a
	}

	src, err := wav.DecodeFile(out)
	if err != nil {
		a.err = err
		return a
	}
	defer src.Close()

	a.buf, a.err = audio.Collect(src, 0)

	return a
}

func sniffFile(path string) formats.Format {
	f, err := os.Open(path)
	if err != nil {
		return formats.Unknown
	}
	defer f.Close()

	header := make([]byte, formats.SniffLen)
	n, _ := io.ReadFull(f, header)

	return formats.Sniff(header[:n])
}
