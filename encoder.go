// SPDX-License-Identifier: EPL-2.0

package audconv

import (
	"context"
	"fmt"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/formats"
	"github.com/ik5/audconv/formats/ffmpeg"
	"github.com/ik5/audconv/formats/wav"
	"github.com/ik5/audconv/internal/scratch"
)

type encoder struct {
	ffmpeg *ffmpeg.Runner
}

// encode writes buf as target to dst. WAV is written natively; WebM goes
// through an intermediate WAV and ffmpeg. MP3 is not produced from a
// buffer, see encodeMP3File.
func (e *encoder) encode(ctx context.Context, scope *scratch.Scope, buf *audio.Buffer, target formats.Target, q ffmpeg.Quality, dst string) error {
	var err error

	switch target {
	case formats.TargetWAV:
		err = wav.WriteFile(dst, buf)
	case formats.TargetWebM:
		err = e.webm(ctx, scope, buf, q, dst)
	default:
		err = fmt.Errorf("%w: %q", formats.ErrUnsupportedFormat, target)
	}
	if err != nil {
		return &EncodeError{Target: target, Cause: err}
	}

	return nil
}

func (e *encoder) webm(ctx context.Context, scope *scratch.Scope, buf *audio.Buffer, q ffmpeg.Quality, dst string) error {
	pcm, err := scope.Path("encode-*.wav")
	if err != nil {
		return err
	}
	if err := wav.WriteFile(pcm, buf); err != nil {
		return err
	}

	return e.ffmpeg.EncodeWebM(ctx, pcm, dst, q)
}

// encodeMP3File transcodes the input file straight to MP3, applying only
// rate and channel overrides. Loudness and fades are not applied.
func (e *encoder) encodeMP3File(ctx context.Context, in, dst string, rate, channels int) error {
	if err := e.ffmpeg.EncodeMP3(ctx, in, dst, rate, channels); err != nil {
		return &EncodeError{Target: formats.TargetMP3, Cause: err}
	}

	return nil
}
