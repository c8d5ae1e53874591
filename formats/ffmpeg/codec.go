// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"context"
	"strconv"
	"strings"
)

// Quality selects the Vorbis bitrate for WebM output.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// ParseQuality maps a tier name to a Quality. Unknown names yield QualityMedium.
func ParseQuality(s string) Quality {
	switch q := Quality(strings.ToLower(strings.TrimSpace(s))); q {
	case QualityLow, QualityHigh:
		return q
	default:
		return QualityMedium
	}
}

func (q Quality) Bitrate() string {
	switch q {
	case QualityLow:
		return "64k"
	case QualityHigh:
		return "192k"
	default:
		return "128k"
	}
}

const mp3Bitrate = "128k"

// ToWAV decodes in to a 16-bit PCM WAV at out, keeping the source rate and
// channels. demuxer forces the input container; empty lets ffmpeg probe it.
func (r *Runner) ToWAV(ctx context.Context, in, out, demuxer string) error {
	var args []string
	if demuxer != "" {
		args = append(args, "-f", demuxer)
	}
	args = append(args, "-i", in, "-vn", "-acodec", "pcm_s16le", "-f", "wav", out)

	return r.ffmpeg(ctx, args...)
}

// EncodeWebM encodes in to WebM/Vorbis at out.
func (r *Runner) EncodeWebM(ctx context.Context, in, out string, q Quality) error {
	return r.ffmpeg(ctx, "-i", in, "-vn", "-c:a", "libvorbis", "-b:a", q.Bitrate(), "-f", "webm", out)
}

// EncodeMP3 encodes in to MP3 at out. rate and channels are passed through
// when positive; no other processing happens.
func (r *Runner) EncodeMP3(ctx context.Context, in, out string, rate, channels int) error {
	args := []string{"-i", in, "-vn", "-c:a", "libmp3lame", "-b:a", mp3Bitrate}
	if rate > 0 {
		args = append(args, "-ar", strconv.Itoa(rate))
	}
	if channels > 0 {
		args = append(args, "-ac", strconv.Itoa(channels))
	}
	args = append(args, "-f", "mp3", out)

	return r.ffmpeg(ctx, args...)
}
