// SPDX-License-Identifier: EPL-2.0

package audconv

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/ik5/audconv/formats"
)

var nativeCodecs = map[formats.Format]string{
	formats.WAV:  "pcm",
	formats.AIFF: "pcm",
	formats.MP3:  "mp3",
	formats.Ogg:  "vorbis",
	formats.FLAC: "flac",
}

// AudioInfo describes the file at path using ffprobe, falling back to the
// native decoders when ffprobe is unavailable or fails. It returns nil if
// neither can read the file.
func (c *Converter) AudioInfo(ctx context.Context, path string) (info *formats.Info) {
	logger := c.logger.With("call_id", uuid.NewString())
	defer func() {
		if r := recover(); r != nil {
			logger.Error("probing audio panicked", "path", path, "panic", r)
			info = nil
		}
	}()

	info, err := c.ffmpeg.Probe(ctx, path)
	if err == nil {
		return info
	}
	logger.Debug("ffprobe failed, reading natively", "path", path, "err", err)

	info, err = c.nativeInfo(path)
	if err != nil {
		logger.Warn("probing audio failed", "path", path, "err", err)
		return nil
	}

	return info
}

func (c *Converter) nativeInfo(path string) (*formats.Info, error) {
	f := sniffFile(path)
	if f == formats.Unknown {
		return nil, fmt.Errorf("%w: unrecognized header", formats.ErrUnsupportedFormat)
	}

	dec := &decoder{natives: c.natives, logger: c.logger}
	a := dec.native(path, f)
	if !a.ok() {
		return nil, a.err
	}

	info := &formats.Info{
		Container:  string(f),
		Codec:      nativeCodecs[f],
		Duration:   a.buf.Duration(),
		SampleRate: a.buf.SampleRate,
		Channels:   a.buf.Channels,
	}
	if st, err := os.Stat(path); err == nil && info.Duration > 0 {
		info.BitRate = int(float64(st.Size()*8) / info.Duration.Seconds())
	}

	return info, nil
}
