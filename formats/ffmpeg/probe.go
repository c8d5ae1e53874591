// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ik5/audconv/formats"
)

type probeOutput struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
		BitRate    string `json:"bit_rate"`
		Duration   string `json:"duration"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
}

// Probe reads container and first audio stream metadata with ffprobe.
func (r *Runner) Probe(ctx context.Context, path string) (*formats.Info, error) {
	out, err := r.run(ctx, r.ffprobePath, []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-select_streams", "a:0",
		path,
	})
	if err != nil {
		return nil, err
	}

	return parseProbe(out)
}

func parseProbe(data []byte) (*formats.Info, error) {
	var p probeOutput
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProbeOutput, err)
	}
	if len(p.Streams) == 0 {
		return nil, ErrNoAudioStream
	}
	s := p.Streams[0]

	info := &formats.Info{
		Container:  p.Format.FormatName,
		Codec:      s.CodecName,
		SampleRate: atoi(s.SampleRate),
		Channels:   s.Channels,
		BitRate:    atoi(s.BitRate),
	}
	if info.BitRate == 0 {
		info.BitRate = atoi(p.Format.BitRate)
	}

	duration := p.Format.Duration
	if duration == "" {
		duration = s.Duration
	}
	if secs, err := strconv.ParseFloat(duration, 64); err == nil {
		info.Duration = time.Duration(secs * float64(time.Second))
	}

	return info, nil
}

// atoi treats ffprobe's "N/A" and empty fields as zero.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}
