// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/ik5/audconv/audio"
)

// frameParser is the part of flac.Stream the source needs.
type frameParser interface {
	ParseNext() (*frameBlock, error)
}

// frameBlock is one decoded FLAC frame, one sample slice per channel.
type frameBlock struct {
	channels [][]int32
}

type streamParser struct {
	stream *flac.Stream
}

func (p streamParser) ParseNext() (*frameBlock, error) {
	f, err := p.stream.ParseNext()
	if err != nil {
		return nil, err
	}

	block := &frameBlock{channels: make([][]int32, len(f.Subframes))}
	for i, sub := range f.Subframes {
		block.channels[i] = sub.Samples
	}

	return block, nil
}

type source struct {
	dec        frameParser
	sampleRate int
	channels   int
	scale      float32

	block *frameBlock
	pos   int // next frame index inside block
	eof   bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 - 4096%s.channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / s.channels
	written := 0

	for written < frames {
		if s.block == nil || s.pos >= len(s.block.channels[0]) {
			if s.eof {
				break
			}

			block, err := s.dec.ParseNext()
			if errors.Is(err, io.EOF) {
				s.eof = true
				break
			}
			if err != nil {
				return written * s.channels, fmt.Errorf("%w: %w", ErrCorruptFrame, err)
			}
			if len(block.channels) != s.channels {
				return written * s.channels, fmt.Errorf("%w: frame has %d channels, stream %d",
					ErrCorruptFrame, len(block.channels), s.channels)
			}
			s.block, s.pos = block, 0
			continue
		}

		n := min(frames-written, len(s.block.channels[0])-s.pos)
		for i := range n {
			base := (written + i) * s.channels
			for c, samples := range s.block.channels {
				dst[base+c] = float32(samples[s.pos+i]) * s.scale
			}
		}
		s.pos += n
		written += n
	}

	if written == 0 && s.eof {
		return 0, io.EOF
	}

	return written * s.channels, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFlacFile, err)
	}

	info := stream.Info
	if info == nil || info.NChannels == 0 || info.SampleRate == 0 {
		return nil, ErrNotFlacFile
	}
	if info.BitsPerSample < 4 || info.BitsPerSample > 32 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, info.BitsPerSample)
	}

	return &source{
		dec:        streamParser{stream: stream},
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		scale:      1 / float32(int64(1)<<(info.BitsPerSample-1)),
	}, nil
}
