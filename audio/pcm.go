// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// PCMReader is the streaming half of the go-audio wav and aiff decoders.
type PCMReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// PCMFormat describes integer PCM as reported by a container header.
type PCMFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
	// Unsigned is set for 8-bit WAV, which stores samples offset by 128.
	Unsigned bool
}

type pcmSource struct {
	r      PCMReader
	format PCMFormat
	scale  float32
	offset int
	buf    *goaudio.IntBuffer
	closer io.Closer
}

// NewPCMSource adapts a go-audio style integer reader to a Source.
// closer, when not nil, is closed together with the source.
func NewPCMSource(r PCMReader, format PCMFormat, closer io.Closer) (Source, error) {
	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, format.SampleRate)
	}
	if format.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, format.Channels)
	}

	s := &pcmSource{
		r:      r,
		format: format,
		closer: closer,
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
			Data:   make([]int, 4096-4096%format.Channels),
		},
	}

	switch format.BitDepth {
	case 8, 16, 24, 32:
		s.scale = 1 / float32(int64(1)<<(format.BitDepth-1))
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, format.BitDepth)
	}
	if format.Unsigned && format.BitDepth == 8 {
		s.offset = 128
	}

	return s, nil
}

func (s *pcmSource) SampleRate() int { return s.format.SampleRate }
func (s *pcmSource) Channels() int   { return s.format.Channels }
func (s *pcmSource) BufSize() int    { return cap(s.buf.Data) }

func (s *pcmSource) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (s *pcmSource) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.format.Channels
	if want == 0 {
		return 0, nil
	}

	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.r.PCMBuffer(s.buf)
	n = max(0, min(n, want))
	for i, v := range s.buf.Data[:n] {
		dst[i] = float32(v-s.offset) * s.scale
	}

	switch {
	case err != nil && err != io.EOF:
		return n, fmt.Errorf("%w", err)
	case n == 0:
		return 0, io.EOF
	}

	return n, err
}
