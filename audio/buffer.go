// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/ik5/audconv/utils"
)

// BitDepth of every Buffer.
const BitDepth = 16

// Buffer is fully decoded 16-bit PCM held in memory.
// Samples are interleaved: frame i of channel c is Samples[i*Channels+c].
type Buffer struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Validate reports whether the buffer describes well formed PCM.
func (b *Buffer) Validate() error {
	switch {
	case b.SampleRate <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, b.SampleRate)
	case b.Channels <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidChannels, b.Channels)
	case len(b.Samples)%b.Channels != 0:
		return fmt.Errorf("%w: %d samples, %d channels", ErrUnalignedSamples, len(b.Samples), b.Channels)
	}

	return nil
}

// Frames is the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}

	return len(b.Samples) / b.Channels
}

// Duration is Frames / SampleRate.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}

	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{
		Samples:    slices.Clone(b.Samples),
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
	}
}

// Source streams the buffer as normalized float32 samples.
// The buffer must not be modified while the source is in use.
func (b *Buffer) Source() Source {
	return &bufferSource{buf: b}
}

type bufferSource struct {
	buf *Buffer
	pos int
}

func (s *bufferSource) SampleRate() int { return s.buf.SampleRate }
func (s *bufferSource) Channels() int   { return s.buf.Channels }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.buf.Samples) {
		return 0, io.EOF
	}

	// whole frames only
	want := len(dst) - len(dst)%s.buf.Channels
	n := min(want, len(s.buf.Samples)-s.pos)
	for i, v := range s.buf.Samples[s.pos : s.pos+n] {
		dst[i] = utils.Int16ToFloat32(v)
	}
	s.pos += n

	if s.pos >= len(s.buf.Samples) {
		return n, io.EOF
	}

	return n, nil
}

// maxIdleReads bounds consecutive empty reads that are not io.EOF.
const maxIdleReads = 64

// Collect drains src into a Buffer, converting to 16-bit PCM.
// The source is not closed. bufSize <= 0 uses the source's own BufSize.
func Collect(src Source, bufSize int) (*Buffer, error) {
	if bufSize <= 0 {
		bufSize = src.BufSize()
	}
	if ch := src.Channels(); ch > 0 && bufSize%ch != 0 {
		bufSize += ch - bufSize%ch
	}

	out := &Buffer{
		SampleRate: src.SampleRate(),
		Channels:   src.Channels(),
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}

	buf := make([]float32, max(bufSize, out.Channels))
	idle := 0
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			idle = 0
			out.Samples = slices.Grow(out.Samples, n)
			for _, x := range buf[:n] {
				out.Samples = append(out.Samples, utils.Float32ToInt16(x))
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}
		if n == 0 {
			idle++
			if idle > maxIdleReads {
				return nil, fmt.Errorf("reading samples: %w", io.ErrNoProgress)
			}
		}
	}

	// drop a trailing partial frame from a misbehaving decoder
	out.Samples = out.Samples[:len(out.Samples)-len(out.Samples)%out.Channels]

	return out, nil
}
