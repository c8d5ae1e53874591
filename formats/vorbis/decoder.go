// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audconv/audio"
)

// oggReader is the part of oggvorbis.Reader the source needs.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	pending    []float32 // decoded values past the last whole frame
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 - 4096%s.channels }

// ReadSamples fills dst with whole frames. oggvorbis counts interleaved
// values, not frames, so a short read can end mid-frame; the tail is kept
// for the next call.
func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	n := copy(dst[:want], s.pending)
	s.pending = s.pending[n:]

	var err error
	if n < want {
		var m int
		m, err = s.dec.Read(dst[n:want])
		n += max(m, 0)
	}

	whole := n - n%s.channels
	if whole < n {
		s.pending = append(s.pending, dst[whole:n]...)
	}

	if err != nil && err != io.EOF {
		return whole, fmt.Errorf("%w", err)
	}
	if err == io.EOF && len(s.pending) == 0 {
		return whole, io.EOF
	}
	if whole == 0 && err == io.EOF {
		// a partial trailing frame can never complete
		s.pending = nil
		return 0, io.EOF
	}

	return whole, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbisStream, err)
	}
	if dec.Channels() <= 0 || dec.SampleRate() <= 0 {
		return nil, ErrNotVorbisStream
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
