// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audconv/audio"
)

// valueReader returns at most chunk values per Read, ignoring frame
// boundaries, the way oggvorbis.Reader does between packets.
type valueReader struct {
	channels int
	data     []float32
	chunk    int
	err      error
}

func (v *valueReader) SampleRate() int { return 48000 }
func (v *valueReader) Channels() int   { return v.channels }

func (v *valueReader) Read(p []float32) (int, error) {
	if v.err != nil {
		return 0, v.err
	}
	if len(v.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p[:min(len(p), v.chunk)], v.data)
	v.data = v.data[n:]
	return n, nil
}

func ramp(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i) / 1024
	}
	return out
}

func TestSource_CountsValuesNotFrames(t *testing.T) {
	t.Parallel()

	for _, channels := range []int{1, 2, 6} {
		data := ramp(60 * channels)
		src := &source{
			dec:        &valueReader{channels: channels, data: data, chunk: 1 << 20},
			sampleRate: 48000,
			channels:   channels,
		}

		buf, err := audio.Collect(src, 4096)
		if err != nil {
			t.Fatalf("%d ch: Collect() error = %v", channels, err)
		}
		if buf.Frames() != 60 {
			t.Errorf("%d ch: Frames() = %d, want 60", channels, buf.Frames())
		}
	}
}

func TestSource_SplitFrames(t *testing.T) {
	t.Parallel()

	data := ramp(40)
	src := &source{
		dec:        &valueReader{channels: 2, data: data, chunk: 3},
		sampleRate: 48000,
		channels:   2,
	}

	var got []float32
	dst := make([]float32, 8)
	for {
		n, err := src.ReadSamples(dst)
		if n%2 != 0 {
			t.Fatalf("ReadSamples() returned %d values, not whole frames", n)
		}
		got = append(got, dst[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	if len(got) != len(data) {
		t.Fatalf("got %d values, want %d", len(got), len(data))
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("value %d = %v, want %v", i, got[i], data[i])
		}
	}
}

func TestSource_DropsTrailingPartialFrame(t *testing.T) {
	t.Parallel()

	src := &source{
		dec:        &valueReader{channels: 2, data: ramp(5), chunk: 16},
		sampleRate: 48000,
		channels:   2,
	}

	buf, err := audio.Collect(src, 16)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if buf.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", buf.Frames())
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	src := &source{dec: &valueReader{channels: 1, err: io.ErrUnexpectedEOF}, sampleRate: 48000, channels: 1}
	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("ReadSamples() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for name, data := range map[string][]byte{
		"empty":   nil,
		"text":    []byte("not audio"),
		"ogg tag": []byte("OggS\x00\x02\x00\x00"),
	} {
		if _, err := (Decoder{}).Decode(bytes.NewReader(data)); !errors.Is(err, ErrNotVorbisStream) {
			t.Errorf("%s: Decode() error = %v, want ErrNotVorbisStream", name, err)
		}
	}
}
