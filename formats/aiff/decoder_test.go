// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaiff "github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/orcaman/writerseeker"

	"github.com/ik5/audconv/audio"
)

func encodeAIFF(t *testing.T, rate, channels, bitDepth int, samples []int) []byte {
	t.Helper()

	ws := &writerseeker.WriterSeeker{}
	enc := goaiff.NewEncoder(ws, rate, bitDepth, channels)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := io.ReadAll(ws.Reader())
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	return data
}

// onlyReader hides Seek so the decoder has to buffer the input.
type onlyReader struct{ io.Reader }

func TestDecoder_Decode(t *testing.T) {
	t.Parallel()

	samples := []int{1000, -1000, 2000, -2000, 0, 32767}
	data := encodeAIFF(t, 22050, 2, 16, samples)

	tests := []struct {
		name string
		r    io.Reader
	}{
		{"seeker", bytes.NewReader(data)},
		{"plain reader", onlyReader{bytes.NewReader(data)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := Decoder{}.Decode(tt.r)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			defer src.Close()

			if src.SampleRate() != 22050 || src.Channels() != 2 {
				t.Fatalf("got %d Hz/%d ch, want 22050 Hz/2 ch", src.SampleRate(), src.Channels())
			}

			buf, err := audio.Collect(src, 0)
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			if len(buf.Samples) != len(samples) {
				t.Fatalf("got %d samples, want %d", len(buf.Samples), len(samples))
			}
			for i, want := range samples {
				if int(buf.Samples[i]) != want {
					t.Errorf("sample %d = %d, want %d", i, buf.Samples[i], want)
				}
			}
		})
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	inputs := map[string][]byte{
		"empty":     {},
		"text":      []byte("This is not AIFF data"),
		"wav bytes": []byte("RIFF\x24\x00\x00\x00WAVEfmt "),
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(data))
			if !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want %v", err, ErrNotAiffFile)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestDecoder_ReadError(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(failingReader{})
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Decode() error = %v, want %v", err, io.ErrClosedPipe)
	}
}
