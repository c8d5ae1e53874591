// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"

	"github.com/ik5/audconv/audio"
)

// chunkFrames bounds the int conversion buffer handed to the encoder.
const chunkFrames = 8192

// WriteWAV16 writes buf as a signed 16-bit little-endian PCM WAV.
// The sample rate and channel count are taken from buf unchanged.
func WriteWAV16(w io.WriteSeeker, buf *audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return fmt.Errorf("%w", err)
	}

	enc := gowav.NewEncoder(w, buf.SampleRate, audio.BitDepth, buf.Channels, formatPCM)
	format := &goaudio.Format{NumChannels: buf.Channels, SampleRate: buf.SampleRate}
	step := chunkFrames * buf.Channels
	ints := make([]int, 0, min(step, len(buf.Samples)))

	// one Write always happens so the data chunk exists even for no samples
	for start := 0; start == 0 || start < len(buf.Samples); start += step {
		end := min(start+step, len(buf.Samples))
		ints = ints[:0]
		for _, s := range buf.Samples[start:end] {
			ints = append(ints, int(s))
		}

		err := enc.Write(&goaudio.IntBuffer{Format: format, Data: ints, SourceBitDepth: audio.BitDepth})
		if err != nil {
			return fmt.Errorf("writing wav samples: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finishing wav header: %w", err)
	}

	return nil
}

// Encode renders buf as WAV bytes in memory.
func Encode(buf *audio.Buffer) ([]byte, error) {
	ws := &writerseeker.WriterSeeker{}
	if err := WriteWAV16(ws, buf); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(ws.Reader())
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return data, nil
}

// WriteFile creates path and writes buf to it. A failed write leaves the
// partial file behind for the caller to remove.
func WriteFile(path string, buf *audio.Buffer) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if err := WriteWAV16(f, buf); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
