// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds synthetic sources and WAV fixtures for tests.
package audiotest

import (
	"io"
	"math"
)

// Waveform yields the value of channel ch at frame i.
type Waveform func(i, ch int) float32

// MockSource streams a fixed number of frames produced by a Waveform.
// It satisfies audio.Source without importing it, so package audio's own
// tests can use it.
type MockSource struct {
	rate, channels int
	frames, pos    int
	wave           Waveform
}

// NewMockSource returns a source of frames frames computed by wave.
func NewMockSource(sampleRate, channels, frames int, wave func(i, ch int) float32) *MockSource {
	return &MockSource{rate: sampleRate, channels: channels, frames: frames, wave: wave}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

// NewSineSource is a full scale sine at frequency Hz on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	step := 2 * math.Pi * frequency / float64(sampleRate)
	return NewMockSource(sampleRate, channels, frames, func(i, _ int) float32 {
		return float32(math.Sin(step * float64(i)))
	})
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func (m *MockSource) SampleRate() int { return m.rate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Close() error    { return nil }

// Reset rewinds to the first frame.
func (m *MockSource) Reset() { m.pos = 0 }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.pos >= m.frames {
		return 0, io.EOF
	}
	n := min(len(dst)/m.channels, m.frames-m.pos)

	out := dst[:n*m.channels]
	for i := range out {
		out[i] = m.wave(m.pos+i/m.channels, i%m.channels)
	}
	m.pos += n

	if m.pos >= m.frames {
		return len(out), io.EOF
	}

	return len(out), nil
}

// FailingSource returns Err from every read.
type FailingSource struct {
	Rate, Chans int
	Err         error
}

func (f *FailingSource) SampleRate() int { return f.Rate }
func (f *FailingSource) Channels() int   { return f.Chans }
func (f *FailingSource) BufSize() int    { return 4096 }
func (f *FailingSource) Close() error    { return nil }

func (f *FailingSource) ReadSamples([]float32) (int, error) { return 0, f.Err }
