// SPDX-License-Identifier: EPL-2.0

package normalize

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/internal/audiotest"
)

func quietNormalizer() *Normalizer {
	return New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func constant(rate, channels, frames int, v int16) *audio.Buffer {
	samples := make([]int16, frames*channels)
	for i := range samples {
		samples[i] = v
	}

	return &audio.Buffer{Samples: samples, SampleRate: rate, Channels: channels}
}

func TestNormalize_RateAndChannels(t *testing.T) {
	t.Parallel()

	n := quietNormalizer()

	for _, srcRate := range []int{8000, 22050, 44100, 48000} {
		for _, srcCh := range []int{1, 2, 3} {
			frames := srcRate / 4
			buf := &audio.Buffer{
				Samples:    audiotest.Sine16(srcRate, srcCh, frames, 440, 0.3),
				SampleRate: srcRate,
				Channels:   srcCh,
			}

			for _, rate := range []int{8000, 16000, 48000} {
				for _, ch := range []int{1, 2} {
					t.Run(fmt.Sprintf("%dx%d_to_%dx%d", srcRate, srcCh, rate, ch), func(t *testing.T) {
						t.Parallel()

						out, rep := n.Normalize(buf, Target{SampleRate: rate, Channels: ch})
						if rep.Partial() {
							t.Fatalf("step %s failed: %v", rep.Failed, rep.Err)
						}
						if out.SampleRate != rate || out.Channels != ch {
							t.Fatalf("got %d Hz/%d ch, want %d Hz/%d ch", out.SampleRate, out.Channels, rate, ch)
						}
						if len(out.Samples)%ch != 0 {
							t.Fatalf("%d samples not aligned to %d channels", len(out.Samples), ch)
						}

						want := (frames*rate + srcRate - 1) / srcRate
						if d := out.Frames() - want; d < -1 || d > 1 {
							t.Errorf("frames = %d, want %d", out.Frames(), want)
						}
					})
				}
			}
		}
	}
}

func TestNormalize_Defaults(t *testing.T) {
	t.Parallel()

	buf := &audio.Buffer{Samples: audiotest.Sine16(44100, 2, 4410, 440, 0.3), SampleRate: 44100, Channels: 2}
	out, _ := quietNormalizer().Normalize(buf, Target{})

	if out.SampleRate != DefaultSampleRate || out.Channels != DefaultChannels {
		t.Errorf("got %d Hz/%d ch, want defaults", out.SampleRate, out.Channels)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	t.Parallel()

	n := quietNormalizer()
	buf := &audio.Buffer{Samples: audiotest.Sine16(48000, 2, 24000, 440, 0.5), SampleRate: 48000, Channels: 2}
	orig := slices.Clone(buf.Samples)
	target := Target{SampleRate: 16000, Channels: 1}

	first, _ := n.Normalize(buf, target)
	second, _ := n.Normalize(buf, target)

	if !slices.Equal(first.Samples, second.Samples) {
		t.Error("two runs over the same input differ")
	}
	if !slices.Equal(buf.Samples, orig) {
		t.Error("input buffer was modified")
	}

	// already at target: the only changes are loudness and fades, both fixed functions of the input
	again1, _ := n.Normalize(first, target)
	again2, _ := n.Normalize(first, target)
	if !slices.Equal(again1.Samples, again2.Samples) {
		t.Error("renormalizing is not deterministic")
	}
}

func TestNormalize_Silent(t *testing.T) {
	t.Parallel()

	buf := constant(44100, 2, 44100, 0)
	out, rep := quietNormalizer().Normalize(buf, Target{SampleRate: 16000, Channels: 1})

	if rep.Partial() {
		t.Fatalf("step %s failed: %v", rep.Failed, rep.Err)
	}
	if rep.RMS != 0 {
		t.Errorf("RMS = %d, want 0", rep.RMS)
	}
	for i, s := range out.Samples {
		if s != 0 {
			t.Fatalf("sample %d = %d, want 0", i, s)
		}
	}
}

func TestNormalize_Loudness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		level int16
		mid   int16
	}{
		{"too loud", 5000, 3155}, // -4 dB
		{"too quiet", 200, 219},  // +0.8 dB
		{"within tolerance", 1200, 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := constant(16000, 1, 16000, tt.level)
			out, rep := quietNormalizer().Normalize(buf, Target{SampleRate: 16000, Channels: 1})
			if rep.Partial() {
				t.Fatalf("step %s failed: %v", rep.Failed, rep.Err)
			}
			if rep.RMS != int(tt.level) {
				t.Errorf("RMS = %d, want %d", rep.RMS, tt.level)
			}
			if got := out.Samples[8000]; got != tt.mid {
				t.Errorf("mid sample = %d, want %d", got, tt.mid)
			}
		})
	}
}

func TestNormalize_Fade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		frames     int
		fadeFrames int
	}{
		{"capped at 50ms", 16000, 800},
		{"tenth of 200ms", 3200, 320},
		{"too short", 80, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := constant(16000, 2, tt.frames, 1000)
			out, _ := quietNormalizer().Normalize(buf, Target{SampleRate: 16000, Channels: 2})

			if tt.fadeFrames == 0 {
				if !slices.Equal(out.Samples, buf.Samples) {
					t.Error("short buffer was modified")
				}
				return
			}

			last := out.Frames() - 1
			frame := func(i int) int16 { return out.Samples[i*2] }

			if frame(0) != 0 || frame(last) != 0 {
				t.Errorf("edges = %d, %d, want 0", frame(0), frame(last))
			}
			if frame(tt.fadeFrames/2) != 500 {
				t.Errorf("half way = %d, want 500", frame(tt.fadeFrames/2))
			}
			if frame(tt.fadeFrames-1) >= 1000 || frame(last-tt.fadeFrames+1) >= 1000 {
				t.Error("last faded frames are not attenuated")
			}
			if frame(tt.fadeFrames) != 1000 || frame(last-tt.fadeFrames) != 1000 {
				t.Error("fade extends past its length")
			}
			if out.Samples[1] != out.Samples[0] {
				t.Error("channels faded differently")
			}
		})
	}
}

func TestNormalize_StepFailureKeepsPartial(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	n := quietNormalizer()
	n.steps[2].fn = func(*audio.Buffer, Target, *Report) (*audio.Buffer, error) {
		return nil, boom
	}

	buf := &audio.Buffer{Samples: audiotest.Sine16(48000, 2, 4800, 440, 0.9), SampleRate: 48000, Channels: 2}
	out, rep := n.Normalize(buf, Target{SampleRate: 16000, Channels: 1})

	if rep.Failed != StepLoudness || !errors.Is(rep.Err, boom) {
		t.Fatalf("report = %+v, want loudness failure", rep)
	}
	if !slices.Equal(rep.Applied, []Step{StepChannels, StepResample}) {
		t.Errorf("applied = %v", rep.Applied)
	}
	if out.SampleRate != 16000 || out.Channels != 1 {
		t.Errorf("partial result is %d Hz/%d ch, want 16000/1", out.SampleRate, out.Channels)
	}

	full, _ := quietNormalizer().Normalize(buf, Target{SampleRate: 16000, Channels: 1})
	if slices.Equal(out.Samples, full.Samples) {
		t.Error("partial result has loudness and fades applied")
	}
}

func TestNormalize_StepPanic(t *testing.T) {
	t.Parallel()

	n := quietNormalizer()
	n.steps[0].fn = func(*audio.Buffer, Target, *Report) (*audio.Buffer, error) {
		panic("index out of range")
	}

	buf := constant(16000, 2, 1600, 1000)
	out, rep := n.Normalize(buf, Target{SampleRate: 16000, Channels: 1})

	if !errors.Is(rep.Err, ErrStepPanicked) || rep.Failed != StepChannels {
		t.Fatalf("report = %+v, want channels panic", rep)
	}
	if out != buf {
		t.Error("expected the untouched input back")
	}
}

func TestNormalize_UnsupportedChannels(t *testing.T) {
	t.Parallel()

	buf := constant(16000, 1, 1600, 1000)
	out, rep := quietNormalizer().Normalize(buf, Target{SampleRate: 16000, Channels: 6})

	if !errors.Is(rep.Err, ErrUnsupportedChannels) {
		t.Fatalf("error = %v, want %v", rep.Err, ErrUnsupportedChannels)
	}
	if out != buf {
		t.Error("expected the untouched input back")
	}
}

func TestNormalize_InvalidBuffer(t *testing.T) {
	t.Parallel()

	buf := &audio.Buffer{Samples: []int16{1, 2, 3}, SampleRate: 16000, Channels: 2}
	_, rep := quietNormalizer().Normalize(buf, Target{SampleRate: 16000, Channels: 1})

	if !errors.Is(rep.Err, audio.ErrUnalignedSamples) {
		t.Errorf("error = %v, want %v", rep.Err, audio.ErrUnalignedSamples)
	}
}

func TestGainDB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rms   int
		gain  float64
		apply bool
	}{
		{0, 0, false},
		{700, 0, false},
		{1300, 0, false},
		{699, 0.301, true},
		{1301, -0.301, true},
		{11000, -10, true},
	}

	for _, tt := range tests {
		gain, ok := GainDB(tt.rms)
		if ok != tt.apply || gain != tt.gain {
			t.Errorf("GainDB(%d) = %v, %v; want %v, %v", tt.rms, gain, ok, tt.gain, tt.apply)
		}
	}
}

func TestRMS(t *testing.T) {
	t.Parallel()

	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %d", got)
	}
	if got := RMS([]int16{3, -3, 4, -4}); got != 3 {
		t.Errorf("RMS = %d, want 3", got)
	}
}

func BenchmarkNormalize(b *testing.B) {
	n := quietNormalizer()
	buf := &audio.Buffer{Samples: audiotest.Sine16(48000, 2, 48000, 440, 0.5), SampleRate: 48000, Channels: 2}
	target := Target{SampleRate: 16000, Channels: 1}

	for b.Loop() {
		n.Normalize(buf, target)
	}
}

func TestTarget_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  Target
		wantErr bool
	}{
		{name: "defaults", target: Target{}},
		{name: "mono 16k", target: Target{SampleRate: 16000, Channels: 1}},
		{name: "stereo at bounds", target: Target{SampleRate: MaxSampleRate, Channels: 2}},
		{name: "lowest rate", target: Target{SampleRate: MinSampleRate}},
		{name: "three channels", target: Target{Channels: 3}, wantErr: true},
		{name: "negative channels", target: Target{Channels: -1}, wantErr: true},
		{name: "rate too low", target: Target{SampleRate: 999}, wantErr: true},
		{name: "rate too high", target: Target{SampleRate: 10_000_000}, wantErr: true},
		{name: "negative rate", target: Target{SampleRate: -16000}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.target.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTarget) {
				t.Errorf("Validate() error = %v, want ErrInvalidTarget", err)
			}
		})
	}
}
