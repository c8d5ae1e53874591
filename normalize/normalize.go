// SPDX-License-Identifier: EPL-2.0

package normalize

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ik5/audconv/audio"
)

const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1

	MinSampleRate = 1000
	MaxSampleRate = 192000
)

// Step names one stage of the normalization chain.
type Step string

const (
	StepChannels Step = "channels"
	StepResample Step = "resample"
	StepLoudness Step = "loudness"
	StepFade     Step = "fade"
)

// Target is the output format a buffer is normalized to.
type Target struct {
	SampleRate int
	Channels   int
}

// Validate accepts a zero field, meaning the default, or a rate within
// [MinSampleRate, MaxSampleRate] and one or two channels.
func (t Target) Validate() error {
	if t.SampleRate != 0 && (t.SampleRate < MinSampleRate || t.SampleRate > MaxSampleRate) {
		return fmt.Errorf("%w: sample rate %d outside %d..%d Hz",
			ErrInvalidTarget, t.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if t.Channels != 0 && t.Channels != 1 && t.Channels != 2 {
		return fmt.Errorf("%w: %d channels, want 1 or 2", ErrInvalidTarget, t.Channels)
	}

	return nil
}

func (t Target) withDefaults() Target {
	if t.SampleRate <= 0 {
		t.SampleRate = DefaultSampleRate
	}
	if t.Channels <= 0 {
		t.Channels = DefaultChannels
	}

	return t
}

// Report describes what a Normalize call did.
type Report struct {
	Applied []Step
	// Failed is the step that aborted the chain, empty if all steps ran.
	Failed Step
	Err    error
	// RMS of the buffer entering the loudness step; -1 if that step did not run.
	RMS int
}

// Partial reports whether a step failed and later steps were skipped.
func (r Report) Partial() bool { return r.Failed != "" }

type stepFunc func(buf *audio.Buffer, t Target, rep *Report) (*audio.Buffer, error)

type step struct {
	name Step
	fn   stepFunc
}

// Normalizer brings decoded audio to a fixed rate, channel count and
// loudness. It holds no per-call state and is safe for concurrent use.
type Normalizer struct {
	logger *slog.Logger
	steps  []step
}

type Option func(*Normalizer)

func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{logger: slog.Default()}
	for _, opt := range opts {
		opt(n)
	}

	n.steps = []step{
		{StepChannels, convertChannels},
		{StepResample, resample},
		{StepLoudness, n.adjustLoudness},
		{StepFade, fadeEdges},
	}

	return n
}

// Normalize runs channel conversion, resampling, loudness adjustment and
// edge fades, in that order. Zero fields of t select the defaults.
//
// A failing step does not fail the call: the buffer as it stood before that
// step is returned and the failure is recorded in the Report. buf is never
// modified; the result may be buf itself when no step changed anything.
func (n *Normalizer) Normalize(buf *audio.Buffer, t Target) (*audio.Buffer, Report) {
	t = t.withDefaults()
	rep := Report{RMS: -1}

	cur := buf
	for _, s := range n.steps {
		out, err := runStep(s, cur, t, &rep)
		if err != nil {
			rep.Failed, rep.Err = s.name, err
			n.logger.Warn("normalization step failed, keeping partial result",
				"step", s.name, "err", err)
			return cur, rep
		}
		cur = out
		rep.Applied = append(rep.Applied, s.name)
	}

	n.logger.Debug("normalized audio",
		"sample_rate", cur.SampleRate,
		"channels", cur.Channels,
		"duration", cur.Duration(),
		"rms", rep.RMS)

	return cur, rep
}

func runStep(s step, buf *audio.Buffer, t Target, rep *Report) (out *audio.Buffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %s: %v", ErrStepPanicked, s.name, r)
		}
	}()

	return s.fn(buf, t, rep)
}

func convertChannels(buf *audio.Buffer, t Target, _ *Report) (*audio.Buffer, error) {
	if buf.Channels == t.Channels {
		return buf, nil
	}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	var src audio.Source
	switch t.Channels {
	case 1:
		src = audio.NewMonoMixer(buf.Source())
	case 2:
		src = audio.NewStereoMixer(buf.Source())
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, t.Channels)
	}

	return audio.Collect(src, 0)
}

func resample(buf *audio.Buffer, t Target, _ *Report) (*audio.Buffer, error) {
	if buf.SampleRate == t.SampleRate {
		return buf, nil
	}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return audio.Collect(audio.NewResampler(buf.Source(), t.SampleRate), 0)
}

// fadeLength is min(50ms, duration/10) at whole millisecond resolution.
func fadeLength(buf *audio.Buffer) int {
	ms := min(maxFadeMs, int(buf.Duration()/time.Millisecond)/10)

	return ms * buf.SampleRate / 1000
}

const maxFadeMs = 50

// fadeEdges applies a linear fade-in and fade-out to suppress clicks at
// the decode boundaries.
func fadeEdges(buf *audio.Buffer, _ Target, _ *Report) (*audio.Buffer, error) {
	frames := fadeLength(buf)
	if frames == 0 {
		return buf, nil
	}

	out := buf.Clone()
	total := out.Frames()
	for i := range frames {
		g := float64(i) / float64(frames)
		head := out.Samples[i*out.Channels : (i+1)*out.Channels]
		tail := out.Samples[(total-1-i)*out.Channels : (total-i)*out.Channels]
		for c := range head {
			head[c] = scale(head[c], g)
			tail[c] = scale(tail[c], g)
		}
	}

	return out, nil
}
