// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// StereoMixer turns a mono source into stereo by copying each sample to
// both channels. Sources with more than one channel are downmixed first.
type StereoMixer struct {
	src Source
	tmp []float32
}

func NewStereoMixer(src Source) *StereoMixer {
	if src.Channels() != 1 {
		src = NewMonoMixer(src)
	}

	return &StereoMixer{
		src: src,
		tmp: make([]float32, 2048),
	}
}

func (m *StereoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *StereoMixer) Channels() int   { return 2 }
func (m *StereoMixer) BufSize() int    { return m.src.BufSize() * 2 }

func (m *StereoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *StereoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%2 != 0 {
		return 0, ErrInvalidDstSize
	}

	frames := len(dst) / 2
	if frames == 0 {
		return 0, nil
	}
	if cap(m.tmp) < frames {
		m.tmp = make([]float32, frames)
	}
	m.tmp = m.tmp[:frames]

	n, err := m.src.ReadSamples(m.tmp)
	for i, v := range m.tmp[:n] {
		dst[2*i] = v
		dst[2*i+1] = v
	}

	return n * 2, err
}
