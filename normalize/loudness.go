// SPDX-License-Identifier: EPL-2.0

package normalize

import (
	"math"

	"github.com/ik5/audconv/audio"
	"github.com/ik5/audconv/utils"
)

// Loudness heuristic constants, on the int16 amplitude scale.
//
// This is a coarse RMS correction, not a perceptual loudness model (no
// LUFS, no gating). Speech recognition downstream is tuned against it, so
// its shape is kept as is: gain = (targetRMS - rms) / 1000 dB.
const (
	targetRMS    = 1000
	rmsTolerance = 300
)

// RMS is the integer root-mean-square amplitude of samples.
func RMS(samples []int16) int {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}

	return int(math.Sqrt(sum / float64(len(samples))))
}

// GainDB is the heuristic correction for a buffer of the given RMS, and
// whether it should be applied at all.
func GainDB(rms int) (float64, bool) {
	diff := targetRMS - rms
	if rms == 0 || abs(diff) <= rmsTolerance {
		return 0, false
	}

	return float64(diff) / 1000, true
}

func (n *Normalizer) adjustLoudness(buf *audio.Buffer, _ Target, rep *Report) (*audio.Buffer, error) {
	rms := RMS(buf.Samples)
	rep.RMS = rms

	if rms == 0 {
		n.logger.Warn("audio is silent or corrupt, skipping loudness adjustment")
		return buf, nil
	}

	db, ok := GainDB(rms)
	if !ok {
		return buf, nil
	}

	factor := math.Pow(10, db/20)
	out := &audio.Buffer{
		Samples:    make([]int16, len(buf.Samples)),
		SampleRate: buf.SampleRate,
		Channels:   buf.Channels,
	}
	for i, s := range buf.Samples {
		out.Samples[i] = scale(s, factor)
	}

	n.logger.Debug("adjusted loudness", "rms", rms, "target_rms", targetRMS, "gain_db", db)

	return out, nil
}

func scale(s int16, factor float64) int16 {
	return utils.ClampInt16(float64(s) * factor)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
