// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// pcmScale maps [-1,1) onto the full int16 range.
const pcmScale = 32768.0

// Float32ToInt16 converts a normalized sample to 16-bit PCM, rounding to the
// nearest step and clamping out of range input.
// Int16ToFloat32 followed by Float32ToInt16 returns the original value.
func Float32ToInt16(x float32) int16 {
	return ClampInt16(float64(x) * pcmScale)
}

// Int16ToFloat32 converts a 16-bit PCM sample to [-1,1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / pcmScale
}

// ClampInt16 rounds v and saturates it to the int16 range.
func ClampInt16(v float64) int16 {
	v = math.Round(v)
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}

	return int16(v)
}
