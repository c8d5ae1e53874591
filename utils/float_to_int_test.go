// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{name: "zero", input: 0.0, want: 0},
		{name: "max positive clamps", input: 1.0, want: math.MaxInt16},
		{name: "max negative", input: -1.0, want: math.MinInt16},
		{name: "half positive", input: 0.5, want: 16384},
		{name: "half negative", input: -0.5, want: -16384},
		{name: "rounds to nearest", input: 0.001, want: 33},
		{name: "small negative", input: -0.001, want: -33},
		{name: "clamp over max", input: 1.5, want: math.MaxInt16},
		{name: "clamp under min", input: -100.0, want: math.MinInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToInt16(tt.input); got != tt.want {
				t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// TestInt16RoundTrip checks every int16 survives the float conversion.
func TestInt16RoundTrip(t *testing.T) {
	t.Parallel()

	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		in := int16(v)
		if got := Float32ToInt16(Int16ToFloat32(in)); got != in {
			t.Fatalf("round trip of %d gave %d", in, got)
		}
	}
}

func TestClampInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want int16
	}{
		{in: 0.4, want: 0},
		{in: 0.6, want: 1},
		{in: -0.6, want: -1},
		{in: 40000, want: math.MaxInt16},
		{in: -40000, want: math.MinInt16},
		{in: 32767.4, want: 32767},
	}

	for _, tt := range tests {
		if got := ClampInt16(tt.in); got != tt.want {
			t.Errorf("ClampInt16(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func BenchmarkFloat32ToInt16(b *testing.B) {
	samples := make([]float32, 4096)
	for i := range samples {
		samples[i] = float32(math.Sin(float64(i) / 10))
	}

	b.ReportAllocs()
	var out int16
	for range b.N {
		for _, s := range samples {
			out = Float32ToInt16(s)
		}
	}
	_ = out
}
