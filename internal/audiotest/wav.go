// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// Sine16 returns interleaved 16-bit PCM of a sine tone at amplitude amp (0..1),
// identical on every channel.
func Sine16(sampleRate, channels, frames int, frequency, amp float64) []int16 {
	out := make([]int16, frames*channels)
	for i := range frames {
		v := int16(math.Round(amp * 32767 * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate))))
		for c := range channels {
			out[i*channels+c] = v
		}
	}

	return out
}

// WAV16 builds a canonical 44-byte header PCM16 WAV file in memory.
func WAV16(sampleRate, channels int, samples []int16) []byte {
	dataSize := len(samples) * 2
	b := make([]byte, 44+dataSize)

	copy(b[0:4], "RIFF")
	binary.LittleEndian.PutUint32(b[4:8], uint32(36+dataSize))
	copy(b[8:12], "WAVE")
	copy(b[12:16], "fmt ")
	binary.LittleEndian.PutUint32(b[16:20], 16)
	binary.LittleEndian.PutUint16(b[20:22], 1)
	binary.LittleEndian.PutUint16(b[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(b[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(b[28:32], uint32(sampleRate*channels*2))
	binary.LittleEndian.PutUint16(b[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(b[34:36], 16)
	copy(b[36:40], "data")
	binary.LittleEndian.PutUint32(b[40:44], uint32(dataSize))

	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[44+2*i:], uint16(s))
	}

	return b
}

// WriteFile writes data under t.TempDir() and returns the path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}

	return path
}

// DirEntries lists the names in dir, failing the test on error.
func DirEntries(t testing.TB, dir string) map[string]bool {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}

	return names
}
