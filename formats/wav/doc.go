// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE audio using github.com/go-audio/wav.
//
// # Decoding
//
// Decoder accepts integer PCM at 8, 16, 24 or 32 bits, plain or
// WAVE_FORMAT_EXTENSIBLE, with any channel count and sample rate. Chunks
// other than fmt and data are skipped.
//
//	src, err := wav.Decoder{}.Decode(file)
//	buf, err := audio.Collect(src, 4096)
//
// DecodeFile does the same for a path and closes the file with the source.
//
// # Encoding
//
// Output is always signed 16-bit little-endian PCM at the buffer's own rate
// and channel count:
//
//	err := wav.WriteFile("out.wav", buf)
//	data, err := wav.Encode(buf) // in memory
//
// # Errors
//
//   - ErrNotWavFile: no RIFF header
//   - ErrUnsupportedWavLayout: header without a usable fmt chunk
//   - ErrUnsupportedEncoding: float, compressed or odd bit depth samples
//   - ErrMissingDataChunk: no data chunk after the headers
package wav
