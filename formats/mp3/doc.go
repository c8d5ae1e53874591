// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always yields stereo, so mono files come back with both channels
// equal; the normalizer folds them back to mono when asked.
//
//	src, err := mp3.Decoder{}.Decode(file)
//	buf, err := audio.Collect(src, 4096)
//
// Reads are kept frame aligned even when the underlying decoder splits a
// frame across calls.
//
// Encoding MP3 is not done here; it goes through the ffmpeg package.
package mp3
