// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC files with github.com/mewkiz/flac.
//
// Frames are parsed one at a time and interleaved into an audio.Source,
// scaled from the stream's bit depth to [-1, 1].
//
//	src, err := flac.Decoder{}.Decode(file)
//	buf, err := audio.Collect(src, 4096)
package flac
