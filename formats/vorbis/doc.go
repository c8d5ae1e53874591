// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis with github.com/jfreymuth/oggvorbis.
//
//	src, err := vorbis.Decoder{}.Decode(file)
//	buf, err := audio.Collect(src, 4096)
//
// Ogg files carrying Opus or other codecs are rejected with
// ErrNotVorbisStream; the converter hands those to ffmpeg instead.
package vorbis
