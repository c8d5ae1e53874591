// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

var (
	// ErrNotVorbisStream is returned for Ogg files without a Vorbis stream.
	ErrNotVorbisStream = errors.New("not an Ogg Vorbis stream")
)
