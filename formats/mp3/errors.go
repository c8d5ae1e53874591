// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	// ErrNotMP3Stream is returned when no MPEG audio frame can be parsed.
	ErrNotMP3Stream = errors.New("not an MP3 stream")
)
