// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import "errors"

var (
	// ErrNotFound is returned when the ffmpeg or ffprobe binary cannot be executed.
	ErrNotFound = errors.New("ffmpeg binary not found")

	ErrFailed = errors.New("ffmpeg failed")

	ErrProbeOutput = errors.New("invalid ffprobe output")

	// ErrNoAudioStream is returned by Probe for files without an audio stream.
	ErrNoAudioStream = errors.New("no audio stream")
)
