// SPDX-License-Identifier: EPL-2.0

// Package ffmpeg runs the ffmpeg and ffprobe binaries for the formats that
// have no pure-Go path: WebM and MP4 demuxing, container auto-detection,
// Vorbis and MP3 encoding, and metadata probing.
//
// All work is file to file. Every invocation runs with -nostdin under a
// timeout (DefaultTimeout unless configured) so a wedged process cannot
// block its caller indefinitely.
//
//	r := ffmpeg.New(ffmpeg.WithTimeout(30 * time.Second))
//	if err := r.ToWAV(ctx, "in.webm", "out.wav", "matroska"); err != nil {
//	    return err
//	}
//
// A missing binary is reported as ErrNotFound; a non-zero exit as ErrFailed
// with ffmpeg's stderr appended.
package ffmpeg
