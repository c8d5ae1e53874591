// SPDX-License-Identifier: EPL-2.0

// Package audconv converts uploaded audio into the canonical form used for
// speech recognition and back into formats a browser can play.
//
// A conversion resolves the input format, decodes it, normalizes it and
// encodes the target:
//
//	conv := audconv.New(audconv.Options{TempDir: "/var/tmp/audconv"})
//	res := conv.ConvertAnyToWAV(ctx, audconv.FromBytes(data, "clip.webm"), "", 16000, 1)
//	if !res.OK() {
//	    return res.Err
//	}
//	// res.Path is a fully written 16 kHz mono PCM16 WAV
//
// # Formats
//
// WAV, MP3, Ogg Vorbis, FLAC and AIFF are decoded in process. WebM and MP4
// (.m4a) are demuxed by ffmpeg into an intermediate WAV. When the declared
// format fails to decode, or none was given, the header is sniffed and the
// matching native decoder is tried, then ffmpeg without a forced demuxer.
// If every attempt fails the error is a *DecodeError.
//
// Targets are wav, webm (Vorbis, 64k/128k/192k by quality tier) and mp3.
// Anything else fails with formats.ErrUnsupportedFormat before any file is
// touched. MP3 output is transcoded by ffmpeg straight from the input and
// gets no loudness adjustment or fades.
//
// # Results and cleanup
//
// Public operations never panic and never return an error value directly:
// the outcome is a Result holding either the output or Err. Every temporary
// file a call creates is removed before it returns, and outputs are written
// to a partial file renamed into place only once complete.
package audconv
