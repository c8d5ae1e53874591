// SPDX-License-Identifier: EPL-2.0

// Package formats names the audio formats the converter understands and
// decides which one an input is.
//
// Input formats are resolved from a caller hint and the file name:
//
//	formats.Resolve("clip.WEBM", "")     // formats.WebM
//	formats.Resolve("clip.bin", "mp3")   // formats.MP3
//	formats.Resolve("voice.m4a", "")     // formats.MP4
//	formats.Resolve("noext", "")         // formats.Unknown
//
// The hint always wins over the extension. Unknown is not an error, it
// tells the decoder to detect the format from the content, which is what
// Sniff does with the leading bytes of a file.
//
// Output formats are a closed set (wav, webm, mp3) parsed with ParseTarget.
// Each target knows its media type and file extension.
//
// The sub-packages wav, mp3, vorbis, flac and aiff hold native decoders that
// return an audio.Source; ffmpeg wraps the external codec used for containers
// without a pure Go decoder (webm, mp4) and for lossy encoding.
package formats
