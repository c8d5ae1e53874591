// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the canonical identifier of a container/codec family.
// The zero value is Unknown, which asks the decoder to auto-detect.
type Format string

const (
	Unknown Format = ""
	WebM    Format = "webm"
	MP3     Format = "mp3"
	WAV     Format = "wav"
	Ogg     Format = "ogg"
	FLAC    Format = "flac"
	// MP4 covers .m4a uploads; ffmpeg needs the mp4 demuxer for them.
	MP4 Format = "mp4"
	// AIFF is only ever produced by Sniff.
	AIFF Format = "aiff"
)

// aliases maps lower-cased names (hint or extension, no dot) to formats.
var aliases = map[string]Format{
	"webm": WebM,
	"mp3":  MP3,
	"wav":  WAV,
	"wave": WAV,
	"ogg":  Ogg,
	"oga":  Ogg,
	"flac": FLAC,
	"m4a":  MP4,
	"mp4":  MP4,
}

func (f Format) String() string {
	if f == Unknown {
		return "unknown"
	}

	return string(f)
}

// Demuxer returns the ffmpeg demuxer name used with -f for f,
// or "" when ffmpeg should probe the input itself.
func (f Format) Demuxer() string {
	switch f {
	case WebM:
		// ffmpeg has no "webm" input format; matroska reads it.
		return "matroska"
	case Unknown:
		return ""
	default:
		return string(f)
	}
}

// Lookup maps a single name such as "MP3", ".m4a" or "webm" to a Format.
func Lookup(name string) (Format, bool) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	f, ok := aliases[key]

	return f, ok
}

// Resolve picks the format for an input: the hint wins, then the
// extension of filename, otherwise Unknown. Matching is case-insensitive.
// Unknown is not an error.
func Resolve(filename, hint string) Format {
	f, _ := ResolveHint(filename, hint)
	return f
}

// ResolveHint is Resolve that also reports whether a non-empty hint was
// ignored because it named no known format.
func ResolveHint(filename, hint string) (Format, bool) {
	var ignored bool
	if strings.TrimSpace(hint) != "" {
		if f, ok := Lookup(hint); ok {
			return f, false
		}
		ignored = true
	}

	if f, ok := Lookup(filepath.Ext(filename)); ok {
		return f, ignored
	}

	return Unknown, ignored
}

// SniffLen is the number of leading bytes Sniff looks at.
const SniffLen = 12

var (
	magicEBML = []byte{0x1A, 0x45, 0xDF, 0xA3}
	magicID3  = []byte("ID3")
)

// Sniff guesses a format from the first bytes of a file.
func Sniff(header []byte) Format {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) &&
		bytes.Equal(header[8:12], []byte("WAVE")):
		return WAV
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("FORM")) &&
		(bytes.Equal(header[8:12], []byte("AIFF")) || bytes.Equal(header[8:12], []byte("AIFC"))):
		return AIFF
	case bytes.HasPrefix(header, []byte("OggS")):
		return Ogg
	case bytes.HasPrefix(header, []byte("fLaC")):
		return FLAC
	case bytes.HasPrefix(header, magicEBML):
		return WebM
	case len(header) >= 8 && bytes.Equal(header[4:8], []byte("ftyp")):
		return MP4
	case bytes.HasPrefix(header, magicID3):
		return MP3
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return MP3
	}

	return Unknown
}

// Target is an output format the encoder can produce.
type Target string

const (
	TargetWAV  Target = "wav"
	TargetWebM Target = "webm"
	TargetMP3  Target = "mp3"
)

// ParseTarget validates an output format name. Anything other than
// wav, webm or mp3 fails with ErrUnsupportedFormat.
func ParseTarget(name string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")))
	switch t {
	case TargetWAV, TargetWebM, TargetMP3:
		return t, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// MediaType is the MIME type served for t.
func (t Target) MediaType() string {
	switch t {
	case TargetWAV:
		return "audio/wav"
	case TargetWebM:
		return "audio/webm"
	case TargetMP3:
		return "audio/mpeg"
	}

	return "application/octet-stream"
}

// Extension returns the file extension for t, including the dot.
func (t Target) Extension() string { return "." + string(t) }
