// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// extensibleFmt is the WAVE_FORMAT_EXTENSIBLE fmt chunk body.
type extensibleFmt struct {
	AudioFormat    uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	CbSize         uint16
	ValidBits      uint16
	ChannelMask    uint32
	SubFormat      [16]byte
}

// the GUID of every KSDATAFORMAT_SUBTYPE after its leading format code
var subFormatTail = [14]byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// extensibleSubFormat reads the sub-format code of an extensible fmt chunk
// from the start of rs. The read position is not restored.
func extensibleSubFormat(rs io.ReadSeeker) (uint16, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w", err)
	}

	p := riff.New(rs)
	if err := p.ParseHeaders(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	for {
		ch, err := p.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, ErrUnsupportedWavLayout
			}
			return 0, fmt.Errorf("%w", err)
		}

		if ch.ID != riff.FmtID {
			ch.Drain()
			continue
		}

		var body extensibleFmt
		if ch.Size < 40 {
			return 0, fmt.Errorf("%w: extensible fmt chunk of %d bytes", ErrUnsupportedWavLayout, ch.Size)
		}
		if err := ch.ReadLE(&body); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
		}
		if [14]byte(body.SubFormat[2:]) != subFormatTail {
			return 0, fmt.Errorf("%w: unknown sub-format GUID %x", ErrUnsupportedEncoding, body.SubFormat)
		}

		return uint16(body.SubFormat[0]) | uint16(body.SubFormat[1])<<8, nil
	}
}
