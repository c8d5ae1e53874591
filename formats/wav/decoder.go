// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"
	"os"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/audconv/audio"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

type Decoder struct{}

// Decode reads the RIFF headers and returns a stream positioned at the
// start of the sample data. Readers that cannot seek are buffered in memory.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	return decode(r, nil)
}

// DecodeFile opens path and decodes it; closing the source closes the file.
func DecodeFile(path string) (audio.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src, err := decode(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return src, nil
}

func decode(r io.Reader, closer io.Closer) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, ErrUnsupportedWavLayout
	}
	switch dec.WavAudioFormat {
	case formatPCM:
	case formatExtensible:
		if err := checkExtensible(rs); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: format tag %#x", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}

	if err := dec.FwdToPCM(); err != nil || dec.PCMChunk == nil {
		return nil, ErrMissingDataChunk
	}

	src, err := audio.NewPCMSource(dec, audio.PCMFormat{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Unsigned:   dec.BitDepth == 8,
	}, closer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedEncoding, err)
	}

	return src, nil
}

// checkExtensible accepts only integer PCM inside an extensible header and
// leaves rs where the go-audio decoder stopped reading.
func checkExtensible(rs io.ReadSeeker) error {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	sub, err := extensibleSubFormat(rs)
	if _, serr := rs.Seek(pos, io.SeekStart); serr != nil && err == nil {
		err = fmt.Errorf("%w", serr)
	}
	if err != nil {
		return err
	}
	if sub != formatPCM {
		return fmt.Errorf("%w: extensible sub-format %#x", ErrUnsupportedEncoding, sub)
	}

	return nil
}
