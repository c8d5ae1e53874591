// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files using github.com/go-audio/aiff.
//
// AIFF is the big-endian sibling of WAV. Samples are signed PCM at 8, 16, 24
// or 32 bits and come out of the decoder as float32 in [-1, 1]. AIFF-C
// compressed variants are rejected.
//
// The converter tries this decoder when the input carries no usable format
// hint and its header sniffs as FORM/AIFF:
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // try something else
//	}
package aiff
