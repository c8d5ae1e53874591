// SPDX-License-Identifier: EPL-2.0

package audconv

import (
	"errors"
	"fmt"

	"github.com/ik5/audconv/formats"
)

var (
	ErrEmptyInput = errors.New("empty audio input")

	// ErrInternal wraps a panic recovered at the converter boundary.
	ErrInternal = errors.New("internal conversion error")

	// ErrInvalidRequest is returned for out of range rates or channel counts.
	ErrInvalidRequest = errors.New("invalid conversion request")
)

// DecodeError is returned when neither the declared format nor
// auto-detection could decode the input.
type DecodeError struct {
	// Format is the resolved input format, Unknown if none was declared.
	Format formats.Format
	// Cause is the error of the last attempt.
	Cause error

	attempts []error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s audio: %v", e.Format, e.Cause)
}

// Unwrap exposes the errors of every attempt.
func (e *DecodeError) Unwrap() []error {
	if len(e.attempts) == 0 {
		return []error{e.Cause}
	}

	return e.attempts
}

// EncodeError is returned when writing the output failed.
type EncodeError struct {
	Target formats.Target
	Cause  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s: %v", e.Target, e.Cause)
}

func (e *EncodeError) Unwrap() error { return e.Cause }

// Outcome classifies err for logs and metrics.
func Outcome(err error) string {
	var (
		decErr *DecodeError
		encErr *EncodeError
	)

	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, formats.ErrUnsupportedFormat):
		return "unsupported"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrEmptyInput), errors.As(err, &decErr):
		return "decode_error"
	case errors.As(err, &encErr):
		return "encode_error"
	default:
		return "error"
	}
}
