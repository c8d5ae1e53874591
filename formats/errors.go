// SPDX-License-Identifier: EPL-2.0

package formats

import "errors"

var (
	// ErrUnsupportedFormat is returned for output formats other than wav, webm and mp3.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)
