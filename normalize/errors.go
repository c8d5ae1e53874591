// SPDX-License-Identifier: EPL-2.0

package normalize

import "errors"

var (
	// ErrUnsupportedChannels is returned for channel targets other than mono or stereo.
	ErrUnsupportedChannels = errors.New("unsupported channel target")

	ErrStepPanicked = errors.New("normalization step panicked")

	ErrInvalidTarget = errors.New("invalid normalization target")
)
