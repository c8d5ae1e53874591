// SPDX-License-Identifier: EPL-2.0

package formats

import "time"

// Info is the descriptive metadata of an audio file.
type Info struct {
	Container  string        `json:"container"`
	Codec      string        `json:"codec"`
	Duration   time.Duration `json:"duration"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	BitRate    int           `json:"bit_rate,omitempty"`
}
