// SPDX-License-Identifier: EPL-2.0

// Package normalize prepares decoded audio for speech recognition.
//
// Normalize runs four steps, each on the previous one's output:
//
//  1. channels: downmix to mono or duplicate to stereo
//  2. resample: cubic interpolation to the target rate
//  3. loudness: RMS based gain correction toward an RMS of 1000
//  4. fade: linear fade-in and fade-out of min(50ms, duration/10)
//
// Steps that have nothing to do are skipped. A step that fails or panics
// ends the chain and the buffer from before that step is returned, so a
// caller always gets usable audio:
//
//	n := normalize.New(normalize.WithLogger(logger))
//	out, rep := n.Normalize(buf, normalize.Target{SampleRate: 16000, Channels: 1})
//	if rep.Partial() {
//	    logger.Warn("partial normalization", "step", rep.Failed)
//	}
package normalize
