// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM building blocks of the conversion pipeline.
//
// # Streams and buffers
//
// Decoders produce a Source, a pull stream of interleaved float32 samples in
// [-1, 1]. Every processor in this package is itself a Source, so stages chain:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	pipeline := audio.NewMonoMixer(audio.NewResampler(src, 16000))
//	buf, err := audio.Collect(pipeline, 4096)
//
// Collect drains a stream into a Buffer, the in-memory 16-bit form the
// normalizer and encoders work on. Buffer.Source turns it back into a stream.
// Converting int16 to float32 and back is lossless.
//
// # Channels
//
// MonoMixer averages all channels of each frame. StereoMixer copies a mono
// signal to two channels, downmixing wider inputs first.
//
// # Resampling
//
// Resampler changes the sample rate with Catmull-Rom cubic interpolation and a
// one-pole low-pass on the input when downsampling. The output holds
// ceil(frames * dst / src) frames, so durations are kept to within one sample.
//
// # Registry
//
// Registry maps format keys to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, ok := registry.Get("wav")
//
// # End of stream
//
// ReadSamples returns io.EOF once the stream is drained, possibly together
// with the last samples:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
