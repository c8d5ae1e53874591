// SPDX-License-Identifier: EPL-2.0

package audconv_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ik5/audconv"
	"github.com/ik5/audconv/formats/wav"
	"github.com/ik5/audconv/internal/audiotest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// A 44.1 kHz stereo upload comes out as 16 kHz mono, the converter default.
func ExampleConverter_Convert() {
	conv := audconv.New(audconv.Options{Logger: quietLogger()})

	upload := audiotest.WAV16(44100, 2, audiotest.Sine16(44100, 2, 4410, 440, 0.5))
	res := conv.Convert(context.Background(), audconv.Request{
		Input:    audconv.FromBytes(upload, "voice.wav"),
		Target:   "wav",
		InMemory: true,
	})
	if !res.OK() {
		fmt.Println(res.Err)
		return
	}

	src, err := wav.Decoder{}.Decode(bytes.NewReader(res.Data))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(res.MediaType, src.SampleRate(), src.Channels())
	// Output: audio/wav 16000 1
}

func ExampleConverter_ConvertBytesToTarget() {
	conv := audconv.New(audconv.Options{Logger: quietLogger()})

	res := conv.ConvertBytesToTarget(context.Background(), []byte("..."), "x.webm", "flac", 0, 0)
	fmt.Println(res.OK(), res.Err)
	// Output: false unsupported audio format: "flac"
}

func ExampleConverter_ConvertAnyToWAV() {
	conv := audconv.New(audconv.Options{Logger: quietLogger()})

	dir, err := os.MkdirTemp("", "audconv-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	in := dir + "/in.wav"
	data := audiotest.WAV16(8000, 1, audiotest.Sine16(8000, 1, 8000, 440, 0.5))
	if err := os.WriteFile(in, data, 0o600); err != nil {
		fmt.Println(err)
		return
	}

	res := conv.Convert(context.Background(), audconv.Request{
		Input:      audconv.FromPath(in),
		Target:     "wav",
		OutputPath: dir + "/out.wav",
	})
	fmt.Println(res.Err == nil, res.Path == dir+"/out.wav")
	// Output: true true
}
