// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audconv/internal/audiotest"
)

type call struct {
	name        string
	args        []string
	hasDeadline bool
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  []call
	out    []byte
	err    error
	lookOK bool
}

func (f *fakeRunner) Output(ctx context.Context, name string, args []string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := ctx.Deadline()
	f.calls = append(f.calls, call{name: name, args: slices.Clone(args), hasDeadline: ok})

	return f.out, f.err
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if !f.lookOK {
		return "", ErrNotFound
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) last(t *testing.T) call {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("no command was run")
	}

	return f.calls[len(f.calls)-1]
}

func TestRunner_ToWAV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		demuxer string
		want    []string
	}{
		{
			name:    "forced demuxer",
			demuxer: "matroska",
			want:    []string{"-nostdin", "-y", "-v", "error", "-f", "matroska", "-i", "in", "-vn", "-acodec", "pcm_s16le", "-f", "wav", "out.wav"},
		},
		{
			name: "probe",
			want: []string{"-nostdin", "-y", "-v", "error", "-i", "in", "-vn", "-acodec", "pcm_s16le", "-f", "wav", "out.wav"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeRunner{}
			r := New(WithCommandRunner(fake), WithFFmpegPath("/opt/ffmpeg"))
			if err := r.ToWAV(context.Background(), "in", "out.wav", tt.demuxer); err != nil {
				t.Fatalf("ToWAV() error = %v", err)
			}

			got := fake.last(t)
			if got.name != "/opt/ffmpeg" {
				t.Errorf("binary = %q, want /opt/ffmpeg", got.name)
			}
			if !slices.Equal(got.args, tt.want) {
				t.Errorf("args = %v, want %v", got.args, tt.want)
			}
			if !got.hasDeadline {
				t.Error("command ran without a deadline")
			}
		})
	}
}

func TestRunner_EncodeWebM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		quality Quality
		bitrate string
	}{
		{QualityLow, "64k"},
		{QualityMedium, "128k"},
		{QualityHigh, "192k"},
		{ParseQuality("ultra"), "128k"},
	}

	for _, tt := range tests {
		t.Run(string(tt.quality), func(t *testing.T) {
			t.Parallel()

			fake := &fakeRunner{}
			if err := New(WithCommandRunner(fake)).EncodeWebM(context.Background(), "a.wav", "a.webm", tt.quality); err != nil {
				t.Fatalf("EncodeWebM() error = %v", err)
			}

			want := []string{"-nostdin", "-y", "-v", "error", "-i", "a.wav", "-vn", "-c:a", "libvorbis", "-b:a", tt.bitrate, "-f", "webm", "a.webm"}
			if got := fake.last(t).args; !slices.Equal(got, want) {
				t.Errorf("args = %v, want %v", got, want)
			}
		})
	}
}

func TestRunner_EncodeMP3(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{}
	r := New(WithCommandRunner(fake))

	if err := r.EncodeMP3(context.Background(), "in.ogg", "out.mp3", 16000, 1); err != nil {
		t.Fatalf("EncodeMP3() error = %v", err)
	}
	want := []string{"-nostdin", "-y", "-v", "error", "-i", "in.ogg", "-vn", "-c:a", "libmp3lame", "-b:a", "128k", "-ar", "16000", "-ac", "1", "-f", "mp3", "out.mp3"}
	if got := fake.last(t).args; !slices.Equal(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}

	if err := r.EncodeMP3(context.Background(), "in.ogg", "out.mp3", 0, 0); err != nil {
		t.Fatalf("EncodeMP3() error = %v", err)
	}
	want = []string{"-nostdin", "-y", "-v", "error", "-i", "in.ogg", "-vn", "-c:a", "libmp3lame", "-b:a", "128k", "-f", "mp3", "out.mp3"}
	if got := fake.last(t).args; !slices.Equal(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func TestRunner_Errors(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{err: ErrFailed}
	r := New(WithCommandRunner(fake))

	if err := r.ToWAV(context.Background(), "in", "out", ""); !errors.Is(err, ErrFailed) {
		t.Errorf("ToWAV() error = %v, want %v", err, ErrFailed)
	}
	if _, err := r.Probe(context.Background(), "in"); !errors.Is(err, ErrFailed) {
		t.Errorf("Probe() error = %v, want %v", err, ErrFailed)
	}
}

func TestRunner_NoTimeout(t *testing.T) {
	t.Parallel()

	fake := &fakeRunner{}
	r := New(WithCommandRunner(fake), WithTimeout(0))
	if err := r.ToWAV(context.Background(), "in", "out", ""); err != nil {
		t.Fatalf("ToWAV() error = %v", err)
	}
	if fake.last(t).hasDeadline {
		t.Error("deadline set with timeout disabled")
	}
}

func TestRunner_Available(t *testing.T) {
	t.Parallel()

	if New(WithCommandRunner(&fakeRunner{})).Available() {
		t.Error("Available() = true with no binary")
	}
	if !New(WithCommandRunner(&fakeRunner{lookOK: true})).Available() {
		t.Error("Available() = false with a binary")
	}
}

func TestOSCommandRunner_NotFound(t *testing.T) {
	t.Parallel()

	r := New(WithFFmpegPath("audconv-no-such-binary"))
	err := r.ToWAV(context.Background(), "in", "out", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ToWAV() error = %v, want %v", err, ErrNotFound)
	}
	if r.Available() {
		t.Error("Available() = true for a missing binary")
	}
}

func TestRunner_RoundTrip(t *testing.T) {
	t.Parallel()

	r := New(WithTimeout(30 * time.Second))
	if !r.Available() {
		t.Skip("ffmpeg not installed")
	}

	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	samples := audiotest.Sine16(48000, 2, 48000, 440, 0.5)
	if err := os.WriteFile(in, audiotest.WAV16(48000, 2, samples), 0o600); err != nil {
		t.Fatal(err)
	}

	webm := filepath.Join(dir, "out.webm")
	if err := r.EncodeWebM(context.Background(), in, webm, QualityLow); err != nil {
		t.Fatalf("EncodeWebM() error = %v", err)
	}

	back := filepath.Join(dir, "back.wav")
	if err := r.ToWAV(context.Background(), webm, back, "matroska"); err != nil {
		t.Fatalf("ToWAV() error = %v", err)
	}

	info, err := r.Probe(context.Background(), back)
	if err != nil {
		t.Skipf("ffprobe unavailable: %v", err)
	}
	if info.Codec != "pcm_s16le" || info.SampleRate != 48000 || info.Channels != 2 {
		t.Errorf("Probe() = %+v, want pcm_s16le 48000 Hz stereo", info)
	}
}
