package audio_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/MrWong99/talkytime/pkg/audio"
)

// writeWAV encodes 16-bit interleaved samples to a temporary WAV file.
func writeWAV(t *testing.T, rate, channels int, samples []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	return path
}

func TestDecodeFile_WAVMono(t *testing.T) {
	t.Parallel()
	path := writeWAV(t, 16000, 1, []int{0, 1000, -1000, 32767})

	clip, err := audio.DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if clip.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", clip.SampleRate)
	}
	got := bytesToSamples(clip.PCM)
	want := []int16{0, 1000, -1000, 32767}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDecodeFile_WAVStereoDownmix(t *testing.T) {
	t.Parallel()
	path := writeWAV(t, 44100, 2, []int{100, 300, -200, -400})

	clip, err := audio.DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if clip.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", clip.SampleRate)
	}
	got := bytesToSamples(clip.PCM)
	if len(got) != 2 || got[0] != 200 || got[1] != -300 {
		t.Errorf("samples = %v, want [200 -300]", got)
	}
}

func TestDecodeFile_UppercaseExtension(t *testing.T) {
	t.Parallel()
	src := writeWAV(t, 8000, 1, []int{1, 2, 3})
	dst := filepath.Join(filepath.Dir(src), "CLIP.WAV")
	if err := os.Rename(src, dst); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := audio.DecodeFile(dst); err != nil {
		t.Fatalf("DecodeFile(%q): %v", dst, err)
	}
}

func TestDecodeFile_Unsupported(t *testing.T) {
	t.Parallel()
	_, err := audio.DecodeFile("/nonexistent/track.flac")
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecodeFile_Missing(t *testing.T) {
	t.Parallel()
	_, err := audio.DecodeFile(filepath.Join(t.TempDir(), "missing.wav"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestDecodeFile_InvalidWAV(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("definitely not riff data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := audio.DecodeFile(path); err == nil {
		t.Fatal("expected error for invalid wav")
	}
}

func TestSupported(t *testing.T) {
	t.Parallel()
	for path, want := range map[string]bool{
		"a.wav":       true,
		"b.MP3":       true,
		"c.flac":      false,
		"no-ext":      false,
		"dir.wav/x":   false,
		"2021.03.wav": true,
	} {
		if got := audio.Supported(path); got != want {
			t.Errorf("Supported(%q) = %v, want %v", path, got, want)
		}
	}
}
