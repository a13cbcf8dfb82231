package audio_test

import (
	"bytes"
	"slices"
	"testing"

	"github.com/MrWong99/talkytime/pkg/audio"
)

func TestClip_WAVRoundTrip(t *testing.T) {
	t.Parallel()
	want := []int16{0, 1, -1, 12345, -32768, 32767}
	clip := audio.Clip{PCM: samplesToBytes(want), SampleRate: 16000}

	wav := clip.WAV()
	if len(wav) != 44+len(clip.PCM) {
		t.Fatalf("WAV length = %d, want %d", len(wav), 44+len(clip.PCM))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE magic: %q", wav[:12])
	}

	got, err := audio.DecodeWAV(bytes.NewReader(wav))
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if got.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", got.SampleRate)
	}
	if samples := bytesToSamples(got.PCM); !slices.Equal(samples, want) {
		t.Errorf("samples = %v, want %v", samples, want)
	}
}
