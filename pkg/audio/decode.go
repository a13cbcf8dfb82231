package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// ErrUnsupportedFormat is returned by [DecodeFile] for file extensions
// without a decoder.
var ErrUnsupportedFormat = errors.New("audio: unsupported format")

// Extensions lists the file extensions [DecodeFile] can read.
var Extensions = []string{".wav", ".mp3"}

// Supported reports whether path has an extension [DecodeFile] can read.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// DecodeFile reads the recording at path, choosing the decoder by file
// extension.
func DecodeFile(path string) (Clip, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return Clip{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("audio: open %q: %w", path, err)
	}
	defer f.Close()

	var clip Clip
	switch ext {
	case ".wav":
		clip, err = DecodeWAV(f)
	case ".mp3":
		clip, err = DecodeMP3(f)
	}
	if err != nil {
		return Clip{}, fmt.Errorf("audio: decode %q: %w", path, err)
	}
	return clip, nil
}

// DecodeWAV decodes an uncompressed PCM WAV stream.
func DecodeWAV(r io.ReadSeeker) (Clip, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return Clip{}, errors.New("audio: not a valid wav file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("audio: read wav samples: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 {
		return Clip{}, errors.New("audio: wav file has no sample rate")
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(d.BitDepth)
	}
	return Clip{
		PCM:        downmix(buf.Data, buf.Format.NumChannels, depth),
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// DecodeMP3 decodes an MP3 stream. The decoder always yields 16-bit stereo,
// which is down-mixed to mono.
func DecodeMP3(r io.Reader) (Clip, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return Clip{}, fmt.Errorf("audio: open mp3 stream: %w", err)
	}
	pcm, err := io.ReadAll(d)
	if err != nil {
		return Clip{}, fmt.Errorf("audio: read mp3 samples: %w", err)
	}
	return Clip{PCM: StereoToMono(pcm), SampleRate: d.SampleRate()}, nil
}
