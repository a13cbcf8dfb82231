// Package audio decodes recordings into mono 16-bit PCM and provides the
// small set of sample-level conversions the rest of the pipeline needs.
//
// Every decoder produces a [Clip]: little-endian signed 16-bit mono samples
// at the file's native sample rate. Multi-channel audio is down-mixed by
// averaging; other bit depths are scaled to 16 bits.
package audio

import (
	"encoding/binary"
	"time"
)

// BytesPerSample is the size of one 16-bit PCM sample.
const BytesPerSample = 2

// Clip is a mono 16-bit little-endian PCM recording.
type Clip struct {
	PCM        []byte
	SampleRate int
}

// Samples returns the number of samples in c.
func (c Clip) Samples() int {
	return len(c.PCM) / BytesPerSample
}

// Duration returns the playback length of c.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Samples()) * time.Second / time.Duration(c.SampleRate)
}

// byteOffset converts d to a sample-aligned byte offset clamped to c.
func (c Clip) byteOffset(d time.Duration) int {
	if d <= 0 || c.SampleRate <= 0 {
		return 0
	}
	n := int(int64(d) * int64(c.SampleRate) / int64(time.Second))
	off := n * BytesPerSample
	if off > len(c.PCM) {
		off = len(c.PCM) - len(c.PCM)%BytesPerSample
	}
	return off
}

// Slice returns the part of c that starts at start and lasts dur. The range
// is clamped to the clip; the returned clip shares c's backing array.
func (c Clip) Slice(start, dur time.Duration) Clip {
	from := c.byteOffset(start)
	to := c.byteOffset(start + dur)
	return Clip{PCM: c.PCM[from:to], SampleRate: c.SampleRate}
}

// Resample returns c converted to rate using linear interpolation.
func (c Clip) Resample(rate int) Clip {
	if rate == c.SampleRate {
		return c
	}
	return Clip{PCM: ResampleMono16(c.PCM, c.SampleRate, rate), SampleRate: rate}
}

// Float32 returns the samples of c normalised to [-1.0, 1.0].
func (c Clip) Float32() []float32 {
	out := make([]float32, c.Samples())
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(c.PCM[i*2:]))) / 32768.0
	}
	return out
}
