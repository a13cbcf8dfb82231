package audio

import "encoding/binary"

func clamp16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// StereoToMono averages L+R per interleaved stereo frame (4 bytes) to
// produce mono output.
func StereoToMono(pcm []byte) []byte {
	frames := len(pcm) / 4
	out := make([]byte, frames*2)
	for i := range frames {
		l := int32(int16(binary.LittleEndian.Uint16(pcm[i*4:])))
		r := int32(int16(binary.LittleEndian.Uint16(pcm[i*4+2:])))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(clamp16((l+r)/2)))
	}
	return out
}

// ResampleMono16 resamples 16-bit mono PCM from srcRate to dstRate using
// linear interpolation. If the rates match, or either is not positive, pcm is
// returned unchanged.
func ResampleMono16(pcm []byte, srcRate, dstRate int) []byte {
	if srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || len(pcm) < 2 {
		return pcm
	}
	srcSamples := len(pcm) / 2
	dstSamples := int(int64(srcSamples) * int64(dstRate) / int64(srcRate))
	if dstSamples == 0 {
		return nil
	}

	sample := func(i int) float64 {
		if i >= srcSamples {
			i = srcSamples - 1
		}
		return float64(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	out := make([]byte, dstSamples*2)
	ratio := float64(srcRate) / float64(dstRate)
	for i := range dstSamples {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)
		v := sample(idx)*(1-frac) + sample(idx+1)*frac
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}

// downmix averages interleaved integer samples across channels and scales
// them from bitDepth to 16 bits, returning little-endian PCM. 8-bit input is
// treated as unsigned, as in WAV files.
func downmix(data []int, channels, bitDepth int) []byte {
	if channels < 1 {
		channels = 1
	}
	frames := len(data) / channels
	out := make([]byte, frames*2)
	for i := range frames {
		var sum int64
		for ch := range channels {
			sum += int64(scaleTo16(data[i*channels+ch], bitDepth))
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(clamp16(int32(sum/int64(channels)))))
	}
	return out
}

func scaleTo16(v, bitDepth int) int {
	switch {
	case bitDepth == 8:
		return (v - 128) << 8
	case bitDepth > 16:
		return v >> (bitDepth - 16)
	case bitDepth > 0 && bitDepth < 16:
		return v << (16 - bitDepth)
	}
	return v
}
