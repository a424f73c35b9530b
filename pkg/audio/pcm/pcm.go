// Package pcm converts samples between their integer PCM representations
// and normalized float values in the range [-1, 1].
package pcm

import (
	"encoding/binary"
	"fmt"
	"math"
)

// S16LEToFloat32 decodes a block of interleaved signed 16-bit little
// endian samples.
func S16LEToFloat32(p []byte) ([]float32, error) {
	if len(p)%2 != 0 {
		return nil, fmt.Errorf("the size of the input is not a multiple of the sample size: %d %% 2 != 0", len(p))
	}
	result := make([]float32, len(p)/2)
	for idx := range result {
		v := int16(binary.LittleEndian.Uint16(p[idx*2:]))
		result[idx] = float32(IntToFloat(int(v), 16))
	}
	return result, nil
}

// IntToFloat normalizes a signed integer sample of the given bit depth.
// 8-bit samples are expected to be unsigned, as WAV stores them.
func IntToFloat(v int, bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return (float64(v) - 128) / 128
	default:
		return float64(v) / float64(int64(1)<<(bitDepth-1))
	}
}

// FloatToInt quantizes a normalized sample to a signed integer of the given
// bit depth, clipping values outside of [-1, 1].
func FloatToInt(v float64, bitDepth int) int {
	if bitDepth == 8 {
		return int(clamp(math.Round(v*128+128), 0, 255))
	}
	scale := float64(int64(1) << (bitDepth - 1))
	return int(clamp(math.Round(v*scale), -scale, scale-1))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
