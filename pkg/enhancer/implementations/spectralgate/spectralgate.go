// Package spectralgate implements a non-neural speech enhancer: stationary
// noise is estimated from the quietest frames of the input and removed
// with a spectral gate.
//
// The algorithm works as follows:
//
// 1. STFT: the input is split into Hann-windowed frames with 50% overlap
// and each frame is transformed with an FFT.
//
// 2. Noise profile: the frames with the lowest energy are assumed to
// contain no speech; their magnitudes are averaged per frequency bin.
//
// 3. Gating: every bin is attenuated by 1 - OverSubtraction*noise/magnitude,
// but never below GainFloor, so bins well above the noise profile pass
// nearly unchanged and bins at the noise level are suppressed.
//
// 4. Synthesis: the frames are transformed back and overlap-added with
// the same window, normalized by the accumulated squared window.
package spectralgate

import (
	"context"
	"math"
	"math/cmplx"
	"sort"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/xaionaro-go/speechenhance/pkg/audio"
	"github.com/xaionaro-go/speechenhance/pkg/enhancer"
)

const (
	SampleRate = 16000

	// FrameSize of 512 samples is 32ms at 16kHz.
	FrameSize = 512
	HopSize   = FrameSize / 2

	DefaultNoiseQuantile   = 0.2
	DefaultOverSubtraction = 2.0
	DefaultGainFloor       = 0.05
)

type SpectralGate struct {
	NoiseQuantile   float64
	OverSubtraction float64
	GainFloor       float64
}

var _ enhancer.Enhancer = (*SpectralGate)(nil)

func init() {
	enhancer.Register(enhancer.ModelSpectralGate, func(ctx context.Context, opts enhancer.Options) (enhancer.Enhancer, error) {
		return New(), nil
	})
}

func New() *SpectralGate {
	return &SpectralGate{
		NoiseQuantile:   DefaultNoiseQuantile,
		OverSubtraction: DefaultOverSubtraction,
		GainFloor:       DefaultGainFloor,
	}
}

func (g *SpectralGate) Close() error {
	return nil
}

func (g *SpectralGate) Encoding(context.Context) (audio.Encoding, error) {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatFloat32LE,
		SampleRate: SampleRate,
	}, nil
}

func (g *SpectralGate) Channels(context.Context) (audio.Channel, error) {
	return 1, nil
}

func (g *SpectralGate) Enhance(
	ctx context.Context,
	input []float32,
) (_ret []float32, _err error) {
	logger.Tracef(ctx, "Enhance, len:%d", len(input))
	defer func() { logger.Tracef(ctx, "/Enhance, len:%d: %v", len(input), _err) }()

	if len(input) == 0 {
		return []float32{}, nil
	}

	// silence on both sides, so that every input sample is covered by
	// full frames
	padded := make([]float64, len(input)+2*FrameSize)
	for idx, v := range input {
		padded[FrameSize+idx] = float64(v)
	}

	win := window.Hann(FrameSize)
	numFrames := (len(padded)-FrameSize)/HopSize + 1
	spectra := make([][]complex128, numFrames)
	energies := make([]float64, numFrames)
	segment := make([]float64, FrameSize)
	for frameIdx := range spectra {
		offset := frameIdx * HopSize
		for idx := range segment {
			segment[idx] = padded[offset+idx] * win[idx]
		}
		spectrum := fft.FFTReal(segment)
		var energy float64
		for _, c := range spectrum {
			energy += real(c)*real(c) + imag(c)*imag(c)
		}
		spectra[frameIdx] = spectrum
		energies[frameIdx] = energy
	}

	noise := g.noiseProfile(spectra, energies, len(input))
	gains := make([]float64, FrameSize)
	output := make([]float64, len(padded))
	norm := make([]float64, len(padded))
	for frameIdx, spectrum := range spectra {
		g.calcGains(gains, spectrum, noise)
		for bin := range spectrum {
			spectrum[bin] *= complex(gains[bin], 0)
		}
		frame := fft.IFFT(spectrum)
		offset := frameIdx * HopSize
		for idx, c := range frame {
			output[offset+idx] += real(c) * win[idx]
			norm[offset+idx] += win[idx] * win[idx]
		}
	}

	result := make([]float32, len(input))
	for idx := range result {
		n := norm[FrameSize+idx]
		if n < 1e-8 {
			continue
		}
		result[idx] = float32(output[FrameSize+idx] / n)
	}
	return result, nil
}

// noiseProfile averages the magnitudes of the quietest frames. Frames
// touching the padding are ignored unless the input is shorter than
// a frame.
func (g *SpectralGate) noiseProfile(
	spectra [][]complex128,
	energies []float64,
	inputLen int,
) []float64 {
	var candidates []int
	for frameIdx := range spectra {
		offset := frameIdx * HopSize
		if offset >= FrameSize && offset+FrameSize <= FrameSize+inputLen {
			candidates = append(candidates, frameIdx)
		}
	}
	if len(candidates) == 0 {
		for frameIdx := range spectra {
			candidates = append(candidates, frameIdx)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return energies[candidates[i]] < energies[candidates[j]]
	})

	count := int(math.Ceil(float64(len(candidates)) * g.NoiseQuantile))
	if count < 1 {
		count = 1
	}
	noise := make([]float64, FrameSize)
	for _, frameIdx := range candidates[:count] {
		for bin, c := range spectra[frameIdx] {
			noise[bin] += cmplx.Abs(c)
		}
	}
	for bin := range noise {
		noise[bin] /= float64(count)
	}
	return noise
}

func (g *SpectralGate) calcGains(
	gains []float64,
	spectrum []complex128,
	noise []float64,
) {
	for bin, c := range spectrum {
		magnitude := cmplx.Abs(c)
		if magnitude == 0 {
			gains[bin] = g.GainFloor
			continue
		}
		gain := 1 - g.OverSubtraction*noise[bin]/magnitude
		gains[bin] = math.Max(g.GainFloor, math.Min(1, gain))
	}
}
