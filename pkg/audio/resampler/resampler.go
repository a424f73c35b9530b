// Package resampler converts mono waveforms between sample rates using
// band-limited interpolation.
package resampler

import (
	"context"
	"fmt"
	"math"

	"github.com/facebookincubator/go-belt/tool/logger"
	resampling "github.com/tphakala/go-audio-resampling"
	"github.com/xaionaro-go/speechenhance/pkg/audio"
)

const (
	// primeDuration is the silence prepended to the input. The filter
	// stages start with an empty history, so without it the output would be
	// ahead of the input by half of the filter length.
	primeDuration = 0.05

	// flushDuration is the silence appended to the input. Flush drains only
	// the last stage of a multi-stage pipeline.
	flushDuration = 0.25

	// calibrationImpulseDuration is where the calibration impulse is placed
	// to measure the offset of the output.
	calibrationImpulseDuration = 0.1
)

type Resampler struct {
	From    audio.SampleRate
	To      audio.SampleRate
	Quality resampling.QualitySpec

	// prime is the amount of zeros (in input samples) put before the signal.
	prime int

	// offset is the amount of output samples to drop so that the output is
	// aligned with the input.
	offset int
}

// New prepares a resampler from one sample rate to another. It fails if
// any of the rates is zero.
func New(
	ctx context.Context,
	from audio.SampleRate,
	to audio.SampleRate,
) (*Resampler, error) {
	if from == 0 || to == 0 {
		return nil, fmt.Errorf("sample rates must be positive: %d -> %d", from, to)
	}
	r := &Resampler{
		From:    from,
		To:      to,
		Quality: resampling.QualitySpec{Preset: resampling.QualityHigh},
	}
	if from == to {
		return r, nil
	}

	impl, err := r.newImpl()
	if err != nil {
		return nil, err
	}
	latency := impl.GetLatency()
	r.prime = int(math.Ceil(float64(from)*primeDuration)) +
		int(math.Ceil(float64(latency)*float64(from)/float64(to)))

	offset, err := r.measureOffset()
	if err != nil {
		return nil, fmt.Errorf("unable to measure the offset of the filter %d -> %d: %w", from, to, err)
	}
	r.offset = offset
	logger.Debugf(ctx, "resampler %d -> %d: latency %d, prime %d, offset %d", from, to, latency, r.prime, r.offset)
	return r, nil
}

// Resample converts the samples, keeping the duration and the position of
// the signal in time: the result always has exactly
// ExpectedLength(len(samples), From, To) samples. If the rates are equal
// the input slice is returned as is.
func (r *Resampler) Resample(
	ctx context.Context,
	samples []float32,
) ([]float32, error) {
	if r.From == r.To {
		return samples, nil
	}
	if len(samples) == 0 {
		return []float32{}, nil
	}

	signal := make([]float64, len(samples))
	for idx, v := range samples {
		signal[idx] = float64(v)
	}

	output, err := r.run(signal)
	if err != nil {
		return nil, err
	}
	logger.Tracef(ctx, "resampled %d samples into %d (offset %d)", len(samples), len(output), r.offset)

	expected := ExpectedLength(len(samples), r.From, r.To)
	result := make([]float32, expected)
	if r.offset < len(output) {
		output = output[r.offset:]
		for idx := 0; idx < expected && idx < len(output); idx++ {
			result[idx] = float32(output[idx])
		}
	}
	return result, nil
}

func (r *Resampler) newImpl() (resampling.Resampler, error) {
	impl, err := resampling.New(&resampling.Config{
		InputRate:  float64(r.From),
		OutputRate: float64(r.To),
		Channels:   1,
		Quality:    r.Quality,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the resampler: %w", err)
	}
	return impl, nil
}

// run passes the signal surrounded by silence through a fresh resampler
// and returns everything it produced, including the flushed tail.
func (r *Resampler) run(signal []float64) ([]float64, error) {
	impl, err := r.newImpl()
	if err != nil {
		return nil, err
	}

	input := make([]float64, r.prime+len(signal)+r.flushSamples())
	copy(input[r.prime:], signal)

	output, err := impl.Process(input)
	if err != nil {
		return nil, fmt.Errorf("unable to resample: %w", err)
	}
	tail, err := impl.Flush()
	if err != nil {
		return nil, fmt.Errorf("unable to flush the resampler: %w", err)
	}
	return append(output, tail...), nil
}

func (r *Resampler) flushSamples() int {
	return int(math.Ceil(float64(r.From)*flushDuration)) + 64
}

// measureOffset feeds a unit impulse through the filter and compares where
// it comes out with where it is supposed to be.
func (r *Resampler) measureOffset() (int, error) {
	impulsePos := int(math.Ceil(float64(r.From) * calibrationImpulseDuration))
	signal := make([]float64, 2*impulsePos)
	signal[impulsePos] = 1

	output, err := r.run(signal)
	if err != nil {
		return 0, err
	}
	peak, ok := peakPosition(output)
	if !ok {
		return 0, fmt.Errorf("the resampler returned no signal")
	}

	offset := peak - float64(impulsePos)*float64(r.To)/float64(r.From)
	if offset < 0 {
		return 0, fmt.Errorf("the output is ahead of the input by %.1f samples", -offset)
	}
	return int(math.Round(offset)), nil
}

// peakPosition returns the position of the maximal sample, refined between
// the neighboring samples with a parabolic fit.
func peakPosition(samples []float64) (float64, bool) {
	if len(samples) == 0 {
		return 0, false
	}
	peakIdx := 0
	for idx, v := range samples {
		if v > samples[peakIdx] {
			peakIdx = idx
		}
	}
	if samples[peakIdx] <= 0 {
		return 0, false
	}
	if peakIdx == 0 || peakIdx == len(samples)-1 {
		return float64(peakIdx), true
	}
	prev, cur, next := samples[peakIdx-1], samples[peakIdx], samples[peakIdx+1]
	denominator := prev - 2*cur + next
	if denominator == 0 {
		return float64(peakIdx), true
	}
	return float64(peakIdx) + 0.5*(prev-next)/denominator, true
}

// ExpectedLength returns the amount of samples n samples at rate "from"
// take at rate "to".
func ExpectedLength(n int, from, to audio.SampleRate) int {
	if from == to {
		return n
	}
	return int(math.Round(float64(n) * float64(to) / float64(from)))
}

// Resample is a shorthand for New + Resampler.Resample.
func Resample(
	ctx context.Context,
	samples []float32,
	from audio.SampleRate,
	to audio.SampleRate,
) ([]float32, error) {
	r, err := New(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return r.Resample(ctx, samples)
}
