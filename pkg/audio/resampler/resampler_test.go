package resampler

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/speechenhance/pkg/audio"
)

func sine(freq float64, rate audio.SampleRate, n int) []float32 {
	result := make([]float32, n)
	for idx := range result {
		result[idx] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(idx)/float64(rate)))
	}
	return result
}

func TestResampler(t *testing.T) {
	ctx := context.Background()

	t.Run("Identity_16000", func(t *testing.T) {
		in := sine(440, 16000, 16000)
		out, err := Resample(ctx, in, 16000, 16000)
		require.NoError(t, err)
		assert.Len(t, out, len(in))
		// the very same slice: no numerical drift at all
		assert.Same(t, &in[0], &out[0])
	})

	t.Run("Resampling_44100_to_16000", func(t *testing.T) {
		in := sine(440, 44100, 44100)
		out, err := Resample(ctx, in, 44100, 16000)
		require.NoError(t, err)
		assert.Len(t, out, 16000)
		assert.InDelta(t, 0.5, audio.Peak(out), 0.05)
	})

	t.Run("Resampling_16000_to_48000", func(t *testing.T) {
		in := sine(440, 16000, 8000)
		out, err := Resample(ctx, in, 16000, 48000)
		require.NoError(t, err)
		assert.Len(t, out, 24000)
	})

	t.Run("RoundTrip_44100_16000_44100", func(t *testing.T) {
		for _, n := range []int{44100, 44101, 12345, 1} {
			in := sine(440, 44100, n)
			mid, err := Resample(ctx, in, 44100, 16000)
			require.NoError(t, err)
			out, err := Resample(ctx, mid, 16000, 44100)
			require.NoError(t, err)
			assert.InDelta(t, n, len(out), 1, "n=%d", n)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		out, err := Resample(ctx, nil, 44100, 16000)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("ZeroRate", func(t *testing.T) {
		_, err := New(ctx, 0, 16000)
		assert.Error(t, err)
	})
}

func impulse(n, pos int) []float32 {
	result := make([]float32, n)
	result[pos] = 1
	return result
}

func chirp(rate audio.SampleRate, n int, fromFreq, toFreq float64) []float32 {
	result := make([]float32, n)
	duration := float64(n) / float64(rate)
	for idx := range result {
		t := float64(idx) / float64(rate)
		phase := 2 * math.Pi * (fromFreq*t + (toFreq-fromFreq)*t*t/(2*duration))
		result[idx] = float32(0.5 * math.Sin(phase))
	}
	return result
}

func argMax(samples []float32) int {
	result := 0
	for idx, v := range samples {
		if v > samples[result] {
			result = idx
		}
	}
	return result
}

// bestLag returns the shift of b relative to a (within ±maxLag) with the
// highest cross-correlation.
func bestLag(a, b []float32, maxLag int) int {
	result, bestCorr := 0, math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		var corr float64
		for idx := maxLag; idx < len(a)-maxLag && idx+lag < len(b); idx++ {
			corr += float64(a[idx]) * float64(b[idx+lag])
		}
		if corr > bestCorr {
			result, bestCorr = lag, corr
		}
	}
	return result
}

func TestResamplerAlignment(t *testing.T) {
	ctx := context.Background()

	for _, rates := range [][2]audio.SampleRate{
		{44100, 16000},
		{48000, 16000},
		{16000, 44100},
		{16000, 48000},
		{22050, 16000},
		{8000, 16000},
	} {
		from, to := rates[0], rates[1]
		t.Run(fmt.Sprintf("%d_to_%d", from, to), func(t *testing.T) {
			for _, duration := range []float64{0.1, 0.5, 2} {
				n := int(float64(from) * duration)
				for _, pos := range []int{int(from) / 100, n / 3, n - int(from)/50} {
					out, err := Resample(ctx, impulse(n, pos), from, to)
					require.NoError(t, err)
					require.Len(t, out, ExpectedLength(n, from, to))

					expected := float64(pos) * float64(to) / float64(from)
					assert.InDelta(t, expected, float64(argMax(out)), 1, "n=%d pos=%d", n, pos)
				}
			}
		})
	}

	t.Run("RoundTrip_44100_16000_44100", func(t *testing.T) {
		in := chirp(44100, 44100, 100, 6000)
		mid, err := Resample(ctx, in, 44100, 16000)
		require.NoError(t, err)
		out, err := Resample(ctx, mid, 16000, 44100)
		require.NoError(t, err)
		require.Len(t, out, len(in))

		assert.InDelta(t, 0, bestLag(in, out, 1000), 2)
	})
}

func TestPeakPosition(t *testing.T) {
	pos, ok := peakPosition([]float64{0, 0.5, 1, 0.5, 0})
	require.True(t, ok)
	assert.InDelta(t, 2, pos, 1e-9)

	pos, ok = peakPosition([]float64{0, 1, 1, 0})
	require.True(t, ok)
	assert.InDelta(t, 1.5, pos, 1e-9)

	_, ok = peakPosition([]float64{0, 0, 0})
	assert.False(t, ok)

	_, ok = peakPosition(nil)
	assert.False(t, ok)
}

func TestExpectedLength(t *testing.T) {
	assert.Equal(t, 160000, ExpectedLength(160000, 16000, 16000))
	assert.Equal(t, 16000, ExpectedLength(44100, 44100, 16000))
	assert.Equal(t, 220500, ExpectedLength(80000, 16000, 44100))
	assert.Equal(t, 0, ExpectedLength(0, 44100, 16000))
}
