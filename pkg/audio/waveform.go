package audio

import (
	"math"
	"time"
)

// Waveform is an in-memory block of float32 samples in the range [-1, 1].
// Samples of multiple channels are interleaved.
type Waveform struct {
	Samples    []float32
	SampleRate SampleRate
	Channels   Channel
}

func NewMonoWaveform(samples []float32, sampleRate SampleRate) *Waveform {
	return &Waveform{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   1,
	}
}

// Frames returns the amount of samples per channel.
func (w *Waveform) Frames() int {
	if w.Channels == 0 {
		return 0
	}
	return len(w.Samples) / int(w.Channels)
}

func (w *Waveform) Duration() time.Duration {
	if w.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(w.Frames()) / float64(w.SampleRate) * float64(time.Second))
}

func (w *Waveform) IsMono() bool {
	return w.Channels == 1
}

// Peak returns the maximal absolute sample value.
func (w *Waveform) Peak() float64 {
	return Peak(w.Samples)
}

func (w *Waveform) RMS() float64 {
	return RMS(w.Samples)
}

func Peak(samples []float32) float64 {
	var peak float64
	for _, v := range samples {
		a := math.Abs(float64(v))
		if a > peak {
			peak = a
		}
	}
	return peak
}

func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// DBFS converts a linear amplitude to decibels relative to full scale.
// The small offset keeps silence finite (-200 dBFS).
func DBFS(amplitude float64) float64 {
	return 20 * math.Log10(amplitude+1e-10)
}
