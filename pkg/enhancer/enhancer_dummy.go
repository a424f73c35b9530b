package enhancer

import (
	"context"

	"github.com/xaionaro-go/speechenhance/pkg/audio"
)

// Dummy returns the input unchanged (as a copy).
type Dummy struct {
	SampleRateValue audio.SampleRate
}

var _ Enhancer = (*Dummy)(nil)

func NewDummy(
	sampleRate audio.SampleRate,
) *Dummy {
	return &Dummy{
		SampleRateValue: sampleRate,
	}
}

func (*Dummy) Close() error {
	return nil
}

func (e *Dummy) Encoding(context.Context) (audio.Encoding, error) {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatFloat32LE,
		SampleRate: e.SampleRateValue,
	}, nil
}

func (*Dummy) Channels(context.Context) (audio.Channel, error) {
	return 1, nil
}

func (*Dummy) Enhance(_ context.Context, input []float32) ([]float32, error) {
	output := make([]float32, len(input))
	copy(output, input)
	return output, nil
}
