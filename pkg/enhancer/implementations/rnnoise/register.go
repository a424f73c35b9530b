package rnnoise

import (
	"context"

	"github.com/xaionaro-go/speechenhance/pkg/enhancer"
)

const (
	SampleRate = 48_000
)

func init() {
	enhancer.Register(enhancer.ModelRNNoise, func(ctx context.Context, opts enhancer.Options) (enhancer.Enhancer, error) {
		e, err := New()
		if err != nil {
			return nil, err
		}
		return e, nil
	})
}
