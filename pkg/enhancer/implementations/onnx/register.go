package onnx

import (
	"context"

	"github.com/xaionaro-go/speechenhance/pkg/enhancer"
)

const (
	SampleRate = 16000

	InputName  = "input"
	OutputName = "output"

	weightsFileName = "dns64.onnx"
)

func init() {
	enhancer.Register(enhancer.ModelDNS64, func(ctx context.Context, opts enhancer.Options) (enhancer.Enhancer, error) {
		e, err := New(ctx, opts)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
}
