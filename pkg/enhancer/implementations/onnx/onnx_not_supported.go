//go:build !onnxruntime
// +build !onnxruntime

package onnx

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/speechenhance/pkg/enhancer"
)

type DNS64 = enhancer.Dummy

func New(
	ctx context.Context,
	opts enhancer.Options,
) (*DNS64, error) {
	return nil, fmt.Errorf("built without tag 'onnxruntime': rebuild with '-tags onnxruntime' or choose another model, e.g. '%s'", enhancer.ModelSpectralGate)
}
