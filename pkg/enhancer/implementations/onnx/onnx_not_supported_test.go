//go:build !onnxruntime
// +build !onnxruntime

package onnx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/speechenhance/pkg/enhancer"
)

func TestNewWithoutRuntime(t *testing.T) {
	_, err := enhancer.New(context.Background(), enhancer.ModelDNS64, enhancer.Options{
		WeightsPath: "dns64.onnx",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-tags onnxruntime")
	assert.Contains(t, err.Error(), string(enhancer.ModelSpectralGate))
}
