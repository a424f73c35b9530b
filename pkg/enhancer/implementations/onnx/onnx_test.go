package onnx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/speechenhance/pkg/enhancer"
)

func TestRegistered(t *testing.T) {
	assert.Contains(t, enhancer.List(), enhancer.ModelDNS64)
}

func TestNewWithoutWeights(t *testing.T) {
	_, err := enhancer.New(context.Background(), enhancer.ModelDNS64, enhancer.Options{
		CacheDir: t.TempDir(),
	})
	require.Error(t, err)
}
