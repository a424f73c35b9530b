// Package enhancer defines the speech enhancement models the pipeline runs
// and a registry to instantiate them by name.
package enhancer

import (
	"context"

	"github.com/xaionaro-go/speechenhance/pkg/audio"
)

// Enhancer is a loaded, ready to use speech enhancement model.
//
// Enhance maps mono samples at the sample rate reported by Encoding to
// enhanced samples of exactly the same length. It never changes the model
// itself, so consecutive calls are independent.
type Enhancer interface {
	audio.AbstractAnalyzer

	Enhance(ctx context.Context, input []float32) ([]float32, error)
}

type ModelID string

const (
	// ModelDNS64 is the Demucs model trained on the DNS challenge data
	// (64 hidden channels), exported to ONNX. It works at 16kHz.
	ModelDNS64 = ModelID("dns64")

	// ModelRNNoise is the recurrent noise suppression network from
	// Xiph (librnnoise). It works at 48kHz.
	ModelRNNoise = ModelID("rnnoise")

	// ModelSpectralGate is a non-neural spectral gating denoiser.
	// It works at 16kHz.
	ModelSpectralGate = ModelID("spectralgate")

	DefaultModel = ModelDNS64
)

type Options struct {
	// WeightsPath is an explicit path to the weights file; if empty
	// the weights are looked up in CacheDir.
	WeightsPath string

	// WeightsURL is where to download the weights from if they are
	// not cached yet.
	WeightsURL string

	// CacheDir overrides the default weights cache directory.
	CacheDir string

	// RuntimeLibraryPath is the path to the shared library of the
	// inference runtime (if the model needs one).
	RuntimeLibraryPath string
}
