//go:build onnxruntime
// +build onnxruntime

// Package onnx runs the Demucs DNS64 speech enhancement model exported to
// ONNX through ONNX Runtime.
//
// The model takes a tensor of shape [1, 1, N] (batch, channel, samples)
// at 16kHz and returns the enhanced signal of the same shape.
package onnx

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/speechenhance/pkg/audio"
	"github.com/xaionaro-go/speechenhance/pkg/enhancer"
	"github.com/xaionaro-go/speechenhance/pkg/enhancer/modelcache"
	ort "github.com/yalue/onnxruntime_go"
)

type DNS64 struct {
	Locker  sync.Mutex
	Session *ort.DynamicAdvancedSession
}

var _ enhancer.Enhancer = (*DNS64)(nil)

var (
	environmentLocker sync.Mutex
	environmentUsers  int
)

func New(
	ctx context.Context,
	opts enhancer.Options,
) (*DNS64, error) {
	cache, err := modelcache.New(opts.CacheDir)
	if err != nil {
		return nil, err
	}
	weightsPath, err := cache.Resolve(ctx, weightsFileName, opts.WeightsPath, opts.WeightsURL)
	if err != nil {
		return nil, fmt.Errorf("unable to locate the weights: %w", err)
	}
	logger.Debugf(ctx, "loading ONNX weights from '%s'", weightsPath)

	if err := acquireEnvironment(opts.RuntimeLibraryPath); err != nil {
		return nil, fmt.Errorf("unable to initialize ONNX Runtime: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		weightsPath,
		[]string{InputName},
		[]string{OutputName},
		nil,
	)
	if err != nil {
		releaseEnvironment()
		return nil, fmt.Errorf("unable to create an ONNX session: %w", err)
	}
	return &DNS64{
		Session: session,
	}, nil
}

func acquireEnvironment(libraryPath string) error {
	environmentLocker.Lock()
	defer environmentLocker.Unlock()
	if environmentUsers == 0 {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return err
		}
	}
	environmentUsers++
	return nil
}

func releaseEnvironment() {
	environmentLocker.Lock()
	defer environmentLocker.Unlock()
	environmentUsers--
	if environmentUsers == 0 {
		ort.DestroyEnvironment()
	}
}

func (e *DNS64) Close() error {
	e.Locker.Lock()
	defer e.Locker.Unlock()
	if e.Session == nil {
		return fmt.Errorf("double-free attempt")
	}
	err := e.Session.Destroy()
	e.Session = nil
	releaseEnvironment()
	return err
}

func (e *DNS64) Encoding(context.Context) (audio.Encoding, error) {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatFloat32LE,
		SampleRate: SampleRate,
	}, nil
}

func (e *DNS64) Channels(context.Context) (audio.Channel, error) {
	return 1, nil
}

func (e *DNS64) Enhance(
	ctx context.Context,
	input []float32,
) (_ret []float32, _err error) {
	logger.Tracef(ctx, "Enhance, len:%d", len(input))
	defer func() { logger.Tracef(ctx, "/Enhance, len:%d: %v", len(input), _err) }()

	if len(input) == 0 {
		return []float32{}, nil
	}

	e.Locker.Lock()
	defer e.Locker.Unlock()
	if e.Session == nil {
		return nil, fmt.Errorf("the model is closed")
	}

	shape := ort.NewShape(1, 1, int64(len(input)))
	data := make([]float32, len(input))
	copy(data, input)
	inTensor, err := ort.NewTensor(shape, data)
	if err != nil {
		return nil, fmt.Errorf("unable to create the input tensor: %w", err)
	}
	defer inTensor.Destroy()

	outTensor, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		return nil, fmt.Errorf("unable to create the output tensor: %w", err)
	}
	defer outTensor.Destroy()

	if err := e.Session.Run([]ort.Value{inTensor}, []ort.Value{outTensor}); err != nil {
		return nil, fmt.Errorf("unable to run the inference: %w", err)
	}

	output := make([]float32, len(input))
	copy(output, outTensor.GetData())
	return output, nil
}
