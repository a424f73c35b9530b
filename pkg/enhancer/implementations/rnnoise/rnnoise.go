//go:build rnnoise
// +build rnnoise

package rnnoise

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/speechenhance/pkg/audio"
	"github.com/xaionaro-go/speechenhance/pkg/enhancer"
)

/*
#cgo pkg-config: rnnoise
#cgo CFLAGS: -march=native
#include <rnnoise.h>
*/
import "C"

type RNNoise struct {
	closed bool
}

var _ enhancer.Enhancer = (*RNNoise)(nil)

var frameSize int

func init() {
	frameSize = int(C.rnnoise_get_frame_size())
}

func New() (*RNNoise, error) {
	return &RNNoise{}, nil
}

func (s *RNNoise) Close() error {
	if s.closed {
		return fmt.Errorf("double-free attempt")
	}
	s.closed = true
	return nil
}

func (s *RNNoise) Encoding(ctx context.Context) (audio.Encoding, error) {
	pcmFormat := audio.PCMFormatFloat32LE
	if binary.NativeEndian.Uint16([]byte{1, 2}) == 0x0102 {
		pcmFormat = audio.PCMFormatFloat32BE
	}
	return audio.EncodingPCM{
		PCMFormat:  pcmFormat,
		SampleRate: SampleRate,
	}, nil
}

func (s *RNNoise) Channels(ctx context.Context) (audio.Channel, error) {
	return 1, nil
}

// Enhance runs the network over the whole input with a fresh state, so
// calls do not affect each other. The input is padded with silence up to
// a multiple of the frame size and the padding is cut from the output.
func (s *RNNoise) Enhance(
	ctx context.Context,
	input []float32,
) (_ret []float32, _err error) {
	logger.Tracef(ctx, "Enhance, len:%d", len(input))
	defer func() { logger.Tracef(ctx, "/Enhance, len:%d: %v", len(input), _err) }()

	if s.closed {
		return nil, fmt.Errorf("the model is closed")
	}
	if len(input) == 0 {
		return []float32{}, nil
	}

	paddedLen := (len(input) + frameSize - 1) / frameSize * frameSize
	buf := make([]float32, paddedLen)
	gain(buf, input)
	output := make([]float32, paddedLen)

	denoiseState := C.rnnoise_create(nil)
	defer C.rnnoise_destroy(denoiseState)

	var maxVADProb float64
	for offset := 0; offset < paddedLen; offset += frameSize {
		vadProb := C.rnnoise_process_frame(
			denoiseState,
			(*C.float)(unsafe.Pointer(&output[offset])),
			(*C.float)(unsafe.Pointer(&buf[offset])),
		)
		if float64(vadProb) > maxVADProb {
			maxVADProb = float64(vadProb)
		}
	}
	logger.Debugf(ctx, "max voice activity probability: %f", maxVADProb)

	output = output[:len(input)]
	ungain(output)
	return output, nil
}

// the network expects samples in the int16 range
func gain(dst, src []float32) {
	for idx := range src {
		dst[idx] = src[idx] * math.MaxInt16
	}
}

func ungain(s []float32) {
	for idx := range s {
		s[idx] /= math.MaxInt16
	}
}
