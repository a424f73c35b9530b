// Package encoder writes waveforms to disk as uncompressed PCM WAV files.
package encoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/facebookincubator/go-belt/tool/logger"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/xaionaro-go/speechenhance/pkg/audio"
	"github.com/xaionaro-go/speechenhance/pkg/audio/pcm"
)

const (
	wavFormatPCM = 1

	DefaultBitDepth = 24
)

type Result struct {
	Path string
	Size int64
}

// SizeMB returns the size in mebibytes.
func (r Result) SizeMB() float64 {
	return float64(r.Size) / (1024 * 1024)
}

// WriteWAV encodes the waveform as integer PCM of the given bit depth. The
// file is first written next to the destination and then renamed over it,
// so an existing file is either replaced completely or left untouched.
func WriteWAV(
	ctx context.Context,
	path string,
	wf *audio.Waveform,
	bitDepth int,
) (_ret Result, _err error) {
	logger.Tracef(ctx, "WriteWAV('%s', %d)", path, bitDepth)
	defer func() { logger.Tracef(ctx, "/WriteWAV('%s', %d): %v", path, bitDepth, _err) }()

	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return Result{}, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
	if wf.SampleRate == 0 || wf.Channels == 0 {
		return Result{}, fmt.Errorf("invalid waveform parameters: %dHz, %d channels", wf.SampleRate, wf.Channels)
	}
	if len(wf.Samples)%int(wf.Channels) != 0 {
		return Result{}, fmt.Errorf("the amount of samples %d is not a multiple of the amount of channels %d", len(wf.Samples), wf.Channels)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return Result{}, fmt.Errorf("unable to create a temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if _err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	data := make([]int, len(wf.Samples))
	for idx, v := range wf.Samples {
		data[idx] = pcm.FloatToInt(float64(v), bitDepth)
	}

	enc := wav.NewEncoder(tmp, int(wf.SampleRate), bitDepth, int(wf.Channels), wavFormatPCM)
	err = enc.Write(&goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(wf.Channels),
			SampleRate:  int(wf.SampleRate),
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		return Result{}, fmt.Errorf("unable to encode the samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return Result{}, fmt.Errorf("unable to finalize the WAV file: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		return Result{}, fmt.Errorf("unable to change the permissions of '%s': %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("unable to close '%s': %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return Result{}, fmt.Errorf("unable to move '%s' to '%s': %w", tmpPath, path, err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("unable to stat '%s': %w", path, err)
	}
	return Result{
		Path: path,
		Size: stat.Size(),
	}, nil
}
