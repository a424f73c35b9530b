// Package decoder loads audio files of various formats into mono waveforms.
package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/speechenhance/pkg/audio"
	"github.com/xaionaro-go/speechenhance/pkg/audio/planar"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

type Decoder interface {
	Name() string
	Extensions() []string

	// Decode returns interleaved samples in their native sample rate and
	// channel layout.
	Decode(ctx context.Context, r io.ReadSeeker) (*audio.Waveform, error)
}

// Load reads the file at path and returns its content as a mono waveform
// in the native sample rate of the file.
func Load(
	ctx context.Context,
	path string,
) (_ret *audio.Waveform, _err error) {
	logger.Tracef(ctx, "Load('%s')", path)
	defer func() { logger.Tracef(ctx, "/Load('%s'): %v", path, _err) }()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	rc := datacounter.NewReaderCounter(f)
	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	logger.Debugf(ctx, "read %d bytes from '%s'", rc.Count(), path)

	wf, err := Decode(ctx, bytes.NewReader(content), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("unable to decode '%s': %w", path, err)
	}
	logger.Infof(ctx, "Loaded: %.2fs, %dHz, channels=%d", wf.Duration().Seconds(), wf.SampleRate, wf.Channels)

	if wf.IsMono() {
		return wf, nil
	}
	mono, err := Downmix(wf)
	if err != nil {
		return nil, fmt.Errorf("unable to convert to mono: %w", err)
	}
	logger.Infof(ctx, "Converted to mono")
	return mono, nil
}

// Decode tries the decoders claiming the extension first and then all the
// other registered decoders.
func Decode(
	ctx context.Context,
	r io.ReadSeeker,
	ext string,
) (*audio.Waveform, error) {
	var mErr *multierror.Error
	for _, decoder := range candidates(ext) {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("unable to rewind: %w", err)
		}
		wf, err := decoder.Decode(ctx, r)
		logger.Debugf(ctx, "decoding using %s result is %v", decoder.Name(), err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("%s: %w", decoder.Name(), err))
			continue
		}
		if wf.SampleRate == 0 || wf.Channels == 0 {
			mErr = multierror.Append(mErr, fmt.Errorf("%s: invalid stream parameters: %dHz, %d channels", decoder.Name(), wf.SampleRate, wf.Channels))
			continue
		}
		return wf, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, mErr.ErrorOrNil())
}

// Downmix averages all the channels into one.
func Downmix(wf *audio.Waveform) (*audio.Waveform, error) {
	if wf.IsMono() {
		return wf, nil
	}
	planes, err := planar.Split(wf.Channels, wf.Samples)
	if err != nil {
		return nil, err
	}
	mono := make([]float32, wf.Frames())
	for idx := range mono {
		var sum float64
		for _, plane := range planes {
			sum += float64(plane[idx])
		}
		mono[idx] = float32(sum / float64(len(planes)))
	}
	return audio.NewMonoWaveform(mono, wf.SampleRate), nil
}
