package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/xaionaro-go/speechenhance/pkg/audio"
	"github.com/xaionaro-go/speechenhance/pkg/audio/planar"
)

type FLAC struct{}

var _ Decoder = FLAC{}

func init() {
	Register(30, FLAC{})
}

func (FLAC) Name() string {
	return "flac"
}

func (FLAC) Extensions() []string {
	return []string{".flac"}
}

func (FLAC) Decode(
	ctx context.Context,
	r io.ReadSeeker,
) (*audio.Waveform, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize a FLAC decoder: %w", err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	if channels == 0 {
		return nil, fmt.Errorf("the FLAC stream has no channels")
	}
	// FLAC samples are signed for any bit depth, including 8
	scale := float64(int64(1) << (stream.Info.BitsPerSample - 1))

	planes := make([][]float32, channels)
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to parse a FLAC frame: %w", err)
		}
		if len(frame.Subframes) != channels {
			return nil, fmt.Errorf("a frame has %d subframes instead of %d", len(frame.Subframes), channels)
		}
		for ch, subframe := range frame.Subframes {
			for _, v := range subframe.Samples[:frame.BlockSize] {
				planes[ch] = append(planes[ch], float32(float64(v)/scale))
			}
		}
	}

	samples, err := planar.Join(planes)
	if err != nil {
		return nil, err
	}
	return &audio.Waveform{
		Samples:    samples,
		SampleRate: audio.SampleRate(stream.Info.SampleRate),
		Channels:   audio.Channel(channels),
	}, nil
}
