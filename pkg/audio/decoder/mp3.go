package decoder

import (
	"context"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/xaionaro-go/speechenhance/pkg/audio"
	"github.com/xaionaro-go/speechenhance/pkg/audio/pcm"
)

// the decoder always yields 16-bit little-endian stereo
const mp3Channels = 2

type MP3 struct{}

var _ Decoder = MP3{}

func init() {
	Register(10, MP3{})
}

func (MP3) Name() string {
	return "mp3"
}

func (MP3) Extensions() []string {
	return []string{".mp3"}
}

func (MP3) Decode(
	ctx context.Context,
	r io.ReadSeeker,
) (*audio.Waveform, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize an MP3 decoder: %w", err)
	}

	data, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("unable to decode MP3: %w", err)
	}
	frameSize := mp3Channels * int(audio.PCMFormatS16LE.Size())
	data = data[:len(data)-len(data)%frameSize]

	samples, err := pcm.S16LEToFloat32(data)
	if err != nil {
		return nil, err
	}
	return &audio.Waveform{
		Samples:    samples,
		SampleRate: audio.SampleRate(d.SampleRate()),
		Channels:   mp3Channels,
	}, nil
}
