package decoder

import (
	"context"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
	"github.com/xaionaro-go/speechenhance/pkg/audio"
)

type Vorbis struct{}

var _ Decoder = Vorbis{}

func init() {
	Register(20, Vorbis{})
}

func (Vorbis) Name() string {
	return "vorbis"
}

func (Vorbis) Extensions() []string {
	return []string{".ogg", ".oga"}
}

func (Vorbis) Decode(
	ctx context.Context,
	r io.ReadSeeker,
) (*audio.Waveform, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to decode Ogg Vorbis: %w", err)
	}
	return &audio.Waveform{
		Samples:    samples,
		SampleRate: audio.SampleRate(format.SampleRate),
		Channels:   audio.Channel(format.Channels),
	}, nil
}
