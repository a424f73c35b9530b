package audio

import (
	"context"
	"fmt"
	"io"
)

type AbstractAnalyzer interface {
	io.Closer

	Encoding(context.Context) (Encoding, error)
	Channels(context.Context) (Channel, error)
}

// SampleRateOf extracts the sample rate an analyzer expects its input in.
func SampleRateOf(ctx context.Context, a AbstractAnalyzer) (SampleRate, error) {
	encoding, err := a.Encoding(ctx)
	if err != nil {
		return 0, err
	}
	encodingPCM, ok := encoding.(EncodingPCM)
	if !ok {
		return 0, ErrNotPCM{Encoding: encoding}
	}
	return encodingPCM.SampleRate, nil
}

type ErrNotPCM struct {
	Encoding Encoding
}

func (e ErrNotPCM) Error() string {
	return fmt.Sprintf("the encoding %s (%T) is not PCM", e.Encoding, e.Encoding)
}

/* for easier copy&paste:

func () Close() error {
}

func () Encoding(
	ctx context.Context,
) (audio.Encoding, error) {
}

func () Channels(
	ctx context.Context,
) (audio.Channel, error) {
}

*/
