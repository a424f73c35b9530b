package planar

import (
	"fmt"

	"github.com/xaionaro-go/speechenhance/pkg/audio/types"
)

// Planarize converts interleaved samples (L R L R ...) into planar
// ones (L L ... R R ...).
func Planarize[T any](channels types.Channel, output, input []T) error {
	if err := checkLengths(channels, output, input); err != nil {
		return err
	}

	samplesPerChan := len(input) / int(channels)
	for ch := 0; ch < int(channels); ch++ {
		outOffset := ch * samplesPerChan
		for samplePos := 0; samplePos < samplesPerChan; samplePos++ {
			output[outOffset+samplePos] = input[samplePos*int(channels)+ch]
		}
	}

	return nil
}

// Split returns a separate slice per channel for interleaved samples.
func Split[T any](channels types.Channel, input []T) ([][]T, error) {
	buf := make([]T, len(input))
	if err := Planarize(channels, buf, input); err != nil {
		return nil, err
	}
	samplesPerChan := len(input) / int(channels)
	result := make([][]T, channels)
	for ch := range result {
		result[ch] = buf[ch*samplesPerChan : (ch+1)*samplesPerChan]
	}
	return result, nil
}

func checkLengths[T any](channels types.Channel, output, input []T) error {
	if channels == 0 {
		return fmt.Errorf("the amount of channels is zero")
	}
	if len(input)%int(channels) != 0 {
		return fmt.Errorf("expected a message length that is a multiple of %d, but received %d", channels, len(input))
	}
	if len(input) != len(output) {
		return fmt.Errorf("the lengths of input and output are not equal: %d != %d", len(input), len(output))
	}
	return nil
}
