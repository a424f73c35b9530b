package planar

import (
	"fmt"

	"github.com/xaionaro-go/speechenhance/pkg/audio/types"
)

// Unplanarize converts planar samples (L L ... R R ...) into interleaved
// ones (L R L R ...).
func Unplanarize[T any](channels types.Channel, output, input []T) error {
	if err := checkLengths(channels, output, input); err != nil {
		return err
	}

	samplesPerChan := len(input) / int(channels)
	for ch := 0; ch < int(channels); ch++ {
		inOffset := ch * samplesPerChan
		for samplePos := 0; samplePos < samplesPerChan; samplePos++ {
			output[samplePos*int(channels)+ch] = input[inOffset+samplePos]
		}
	}

	return nil
}

// Join interleaves per-channel slices of equal length.
func Join[T any](planes [][]T) ([]T, error) {
	if len(planes) == 0 {
		return nil, nil
	}
	samplesPerChan := len(planes[0])
	buf := make([]T, 0, samplesPerChan*len(planes))
	for ch, plane := range planes {
		if len(plane) != samplesPerChan {
			return nil, fmt.Errorf("channel %d has %d samples, while channel 0 has %d", ch, len(plane), samplesPerChan)
		}
		buf = append(buf, plane...)
	}
	output := make([]T, len(buf))
	if err := Unplanarize(types.Channel(len(planes)), output, buf); err != nil {
		return nil, err
	}
	return output, nil
}
