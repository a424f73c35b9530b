package decoder

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
	"github.com/xaionaro-go/speechenhance/pkg/audio"
	"github.com/xaionaro-go/speechenhance/pkg/audio/pcm"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

type WAV struct{}

var _ Decoder = WAV{}

func init() {
	Register(40, WAV{})
}

func (WAV) Name() string {
	return "wav"
}

func (WAV) Extensions() []string {
	return []string{".wav", ".wave"}
}

func (WAV) Decode(
	ctx context.Context,
	r io.ReadSeeker,
) (*audio.Waveform, error) {
	format, err := readWAVFormat(r)
	if err != nil {
		return nil, fmt.Errorf("not a valid WAV file: %w", err)
	}
	if format != wavFormatPCM {
		return nil, fmt.Errorf("WAV audio format 0x%04X is not supported, only integer PCM is", format)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("unable to rewind: %w", err)
	}

	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("unable to read the PCM data: %w", err)
	}

	bitDepth := int(d.BitDepth)
	samples := make([]float32, len(buf.Data))
	for idx, v := range buf.Data {
		samples[idx] = float32(pcm.IntToFloat(v, bitDepth))
	}
	return &audio.Waveform{
		Samples:    samples,
		SampleRate: audio.SampleRate(d.SampleRate),
		Channels:   audio.Channel(d.NumChans),
	}, nil
}

type wavFormatChunk struct {
	AudioFormat    uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
}

type wavFormatExtension struct {
	Size               uint16
	ValidBitsPerSample uint16
	ChannelMask        uint32
	SubFormat          [16]byte
}

// readWAVFormat returns the format code of the "fmt " chunk. For
// WAVE_FORMAT_EXTENSIBLE it is the code stored in the sub-format GUID.
func readWAVFormat(r io.Reader) (uint16, error) {
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		return 0, err
	}
	if p.Format != riff.WavFormatID {
		return 0, fmt.Errorf("the RIFF container holds '%s', not WAVE", p.Format)
	}
	for {
		chunk, err := p.NextChunk()
		if err != nil {
			return 0, fmt.Errorf("the 'fmt ' chunk is not found: %w", err)
		}
		if chunk.ID != riff.FmtID {
			chunk.Drain()
			continue
		}

		var header wavFormatChunk
		if err := chunk.ReadLE(&header); err != nil {
			return 0, fmt.Errorf("unable to read the 'fmt ' chunk: %w", err)
		}
		if header.AudioFormat != wavFormatExtensible {
			return header.AudioFormat, nil
		}

		var ext wavFormatExtension
		if chunk.Size < binary.Size(header)+binary.Size(ext) {
			return 0, fmt.Errorf("the extensible 'fmt ' chunk is too short: %d bytes", chunk.Size)
		}
		if err := chunk.ReadLE(&ext); err != nil {
			return 0, fmt.Errorf("unable to read the extension of the 'fmt ' chunk: %w", err)
		}
		return binary.LittleEndian.Uint16(ext.SubFormat[:2]), nil
	}
}
