package decoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// KSDATAFORMAT_SUBTYPE_* GUIDs without the leading format code.
var subFormatGUIDTail = []byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

func extensibleWAV(t *testing.T, subFormat uint16, bitDepth uint16, data []byte) []byte {
	var fmtChunk bytes.Buffer
	// format, channels, sample rate, byte rate, block align, bit depth,
	// extension size, valid bits, channel mask (front center), sub-format
	for _, v := range []any{
		uint16(wavFormatExtensible),
		uint16(1),
		uint32(16000),
		uint32(16000 * uint32(bitDepth) / 8),
		uint16(bitDepth / 8),
		bitDepth,
		uint16(22),
		bitDepth,
		uint32(4),
		subFormat,
	} {
		require.NoError(t, binary.Write(&fmtChunk, binary.LittleEndian, v))
	}
	fmtChunk.Write(subFormatGUIDTail)
	require.Equal(t, 40, fmtChunk.Len())

	var out bytes.Buffer
	out.WriteString("RIFF")
	require.NoError(t, binary.Write(&out, binary.LittleEndian, uint32(4+8+fmtChunk.Len()+8+len(data))))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	require.NoError(t, binary.Write(&out, binary.LittleEndian, uint32(fmtChunk.Len())))
	out.Write(fmtChunk.Bytes())
	out.WriteString("data")
	require.NoError(t, binary.Write(&out, binary.LittleEndian, uint32(len(data))))
	out.Write(data)
	return out.Bytes()
}

func TestWAVExtensible(t *testing.T) {
	ctx := context.Background()

	t.Run("PCM", func(t *testing.T) {
		var data bytes.Buffer
		for _, v := range []int16{16384, -16384, 0, 32767} {
			require.NoError(t, binary.Write(&data, binary.LittleEndian, v))
		}
		wf, err := WAV{}.Decode(ctx, bytes.NewReader(extensibleWAV(t, wavFormatPCM, 16, data.Bytes())))
		require.NoError(t, err)
		assert.EqualValues(t, 16000, wf.SampleRate)
		assert.EqualValues(t, 1, wf.Channels)
		require.Len(t, wf.Samples, 4)
		assert.Equal(t, float32(0.5), wf.Samples[0])
		assert.Equal(t, float32(-0.5), wf.Samples[1])
	})

	t.Run("Float", func(t *testing.T) {
		var data bytes.Buffer
		for _, v := range []float32{0.5, -0.5, 0.25, 0} {
			require.NoError(t, binary.Write(&data, binary.LittleEndian, math.Float32bits(v)))
		}
		_, err := WAV{}.Decode(ctx, bytes.NewReader(extensibleWAV(t, 3, 32, data.Bytes())))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "0x0003")
	})
}

func TestReadWAVFormat(t *testing.T) {
	format, err := readWAVFormat(bytes.NewReader(extensibleWAV(t, 3, 32, make([]byte, 16))))
	require.NoError(t, err)
	assert.Equal(t, uint16(3), format)

	_, err = readWAVFormat(bytes.NewReader([]byte("RIFF\x04\x00\x00\x00AVI ")))
	assert.Error(t, err)
}
