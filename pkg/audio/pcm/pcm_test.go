package pcm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS16LEToFloat32(t *testing.T) {
	b := make([]byte, 6)
	binary.LittleEndian.PutUint16(b[0:], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(b[2:], 0)
	minInt16 := int16(-32768)
	binary.LittleEndian.PutUint16(b[4:], uint16(minInt16))

	samples, err := S16LEToFloat32(b)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0, -1}, samples)

	_, err = S16LEToFloat32(b[:5])
	assert.Error(t, err)
}

func TestIntFloatConversion(t *testing.T) {
	assert.Equal(t, 8388607, FloatToInt(1.0, 24))
	assert.Equal(t, -8388608, FloatToInt(-1.0, 24))
	assert.Equal(t, 8388607, FloatToInt(1.5, 24))
	assert.Equal(t, -8388608, FloatToInt(-1.5, 24))
	assert.Equal(t, 0, FloatToInt(0, 24))
	assert.Equal(t, 32767, FloatToInt(2.0, 16))
	assert.Equal(t, 128, FloatToInt(0, 8))
	assert.Equal(t, 255, FloatToInt(1.0, 8))

	assert.Equal(t, 0.5, IntToFloat(4194304, 24))
	assert.Equal(t, -1.0, IntToFloat(-32768, 16))
	assert.Equal(t, 0.0, IntToFloat(128, 8))
	assert.Equal(t, -1.0, IntToFloat(0, 8))

	for _, v := range []float64{-0.9, -0.3333, 0.001, 0.7} {
		assert.InDelta(t, v, IntToFloat(FloatToInt(v, 24), 24), 1.0/8388608)
	}
}
