package planar

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func TestUnplanarize(t *testing.T) {
	input := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	output := make([]byte, len(input))
	require.NoError(t, Unplanarize(2, output, input))
	require.Equal(t, []byte{1, 5, 2, 6, 3, 7, 4, 8}, output, spew.Sdump(output))

	back := make([]byte, len(input))
	require.NoError(t, Planarize(2, back, output))
	require.Equal(t, input, back)
}

func TestSplitJoin(t *testing.T) {
	interleaved := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}
	planes, err := Split(2, interleaved)
	require.NoError(t, err)
	require.Equal(t, [][]float32{{0.1, 0.2, 0.3}, {-0.1, -0.2, -0.3}}, planes, spew.Sdump(planes))

	joined, err := Join(planes)
	require.NoError(t, err)
	require.Equal(t, interleaved, joined)

	_, err = Join([][]float32{{1, 2}, {3}})
	require.Error(t, err)
}

func TestPlanarizeErrors(t *testing.T) {
	require.Error(t, Planarize(2, make([]int, 3), make([]int, 3)))
	require.Error(t, Planarize(2, make([]int, 2), make([]int, 4)))
	require.Error(t, Planarize(0, make([]int, 4), make([]int, 4)))
}
