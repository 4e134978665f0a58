package forecast

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/fluxcast/internal/tensor"
)

func TestDecoderOutputShape(t *testing.T) {
	const (
		batchSize = 3
		dims      = 2
		latentDim = 5
	)

	for _, outputSteps := range []int{1, 4, 11} {
		src := rand.New(rand.NewSource(2))
		dec := NewDecoder(outputSteps, batchSize, dims, latentDim, src)

		g := tensor.NewGraph(false)
		first := tensor.NewRandMat(dims, batchSize, 1.0, src)
		state := tensor.NewRandMat(latentDim, batchSize, 1.0, src)

		preds, h, err := dec.Forward(g, first, state)
		require.NoError(t, err)
		require.Len(t, preds, outputSteps)

		for _, p := range preds {
			r, c := p.Dims()
			assert.Equal(t, dims, r)
			assert.Equal(t, batchSize, c)
		}
		r, c := h.Dims()
		assert.Equal(t, latentDim, r)
		assert.Equal(t, batchSize, c)
	}
}

func TestDecoderSingleStepBoundary(t *testing.T) {
	src := rand.New(rand.NewSource(3))
	dec := NewDecoder(1, 2, 3, 4, src)

	g := tensor.NewGraph(false)
	first := tensor.NewRandMat(3, 2, 1.0, src)
	state := tensor.NewRandMat(4, 2, 1.0, src)

	preds, _, err := dec.Forward(g, first, state)
	require.NoError(t, err)
	require.Len(t, preds, 1)
}

func TestDecoderAutoregression(t *testing.T) {
	// Step t+1 must depend on step t's projection: perturbing the projection
	// bias shifts every step, and the steps are not all identical.
	src := rand.New(rand.NewSource(4))
	dec := NewDecoder(3, 1, 2, 4, src)

	first := tensor.NewRandMat(2, 1, 1.0, src)
	state := tensor.NewRandMat(4, 1, 1.0, src)

	preds, _, err := dec.Forward(tensor.NewGraph(false), first.Clone(), state.Clone())
	require.NoError(t, err)

	dec.Bo.Set(0, 0, dec.Bo.At(0, 0)+0.5)
	shifted, _, err := dec.Forward(tensor.NewGraph(false), first.Clone(), state.Clone())
	require.NoError(t, err)

	for i := range preds {
		assert.NotEqual(t, preds[i].At(0, 0), shifted[i].At(0, 0))
	}
}

func TestDecoderShapeMismatch(t *testing.T) {
	src := rand.New(rand.NewSource(5))
	dec := NewDecoder(2, 2, 3, 4, src)
	g := tensor.NewGraph(false)

	badFirst := tensor.NewRandMat(4, 2, 1.0, src)
	state := tensor.NewRandMat(4, 2, 1.0, src)
	_, _, err := dec.Forward(g, badFirst, state)
	require.Error(t, err)

	first := tensor.NewRandMat(3, 2, 1.0, src)
	badState := tensor.NewRandMat(5, 2, 1.0, src)
	_, _, err = dec.Forward(g, first, badState)
	require.Error(t, err)
}
