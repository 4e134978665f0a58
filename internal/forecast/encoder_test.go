package forecast

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/fluxcast/internal/tensor"
	"github.com/inferloop/fluxcast/pkg/errors"
	"github.com/inferloop/fluxcast/pkg/models"
)

func randomWindow(steps, batch, dims int, src *rand.Rand) *models.Window {
	w := models.NewWindow(steps, batch, dims)
	for i := range w.Data {
		w.Data[i] = src.NormFloat64()
	}
	return w
}

func TestEncoderHiddenStateShape(t *testing.T) {
	const (
		batchSize = 4
		dims      = 3
		latentDim = 8
	)

	// Final hidden state geometry is independent of the window length.
	for _, inputSteps := range []int{1, 5, 17} {
		src := rand.New(rand.NewSource(1))
		enc := NewEncoder(inputSteps, batchSize, dims, latentDim, src)

		g := tensor.NewGraph(false)
		window := randomWindow(inputSteps, batchSize, dims, src)
		state := tensor.NewRandMat(latentDim, batchSize, 1.0, src)

		outputs, h, err := enc.Forward(g, window, state)
		require.NoError(t, err)

		r, c := h.Dims()
		assert.Equal(t, latentDim, r)
		assert.Equal(t, batchSize, c)
		assert.Len(t, outputs, inputSteps)
	}
}

func TestEncoderShapeMismatch(t *testing.T) {
	src := rand.New(rand.NewSource(1))
	enc := NewEncoder(5, 2, 3, 4, src)
	g := tensor.NewGraph(false)
	state := tensor.NewRandMat(4, 2, 1.0, src)

	// Wrong step count
	window := randomWindow(6, 2, 3, src)
	_, _, err := enc.Forward(g, window, state)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.NewShapeError(errors.CodeShapeMismatch, ""))

	// Backing data does not match declared geometry
	window = randomWindow(5, 2, 3, src)
	window.Data = window.Data[:len(window.Data)-1]
	_, _, err = enc.Forward(g, window, state)
	require.Error(t, err)

	// Wrong initial state shape
	window = randomWindow(5, 2, 3, src)
	badState := tensor.NewRandMat(3, 2, 1.0, src)
	_, _, err = enc.Forward(g, window, badState)
	require.Error(t, err)
}

func TestEncoderDeterministicGivenState(t *testing.T) {
	src := rand.New(rand.NewSource(9))
	enc := NewEncoder(4, 2, 3, 6, src)
	window := randomWindow(4, 2, 3, src)
	state := tensor.NewRandMat(6, 2, 1.0, src)

	_, h1, err := enc.Forward(tensor.NewGraph(false), window, state.Clone())
	require.NoError(t, err)
	_, h2, err := enc.Forward(tensor.NewGraph(false), window, state.Clone())
	require.NoError(t, err)

	assert.Equal(t, h1.Raw(), h2.Raw())
}
