package forecast

import (
	"fmt"
	"math/rand"

	"github.com/inferloop/fluxcast/internal/tensor"
	"github.com/inferloop/fluxcast/pkg/errors"
	"github.com/inferloop/fluxcast/pkg/models"
)

// Encoder consumes an input window of shape (input_steps, batch, dimensions)
// and summarizes it into a final hidden state of shape (latent_dim, batch).
type Encoder struct {
	inputSteps int
	batchSize  int
	dimensions int
	latentDim  int
	cell       *GRUCell
}

// NewEncoder builds an encoder for the given window geometry.
func NewEncoder(inputSteps, batchSize, dimensions, latentDim int, src *rand.Rand) *Encoder {
	return &Encoder{
		inputSteps: inputSteps,
		batchSize:  batchSize,
		dimensions: dimensions,
		latentDim:  latentDim,
		cell:       NewGRUCell(dimensions, latentDim, src),
	}
}

// Forward runs the window through the recurrence starting from state. It
// returns the per-step hidden states and the final hidden state. The window
// must reshape cleanly into (input_steps, batch, dimensions).
func (e *Encoder) Forward(g *tensor.Graph, window *models.Window, state *tensor.Mat) ([]*tensor.Mat, *tensor.Mat, error) {
	if window == nil || !window.Conforms() ||
		window.Steps != e.inputSteps || window.Batch != e.batchSize || window.Dims != e.dimensions {
		return nil, nil, errors.NewShapeError(errors.CodeShapeMismatch,
			fmt.Sprintf("encoder input does not reshape to (%d, %d, %d)", e.inputSteps, e.batchSize, e.dimensions))
	}
	if r, c := state.Dims(); r != e.latentDim || c != e.batchSize {
		return nil, nil, errors.NewShapeError(errors.CodeShapeMismatch,
			fmt.Sprintf("encoder initial state is (%d, %d), want (%d, %d)", r, c, e.latentDim, e.batchSize))
	}

	outputs := make([]*tensor.Mat, 0, e.inputSteps)
	h := state
	for t := 0; t < e.inputSteps; t++ {
		h = e.cell.Step(g, stepInput(window, t), h)
		outputs = append(outputs, h)
	}
	return outputs, h, nil
}

// Parameters returns the trainable weights.
func (e *Encoder) Parameters() []*tensor.Mat {
	return e.cell.Parameters()
}

// stepInput lifts step t of a window into a (dims x batch) matrix.
func stepInput(w *models.Window, t int) *tensor.Mat {
	x := tensor.NewMat(w.Dims, w.Batch)
	for b := 0; b < w.Batch; b++ {
		for d := 0; d < w.Dims; d++ {
			x.Set(d, b, w.At(t, b, d))
		}
	}
	return x
}
