package forecast

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/inferloop/fluxcast/internal/tensor"
	"github.com/inferloop/fluxcast/pkg/errors"
)

// Decoder autoregressively emits output_steps predictions from a seed input
// and the encoder's final hidden state. Each step feeds the recurrent cell,
// projects the hidden state back to dimensions with a linear layer and uses
// the projection as the next input. There is no teacher forcing: decoding is
// pure autoregression on the model's own predictions.
type Decoder struct {
	outputSteps int
	batchSize   int
	dimensions  int
	latentDim   int
	cell        *GRUCell

	// Linear projection from latent space back to feature space
	Wo *tensor.Mat
	Bo *tensor.Mat
}

// NewDecoder builds a decoder for the given horizon.
func NewDecoder(outputSteps, batchSize, dimensions, latentDim int, src *rand.Rand) *Decoder {
	scale := math.Sqrt(2.0 / float64(latentDim+dimensions))
	return &Decoder{
		outputSteps: outputSteps,
		batchSize:   batchSize,
		dimensions:  dimensions,
		latentDim:   latentDim,
		cell:        NewGRUCell(dimensions, latentDim, src),
		Wo:          tensor.NewRandMat(dimensions, latentDim, scale, src),
		Bo:          tensor.NewMat(dimensions, 1),
	}
}

// Forward produces the prediction sequence. first is the seed input of shape
// (dimensions x batch), state the initial hidden state of shape
// (latent_dim x batch). It returns one (dimensions x batch) prediction per
// output step together with the final hidden state; the final state is unused
// downstream but returned for interface symmetry with the encoder.
func (d *Decoder) Forward(g *tensor.Graph, first, state *tensor.Mat) ([]*tensor.Mat, *tensor.Mat, error) {
	if r, c := first.Dims(); r != d.dimensions || c != d.batchSize {
		return nil, nil, errors.NewShapeError(errors.CodeShapeMismatch,
			fmt.Sprintf("decoder seed is (%d, %d), want (%d, %d)", r, c, d.dimensions, d.batchSize))
	}
	if r, c := state.Dims(); r != d.latentDim || c != d.batchSize {
		return nil, nil, errors.NewShapeError(errors.CodeShapeMismatch,
			fmt.Sprintf("decoder initial state is (%d, %d), want (%d, %d)", r, c, d.latentDim, d.batchSize))
	}

	predictions := make([]*tensor.Mat, 0, d.outputSteps)
	next := first
	h := state
	for t := 0; t < d.outputSteps; t++ {
		h = d.cell.Step(g, next, h)
		out := g.AddBias(g.Mul(d.Wo, h), d.Bo)
		predictions = append(predictions, out)
		next = out
	}
	return predictions, h, nil
}

// Parameters returns the trainable weights.
func (d *Decoder) Parameters() []*tensor.Mat {
	return append(d.cell.Parameters(), d.Wo, d.Bo)
}
