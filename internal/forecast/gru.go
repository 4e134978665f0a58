package forecast

import (
	"math"
	"math/rand"

	"github.com/inferloop/fluxcast/internal/tensor"
)

// GRUCell is a single-layer gated recurrent unit shared by the encoder and the
// decoder. Weights act on column-batched inputs: x is (inputSize x batch) and
// the hidden state is (hiddenSize x batch).
type GRUCell struct {
	inputSize  int
	hiddenSize int

	// Reset gate
	Wr *tensor.Mat
	Ur *tensor.Mat
	Br *tensor.Mat

	// Update gate
	Wz *tensor.Mat
	Uz *tensor.Mat
	Bz *tensor.Mat

	// Candidate state
	Wh *tensor.Mat
	Uh *tensor.Mat
	Bh *tensor.Mat
}

// NewGRUCell initializes a cell with Xavier-scaled weights.
func NewGRUCell(inputSize, hiddenSize int, src *rand.Rand) *GRUCell {
	scale := math.Sqrt(2.0 / float64(inputSize+hiddenSize))
	return &GRUCell{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		Wr:         tensor.NewRandMat(hiddenSize, inputSize, scale, src),
		Ur:         tensor.NewRandMat(hiddenSize, hiddenSize, scale, src),
		Br:         tensor.NewMat(hiddenSize, 1),
		Wz:         tensor.NewRandMat(hiddenSize, inputSize, scale, src),
		Uz:         tensor.NewRandMat(hiddenSize, hiddenSize, scale, src),
		Bz:         tensor.NewMat(hiddenSize, 1),
		Wh:         tensor.NewRandMat(hiddenSize, inputSize, scale, src),
		Uh:         tensor.NewRandMat(hiddenSize, hiddenSize, scale, src),
		Bh:         tensor.NewMat(hiddenSize, 1),
	}
}

// Step advances the recurrence by one time step:
//
//	r_t = sigmoid(Wr*x_t + Ur*h_{t-1} + br)
//	z_t = sigmoid(Wz*x_t + Uz*h_{t-1} + bz)
//	h~_t = tanh(Wh*x_t + Uh*(r_t . h_{t-1}) + bh)
//	h_t = (1 - z_t) . h_{t-1} + z_t . h~_t
func (c *GRUCell) Step(g *tensor.Graph, x, h *tensor.Mat) *tensor.Mat {
	r := g.Sigmoid(g.AddBias(g.Add(g.Mul(c.Wr, x), g.Mul(c.Ur, h)), c.Br))
	z := g.Sigmoid(g.AddBias(g.Add(g.Mul(c.Wz, x), g.Mul(c.Uz, h)), c.Bz))

	resetHidden := g.ElemMul(r, h)
	cand := g.Tanh(g.AddBias(g.Add(g.Mul(c.Wh, x), g.Mul(c.Uh, resetHidden)), c.Bh))

	keep := g.ElemMul(g.OneMinus(z), h)
	update := g.ElemMul(z, cand)
	return g.Add(keep, update)
}

// Parameters returns the trainable weights in a fixed order.
func (c *GRUCell) Parameters() []*tensor.Mat {
	return []*tensor.Mat{c.Wr, c.Ur, c.Br, c.Wz, c.Uz, c.Bz, c.Wh, c.Uh, c.Bh}
}

// HiddenSize returns the size of the hidden state vector.
func (c *GRUCell) HiddenSize() int {
	return c.hiddenSize
}
