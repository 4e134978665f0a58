package forecast

import (
	"github.com/inferloop/fluxcast/internal/tensor"
)

// StepLoss compares one predicted step to its target, both shaped
// (dimensions x batch), and reduces it to a scalar. Backward seeds the
// prediction's gradient so the tape can propagate it through the model.
type StepLoss interface {
	Forward(pred, target *tensor.Mat) float64
	Backward(pred, target *tensor.Mat)
}

// MSELoss is mean squared error over all elements of a step.
type MSELoss struct{}

// Forward returns sum((p-t)^2) / n.
func (MSELoss) Forward(pred, target *tensor.Mat) float64 {
	r, c := pred.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d := pred.At(i, j) - target.At(i, j)
			sum += d * d
		}
	}
	return sum / float64(r*c)
}

// Backward accumulates dL/dpred = 2(p-t)/n into the prediction gradient.
func (MSELoss) Backward(pred, target *tensor.Mat) {
	r, c := pred.Dims()
	n := float64(r * c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			grad := 2 * (pred.At(i, j) - target.At(i, j)) / n
			pred.DW.Set(i, j, pred.DW.At(i, j)+grad)
		}
	}
}
