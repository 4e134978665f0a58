package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inferloop/fluxcast/internal/tensor"
)

func TestMSELossForward(t *testing.T) {
	pred := tensor.NewMat(2, 2)
	target := tensor.NewMat(2, 2)
	pred.Set(0, 0, 1)
	pred.Set(1, 1, -1)

	loss := MSELoss{}.Forward(pred, target)
	assert.InDelta(t, 0.5, loss, 1e-12)
}

func TestMSELossBackwardSeedsGradient(t *testing.T) {
	pred := tensor.NewMat(1, 2)
	target := tensor.NewMat(1, 2)
	pred.Set(0, 0, 2)
	target.Set(0, 1, 1)

	MSELoss{}.Backward(pred, target)

	// dL/dp = 2(p-t)/n with n = 2
	assert.InDelta(t, 2.0, pred.DW.At(0, 0), 1e-12)
	assert.InDelta(t, -1.0, pred.DW.At(0, 1), 1e-12)

	// Gradients accumulate across calls
	MSELoss{}.Backward(pred, target)
	assert.InDelta(t, 4.0, pred.DW.At(0, 0), 1e-12)
}

func TestMSELossZeroOnExactMatch(t *testing.T) {
	pred := tensor.NewMat(3, 3)
	target := tensor.NewMat(3, 3)
	assert.Equal(t, 0.0, MSELoss{}.Forward(pred, target))
}
