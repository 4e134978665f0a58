package forecast

import (
	"math"

	"github.com/inferloop/fluxcast/internal/tensor"
)

// AdamOptimizer implements the Adam optimization algorithm over one module's
// parameter set.
type AdamOptimizer struct {
	learningRate float64
	beta1        float64
	beta2        float64
	epsilon      float64
	t            int         // time step
	m            [][]float64 // first moment estimate per parameter
	v            [][]float64 // second moment estimate per parameter
}

// NewAdamOptimizer creates a new Adam optimizer with the usual moment decays.
func NewAdamOptimizer(learningRate float64) *AdamOptimizer {
	return &AdamOptimizer{
		learningRate: learningRate,
		beta1:        0.9,
		beta2:        0.999,
		epsilon:      1e-8,
	}
}

// Step applies one gradient update to every parameter. Gradients are assumed
// to have been populated by a preceding backward pass and are cleared after
// the update so the next batch starts from zero.
func (opt *AdamOptimizer) Step(params []*tensor.Mat) {
	opt.t++

	if len(opt.m) != len(params) {
		opt.initializeMoments(params)
	}

	beta1Correction := 1 - math.Pow(opt.beta1, float64(opt.t))
	beta2Correction := 1 - math.Pow(opt.beta2, float64(opt.t))

	for i, p := range params {
		w := p.W.RawMatrix().Data
		dw := p.DW.RawMatrix().Data
		m := opt.m[i]
		v := opt.v[i]

		for k := range w {
			g := dw[k]
			m[k] = opt.beta1*m[k] + (1-opt.beta1)*g
			v[k] = opt.beta2*v[k] + (1-opt.beta2)*g*g

			mHat := m[k] / beta1Correction
			vHat := v[k] / beta2Correction
			w[k] -= opt.learningRate * mHat / (math.Sqrt(vHat) + opt.epsilon)
		}
		p.ZeroGrad()
	}
}

func (opt *AdamOptimizer) initializeMoments(params []*tensor.Mat) {
	opt.m = make([][]float64, len(params))
	opt.v = make([][]float64, len(params))
	for i, p := range params {
		opt.m[i] = make([]float64, p.Size())
		opt.v[i] = make([]float64, p.Size())
	}
}

// LearningRate returns the current learning rate.
func (opt *AdamOptimizer) LearningRate() float64 {
	return opt.learningRate
}

// SetLearningRate sets the learning rate.
func (opt *AdamOptimizer) SetLearningRate(lr float64) {
	opt.learningRate = lr
}

// TimeStep returns the number of updates applied so far.
func (opt *AdamOptimizer) TimeStep() int {
	return opt.t
}
