package forecast

import (
	"math"
)

// PlateauScheduler reduces an optimizer's learning rate by a fixed factor when
// the observed metric fails to improve for patience consecutive epochs. The
// rate never drops below minLR. Encoder and decoder each get their own
// scheduler, so their rates may diverge over time even though they start
// identical.
type PlateauScheduler struct {
	optimizer *AdamOptimizer
	factor    float64
	patience  int
	minLR     float64

	best   float64
	numBad int
}

// NewPlateauScheduler wraps an optimizer with reduce-on-plateau control.
func NewPlateauScheduler(optimizer *AdamOptimizer, factor float64, patience int, minLR float64) *PlateauScheduler {
	return &PlateauScheduler{
		optimizer: optimizer,
		factor:    factor,
		patience:  patience,
		minLR:     minLR,
		best:      math.Inf(1),
	}
}

// Step feeds one epoch's metric to the scheduler. An improvement resets the
// patience counter; once more than patience epochs pass without improvement
// the learning rate is multiplied by the factor, floored at minLR.
func (s *PlateauScheduler) Step(metric float64) {
	if metric < s.best {
		s.best = metric
		s.numBad = 0
		return
	}
	s.numBad++
	if s.numBad > s.patience {
		lr := math.Max(s.optimizer.LearningRate()*s.factor, s.minLR)
		s.optimizer.SetLearningRate(lr)
		s.numBad = 0
	}
}

// LearningRate returns the wrapped optimizer's current rate.
func (s *PlateauScheduler) LearningRate() float64 {
	return s.optimizer.LearningRate()
}
