package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatienceStoppingWaits(t *testing.T) {
	policy := NewPatienceStopping(3, 0)

	assert.False(t, policy.ShouldStop([]float64{0.5}))
	assert.False(t, policy.ShouldStop([]float64{0.5, 0.4}))
	assert.False(t, policy.ShouldStop([]float64{0.5, 0.4, 0.41, 0.42}))
	assert.True(t, policy.ShouldStop([]float64{0.5, 0.4, 0.41, 0.42, 0.43}))
}

func TestPatienceStoppingResetOnImprovement(t *testing.T) {
	policy := NewPatienceStopping(2, 0)

	// An improvement inside the window resets the counter.
	assert.False(t, policy.ShouldStop([]float64{0.5, 0.6, 0.4, 0.41}))
	assert.True(t, policy.ShouldStop([]float64{0.5, 0.6, 0.4, 0.41, 0.42}))
}

func TestPatienceStoppingMinDelta(t *testing.T) {
	policy := NewPatienceStopping(2, 0.05)

	// Improvements below min delta do not count.
	assert.True(t, policy.ShouldStop([]float64{0.5, 0.49, 0.48}))
}

func TestNeverStop(t *testing.T) {
	assert.False(t, NeverStop{}.ShouldStop([]float64{1, 2, 3}))
}
