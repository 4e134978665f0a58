package forecast

// PatienceStopping stops a run once the validation loss has not improved by
// at least minDelta for patience consecutive epochs.
type PatienceStopping struct {
	patience int
	minDelta float64
}

// NewPatienceStopping creates the default stopping policy.
func NewPatienceStopping(patience int, minDelta float64) *PatienceStopping {
	return &PatienceStopping{patience: patience, minDelta: minDelta}
}

// ShouldStop inspects the validation-loss history, oldest first.
func (p *PatienceStopping) ShouldStop(valLosses []float64) bool {
	if len(valLosses) <= p.patience {
		return false
	}
	best := valLosses[0]
	bad := 0
	for _, loss := range valLosses[1:] {
		if loss < best-p.minDelta {
			best = loss
			bad = 0
		} else {
			bad++
		}
	}
	return bad >= p.patience
}

// NeverStop is a StoppingPolicy that always lets the run exhaust its epoch
// budget.
type NeverStop struct{}

// ShouldStop always reports false.
func (NeverStop) ShouldStop([]float64) bool {
	return false
}
