package models

import (
	"time"
)

// Window is a fixed-length ordered sequence of multivariate feature vectors laid
// out as (steps, batch, dimensions). Data is stored step-major: the value for
// step t, batch element b and feature d sits at t*Batch*Dims + b*Dims + d.
type Window struct {
	Steps int       `json:"steps"`
	Batch int       `json:"batch"`
	Dims  int       `json:"dims"`
	Data  []float64 `json:"data"`
}

// NewWindow allocates a zeroed window of the given geometry.
func NewWindow(steps, batch, dims int) *Window {
	return &Window{
		Steps: steps,
		Batch: batch,
		Dims:  dims,
		Data:  make([]float64, steps*batch*dims),
	}
}

// At returns the feature value at (step, batch, dim).
func (w *Window) At(step, batch, dim int) float64 {
	return w.Data[step*w.Batch*w.Dims+batch*w.Dims+dim]
}

// Set stores a feature value at (step, batch, dim).
func (w *Window) Set(step, batch, dim int, v float64) {
	w.Data[step*w.Batch*w.Dims+batch*w.Dims+dim] = v
}

// Conforms reports whether the backing slice matches the declared geometry.
func (w *Window) Conforms() bool {
	return w != nil && len(w.Data) == w.Steps*w.Batch*w.Dims
}

// Batch pairs an encoder input window and a decoder seed with the target
// output window. All three share the same batch size.
type Batch struct {
	EncoderInput *Window `json:"encoder_input"`
	DecoderSeed  *Window `json:"decoder_seed"`
	Target       *Window `json:"target"`
}

// EpochRecord captures the metrics of one completed training epoch.
// Records are append-only; one is emitted per epoch.
type EpochRecord struct {
	Epoch          int     `json:"epoch"`
	Loss           float64 `json:"loss"`
	ValidationLoss float64 `json:"val_loss"`
	LearningRate   float64 `json:"learning_rate"`
}

// FitReport summarizes a completed training run.
type FitReport struct {
	BestEpoch          int           `json:"best_epoch"`
	BestLoss           float64       `json:"best_loss"`
	BestValidationLoss float64       `json:"best_val_loss"`
	EpochsCompleted    int           `json:"epochs_completed"`
	Stopped            bool          `json:"stopped_early"`
	Duration           time.Duration `json:"duration"`
}
