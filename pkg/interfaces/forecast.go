package interfaces

import (
	"github.com/inferloop/fluxcast/pkg/models"
)

// BatchCursor walks one split of a batch source. Next returns the following
// batch until the split is exhausted, then reports false.
type BatchCursor interface {
	Next() (*models.Batch, bool)
}

// BatchSource produces training, validation and test batches for a run.
// The three cursors are restartable: every call starts a fresh pass over the
// split. Training order may be shuffled between passes; validation and test
// order must be stable within a run so evaluation metrics are reproducible.
type BatchSource interface {
	TrainSampleCount() int
	ValidSampleCount() int
	TestSampleCount() int
	BatchSize() int

	TrainBatches() BatchCursor
	ValidBatches() BatchCursor
	TestBatches() BatchCursor
}

// HistorySink receives one EpochRecord per completed epoch, append-only.
type HistorySink interface {
	Append(record models.EpochRecord) error
}

// StoppingPolicy is consulted once per epoch with the running validation-loss
// history (oldest first). Returning true terminates the training loop before
// the epoch budget is exhausted.
type StoppingPolicy interface {
	ShouldStop(valLosses []float64) bool
}
