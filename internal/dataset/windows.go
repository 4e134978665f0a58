package dataset

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/fluxcast/pkg/errors"
	"github.com/inferloop/fluxcast/pkg/interfaces"
	"github.com/inferloop/fluxcast/pkg/models"
)

// SourceConfig contains configuration for a sliding-window batch source
type SourceConfig struct {
	InputSteps  int        `json:"input_steps"`
	OutputSteps int        `json:"output_steps"`
	BatchSize   int        `json:"batch_size"`
	Split       [3]float64 `json:"split"`       // train, valid, test fractions
	MaxSamples  int        `json:"max_samples"` // 0 means unlimited
	Seed        int64      `json:"seed"`
}

// WindowSource cuts a multivariate series (time x dimensions) into overlapping
// encoder/target window pairs and serves them in batches. The train split is
// reshuffled on every pass; validation and test order is stable within a run
// so repeated evaluation yields identical metrics.
type WindowSource struct {
	logger *logrus.Logger
	config *SourceConfig
	series [][]float64
	dims   int

	trainIdx []int
	validIdx []int
	testIdx  []int
	shuffle  *rand.Rand
}

// NewWindowSource validates the series against the window geometry and
// partitions the samples contiguously into train/valid/test.
func NewWindowSource(series [][]float64, config *SourceConfig, logger *logrus.Logger) (*WindowSource, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	if len(series) == 0 {
		return nil, errors.NewDataError(errors.CodeInsufficientData, "series is empty")
	}
	dims := len(series[0])
	for i, row := range series {
		if len(row) != dims {
			return nil, errors.NewDataError(errors.CodeInsufficientData,
				fmt.Sprintf("series row %d has %d features, row 0 has %d", i, len(row), dims))
		}
	}

	window := config.InputSteps + config.OutputSteps
	numSamples := len(series) - window + 1
	if numSamples < 1 {
		return nil, errors.NewDataError(errors.CodeInsufficientData,
			fmt.Sprintf("series of length %d cannot hold a %d-step window", len(series), window))
	}
	if config.MaxSamples > 0 && numSamples > config.MaxSamples {
		numSamples = config.MaxSamples
	}

	trainCount := int(float64(numSamples) * config.Split[0])
	validCount := int(float64(numSamples) * config.Split[1])
	testCount := numSamples - trainCount - validCount
	if config.Split[2] == 0 {
		testCount = 0
	}

	s := &WindowSource{
		logger:  logger,
		config:  config,
		series:  series,
		dims:    dims,
		shuffle: rand.New(rand.NewSource(config.Seed)),
	}
	for i := 0; i < trainCount; i++ {
		s.trainIdx = append(s.trainIdx, i)
	}
	for i := trainCount; i < trainCount+validCount; i++ {
		s.validIdx = append(s.validIdx, i)
	}
	for i := trainCount + validCount; i < trainCount+validCount+testCount; i++ {
		s.testIdx = append(s.testIdx, i)
	}

	logger.WithFields(logrus.Fields{
		"samples":       numSamples,
		"train_samples": len(s.trainIdx),
		"valid_samples": len(s.validIdx),
		"test_samples":  len(s.testIdx),
		"dimensions":    dims,
	}).Info("Window source ready")

	return s, nil
}

// TrainSampleCount returns the number of training samples.
func (s *WindowSource) TrainSampleCount() int { return len(s.trainIdx) }

// ValidSampleCount returns the number of validation samples.
func (s *WindowSource) ValidSampleCount() int { return len(s.validIdx) }

// TestSampleCount returns the number of test samples.
func (s *WindowSource) TestSampleCount() int { return len(s.testIdx) }

// BatchSize returns the constant batch size of the run.
func (s *WindowSource) BatchSize() int { return s.config.BatchSize }

// Dimensions returns the feature count per step.
func (s *WindowSource) Dimensions() int { return s.dims }

// TrainBatches starts a fresh shuffled pass over the training split.
func (s *WindowSource) TrainBatches() interfaces.BatchCursor {
	order := make([]int, len(s.trainIdx))
	copy(order, s.trainIdx)
	s.shuffle.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return &windowCursor{source: s, order: order}
}

// ValidBatches starts a fresh pass over the validation split in stable order.
func (s *WindowSource) ValidBatches() interfaces.BatchCursor {
	return &windowCursor{source: s, order: s.validIdx}
}

// TestBatches starts a fresh pass over the test split in stable order.
func (s *WindowSource) TestBatches() interfaces.BatchCursor {
	return &windowCursor{source: s, order: s.testIdx}
}

type windowCursor struct {
	source *WindowSource
	order  []int
	pos    int
}

// Next assembles the next batch. Remainder samples that do not fill a whole
// batch are dropped.
func (c *windowCursor) Next() (*models.Batch, bool) {
	batchSize := c.source.config.BatchSize
	if c.pos+batchSize > len(c.order) {
		return nil, false
	}
	indices := c.order[c.pos : c.pos+batchSize]
	c.pos += batchSize
	return c.source.assemble(indices), true
}

// assemble builds the (encoder input, decoder seed, target) windows for one
// batch of sample offsets. The decoder seed is the last encoder input step.
func (s *WindowSource) assemble(indices []int) *models.Batch {
	cfg := s.config
	batchSize := len(indices)
	encoderInput := models.NewWindow(cfg.InputSteps, batchSize, s.dims)
	decoderSeed := models.NewWindow(1, batchSize, s.dims)
	target := models.NewWindow(cfg.OutputSteps, batchSize, s.dims)

	for b, start := range indices {
		for t := 0; t < cfg.InputSteps; t++ {
			for d := 0; d < s.dims; d++ {
				encoderInput.Set(t, b, d, s.series[start+t][d])
			}
		}
		for d := 0; d < s.dims; d++ {
			decoderSeed.Set(0, b, d, s.series[start+cfg.InputSteps-1][d])
		}
		for t := 0; t < cfg.OutputSteps; t++ {
			for d := 0; d < s.dims; d++ {
				target.Set(t, b, d, s.series[start+cfg.InputSteps+t][d])
			}
		}
	}

	return &models.Batch{
		EncoderInput: encoderInput,
		DecoderSeed:  decoderSeed,
		Target:       target,
	}
}
