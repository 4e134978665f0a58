package dataset

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampSeries(length, dims int) [][]float64 {
	series := make([][]float64, length)
	for t := range series {
		series[t] = make([]float64, dims)
		for d := range series[t] {
			series[t][d] = float64(t) + float64(d)/10
		}
	}
	return series
}

func testSourceConfig() *SourceConfig {
	return &SourceConfig{
		InputSteps:  4,
		OutputSteps: 2,
		BatchSize:   2,
		Split:       [3]float64{0.5, 0.25, 0.25},
		Seed:        1,
	}
}

func TestWindowSourceSplitCounts(t *testing.T) {
	// 25 steps with a 6-step window yield 20 samples: 10/5/5.
	source, err := NewWindowSource(rampSeries(25, 3), testSourceConfig(), logrus.New())
	require.NoError(t, err)

	assert.Equal(t, 10, source.TrainSampleCount())
	assert.Equal(t, 5, source.ValidSampleCount())
	assert.Equal(t, 5, source.TestSampleCount())
	assert.Equal(t, 2, source.BatchSize())
	assert.Equal(t, 3, source.Dimensions())
}

func TestWindowSourceBatchGeometry(t *testing.T) {
	source, err := NewWindowSource(rampSeries(25, 3), testSourceConfig(), logrus.New())
	require.NoError(t, err)

	batch, ok := source.TrainBatches().Next()
	require.True(t, ok)

	assert.Equal(t, 4, batch.EncoderInput.Steps)
	assert.Equal(t, 2, batch.EncoderInput.Batch)
	assert.Equal(t, 3, batch.EncoderInput.Dims)
	assert.True(t, batch.EncoderInput.Conforms())

	assert.Equal(t, 1, batch.DecoderSeed.Steps)
	assert.Equal(t, 2, batch.Target.Steps)

	// The decoder seed is the last encoder input step.
	for b := 0; b < 2; b++ {
		for d := 0; d < 3; d++ {
			assert.Equal(t, batch.EncoderInput.At(3, b, d), batch.DecoderSeed.At(0, b, d))
		}
	}
}

func TestWindowSourceTargetFollowsInput(t *testing.T) {
	cfg := testSourceConfig()
	cfg.Split = [3]float64{1, 0, 0}
	series := rampSeries(25, 1)
	source, err := NewWindowSource(series, cfg, logrus.New())
	require.NoError(t, err)

	cursor := source.TrainBatches()
	for {
		batch, ok := cursor.Next()
		if !ok {
			break
		}
		for b := 0; b < batch.EncoderInput.Batch; b++ {
			last := batch.EncoderInput.At(cfg.InputSteps-1, b, 0)
			first := batch.Target.At(0, b, 0)
			assert.InDelta(t, last+1, first, 1e-12)
		}
	}
}

func TestWindowSourceRemainderDropped(t *testing.T) {
	cfg := testSourceConfig()
	cfg.BatchSize = 4
	cfg.Split = [3]float64{1, 0, 0}
	// 11 samples at batch size 4: two full batches, remainder dropped.
	source, err := NewWindowSource(rampSeries(16, 1), cfg, logrus.New())
	require.NoError(t, err)
	require.Equal(t, 11, source.TrainSampleCount())

	cursor := source.TrainBatches()
	count := 0
	for {
		_, ok := cursor.Next()
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 2, count)
}

func TestWindowSourceValidOrderStable(t *testing.T) {
	source, err := NewWindowSource(rampSeries(25, 2), testSourceConfig(), logrus.New())
	require.NoError(t, err)

	read := func() []float64 {
		var values []float64
		cursor := source.ValidBatches()
		for {
			batch, ok := cursor.Next()
			if !ok {
				break
			}
			values = append(values, batch.EncoderInput.At(0, 0, 0), batch.EncoderInput.At(0, 1, 0))
		}
		return values
	}

	first := read()
	second := read()
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestWindowSourceTrainRestartable(t *testing.T) {
	source, err := NewWindowSource(rampSeries(25, 2), testSourceConfig(), logrus.New())
	require.NoError(t, err)

	countBatches := func() int {
		n := 0
		cursor := source.TrainBatches()
		for {
			_, ok := cursor.Next()
			if !ok {
				break
			}
			n++
		}
		return n
	}

	assert.Equal(t, 5, countBatches())
	assert.Equal(t, 5, countBatches())
}

func TestWindowSourceMaxSamples(t *testing.T) {
	cfg := testSourceConfig()
	cfg.MaxSamples = 8
	cfg.Split = [3]float64{1, 0, 0}
	source, err := NewWindowSource(rampSeries(100, 1), cfg, logrus.New())
	require.NoError(t, err)
	assert.Equal(t, 8, source.TrainSampleCount())
}

func TestWindowSourceTooShort(t *testing.T) {
	_, err := NewWindowSource(rampSeries(5, 1), testSourceConfig(), logrus.New())
	require.Error(t, err)
}

func TestWindowSourceRaggedRows(t *testing.T) {
	series := rampSeries(25, 2)
	series[3] = []float64{1}
	_, err := NewWindowSource(series, testSourceConfig(), logrus.New())
	require.Error(t, err)
}
