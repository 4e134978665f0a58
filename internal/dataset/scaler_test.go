package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalerZScore(t *testing.T) {
	scaler := NewScaler("zscore")
	series := [][]float64{{1, 10}, {2, 20}, {3, 30}}
	require.NoError(t, scaler.Fit(series))

	scaled := scaler.Transform(series)

	// Each feature has zero mean after scaling.
	for d := 0; d < 2; d++ {
		sum := 0.0
		for _, row := range scaled {
			sum += row[d]
		}
		assert.InDelta(t, 0.0, sum, 1e-12)
	}

	restored := scaler.InverseTransform(scaled)
	for i, row := range series {
		for d, v := range row {
			assert.InDelta(t, v, restored[i][d], 1e-12)
		}
	}
}

func TestScalerMinMax(t *testing.T) {
	scaler := NewScaler("minmax")
	series := [][]float64{{0}, {5}, {10}}
	require.NoError(t, scaler.Fit(series))

	scaled := scaler.Transform(series)
	assert.Equal(t, 0.0, scaled[0][0])
	assert.Equal(t, 0.5, scaled[1][0])
	assert.Equal(t, 1.0, scaled[2][0])
}

func TestScalerConstantFeature(t *testing.T) {
	scaler := NewScaler("zscore")
	series := [][]float64{{7}, {7}, {7}}
	require.NoError(t, scaler.Fit(series))

	scaled := scaler.Transform(series)
	assert.Equal(t, 7.0, scaled[0][0])
}

func TestScalerEmptySeries(t *testing.T) {
	scaler := NewScaler("zscore")
	require.Error(t, scaler.Fit(nil))
}

func TestScalerUnfittedPassthrough(t *testing.T) {
	scaler := NewScaler("zscore")
	series := [][]float64{{1, 2}}
	assert.Equal(t, series, scaler.Transform(series))
}
