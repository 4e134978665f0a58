package commands

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainFlagsResolveWithBothCommandsBuilt(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// Both commands exist side by side as on the real root command; the
	// train flags must still back the shared config keys when train runs.
	train := NewTrainCmd()
	_ = NewPredictCmd()

	require.NoError(t, train.Flags().Set("output-steps", "50"))
	require.NoError(t, train.Flags().Set("input-steps", "25"))
	require.NoError(t, train.PreRunE(train, nil))

	cfg, err := resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.OutputSteps)
	assert.Equal(t, 25, cfg.InputSteps)
}

func TestTrainFlagDefaultsResolve(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	train := NewTrainCmd()
	_ = NewPredictCmd()

	require.NoError(t, train.PreRunE(train, nil))

	cfg, err := resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.OutputSteps)
	assert.Equal(t, 32, cfg.BatchSize)
}

func TestPredictFlagsResolveWithBothCommandsBuilt(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_ = NewTrainCmd()
	predict := NewPredictCmd()

	require.NoError(t, predict.Flags().Set("output-steps", "300"))
	require.NoError(t, predict.PreRunE(predict, nil))

	cfg, err := resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.OutputSteps)
}
