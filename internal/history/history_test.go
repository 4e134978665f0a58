package history

import (
	"encoding/csv"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/fluxcast/pkg/models"
)

func TestCSVSinkAppend(t *testing.T) {
	sink, err := NewCSVSink(t.TempDir(), logrus.New())
	require.NoError(t, err)
	require.NotEmpty(t, sink.RunID())

	records := []models.EpochRecord{
		{Epoch: 0, Loss: 0.5, ValidationLoss: 0.6, LearningRate: 1e-3},
		{Epoch: 1, Loss: 0.4, ValidationLoss: 0.45, LearningRate: 1e-3},
	}
	for _, r := range records {
		require.NoError(t, sink.Append(r))
	}

	f, err := os.Open(sink.Path())
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header written exactly once

	assert.Equal(t, []string{"epoch", "loss", "val_loss", "learning_rate"}, rows[0])
	assert.Equal(t, "0", rows[1][0])
	assert.Equal(t, "0.5", rows[1][1])
	assert.Equal(t, "1", rows[2][0])
	assert.Equal(t, "0.45", rows[2][2])
}

func TestCSVSinkDistinctRuns(t *testing.T) {
	dir := t.TempDir()
	first, err := NewCSVSink(dir, logrus.New())
	require.NoError(t, err)
	second, err := NewCSVSink(dir, logrus.New())
	require.NoError(t, err)

	assert.NotEqual(t, first.Path(), second.Path())
}
