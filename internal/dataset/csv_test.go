package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeTempCSV(t, "1.5,2.5\n3.0,4.0\n")

	series, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, []float64{1.5, 2.5}, series[0])
	assert.Equal(t, []float64{3.0, 4.0}, series[1])
}

func TestLoadCSVSkipsHeader(t *testing.T) {
	path := writeTempCSV(t, "u,theta\n1,2\n3,4\n")

	series, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, []float64{1, 2}, series[0])
}

func TestLoadCSVRejectsNonNumeric(t *testing.T) {
	path := writeTempCSV(t, "1,2\n3,oops\n")
	_, err := LoadCSV(path)
	require.Error(t, err)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}
