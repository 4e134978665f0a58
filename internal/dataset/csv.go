package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/inferloop/fluxcast/pkg/errors"
)

// LoadCSV reads a multivariate series from a CSV file. Every row is one time
// step, every column one feature. A non-numeric first row is treated as a
// header and skipped.
func LoadCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeData, errors.CodeInsufficientData,
			fmt.Sprintf("failed to open series file %s", path))
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeData, errors.CodeInsufficientData,
			fmt.Sprintf("failed to parse series file %s", path))
	}
	if len(records) == 0 {
		return nil, errors.NewDataError(errors.CodeInsufficientData,
			fmt.Sprintf("series file %s is empty", path))
	}

	start := 0
	if _, err := strconv.ParseFloat(records[0][0], 64); err != nil {
		start = 1
	}

	series := make([][]float64, 0, len(records)-start)
	for i := start; i < len(records); i++ {
		row := make([]float64, len(records[i]))
		for j, field := range records[i] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.NewDataError(errors.CodeInsufficientData,
					fmt.Sprintf("series file %s row %d column %d is not numeric", path, i+1, j+1))
			}
			row[j] = v
		}
		series = append(series, row)
	}
	return series, nil
}
