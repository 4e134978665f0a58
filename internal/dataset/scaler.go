package dataset

import (
	"math"

	"github.com/inferloop/fluxcast/pkg/errors"
)

// Scaler normalizes a multivariate series feature by feature. Supported
// methods are "zscore" and "minmax".
type Scaler struct {
	method string
	fitted bool

	mean []float64
	std  []float64
	min  []float64
	max  []float64
}

// NewScaler creates a scaler. An unknown method falls back to zscore.
func NewScaler(method string) *Scaler {
	if method != "minmax" {
		method = "zscore"
	}
	return &Scaler{method: method}
}

// Fit estimates the per-feature statistics from the series.
func (s *Scaler) Fit(series [][]float64) error {
	if len(series) == 0 {
		return errors.NewDataError(errors.CodeInsufficientData, "cannot fit scaler on empty series")
	}
	dims := len(series[0])
	s.mean = make([]float64, dims)
	s.std = make([]float64, dims)
	s.min = make([]float64, dims)
	s.max = make([]float64, dims)
	copy(s.min, series[0])
	copy(s.max, series[0])

	for _, row := range series {
		for d, v := range row {
			s.mean[d] += v
			if v < s.min[d] {
				s.min[d] = v
			}
			if v > s.max[d] {
				s.max[d] = v
			}
		}
	}
	n := float64(len(series))
	for d := range s.mean {
		s.mean[d] /= n
	}
	for _, row := range series {
		for d, v := range row {
			diff := v - s.mean[d]
			s.std[d] += diff * diff
		}
	}
	for d := range s.std {
		s.std[d] = math.Sqrt(s.std[d] / n)
	}

	s.fitted = true
	return nil
}

// Transform returns a scaled copy of the series.
func (s *Scaler) Transform(series [][]float64) [][]float64 {
	if !s.fitted {
		return series
	}
	out := make([][]float64, len(series))
	for i, row := range series {
		out[i] = make([]float64, len(row))
		for d, v := range row {
			switch s.method {
			case "minmax":
				scale := s.max[d] - s.min[d]
				if scale == 0 {
					scale = 1
				}
				out[i][d] = (v - s.min[d]) / scale
			default:
				if s.std[d] == 0 {
					out[i][d] = v
				} else {
					out[i][d] = (v - s.mean[d]) / s.std[d]
				}
			}
		}
	}
	return out
}

// InverseTransform maps scaled values back to the original range.
func (s *Scaler) InverseTransform(series [][]float64) [][]float64 {
	if !s.fitted {
		return series
	}
	out := make([][]float64, len(series))
	for i, row := range series {
		out[i] = make([]float64, len(row))
		for d, v := range row {
			switch s.method {
			case "minmax":
				out[i][d] = v*(s.max[d]-s.min[d]) + s.min[d]
			default:
				out[i][d] = v*s.std[d] + s.mean[d]
			}
		}
	}
	return out
}
