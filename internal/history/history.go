package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/inferloop/fluxcast/pkg/errors"
	"github.com/inferloop/fluxcast/pkg/models"
)

// CSVSink appends one row per epoch to a run-scoped CSV file under the
// history directory. Files are never rewritten; every run gets its own file
// named by a fresh run id.
type CSVSink struct {
	logger *logrus.Logger
	path   string
	runID  string
	wrote  bool
}

// NewCSVSink creates the history directory and picks a file name for the run.
func NewCSVSink(dir string, logger *logrus.Logger) (*CSVSink, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeData, errors.CodeHistoryWrite,
			fmt.Sprintf("failed to create history directory %s", dir))
	}
	runID := uuid.New().String()
	return &CSVSink{
		logger: logger,
		path:   filepath.Join(dir, fmt.Sprintf("run-%s.csv", runID)),
		runID:  runID,
	}, nil
}

// RunID returns the identifier of this run's history file.
func (s *CSVSink) RunID() string {
	return s.runID
}

// Path returns the history file location.
func (s *CSVSink) Path() string {
	return s.path
}

// Append writes one epoch record, emitting the header on first use.
func (s *CSVSink) Append(record models.EpochRecord) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeData, errors.CodeHistoryWrite,
			fmt.Sprintf("failed to open history file %s", s.path))
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !s.wrote {
		if err := w.Write([]string{"epoch", "loss", "val_loss", "learning_rate"}); err != nil {
			return errors.WrapError(err, errors.ErrorTypeData, errors.CodeHistoryWrite, "failed to write history header")
		}
		s.wrote = true
	}
	row := []string{
		strconv.Itoa(record.Epoch),
		strconv.FormatFloat(record.Loss, 'g', -1, 64),
		strconv.FormatFloat(record.ValidationLoss, 'g', -1, 64),
		strconv.FormatFloat(record.LearningRate, 'g', -1, 64),
	}
	if err := w.Write(row); err != nil {
		return errors.WrapError(err, errors.ErrorTypeData, errors.CodeHistoryWrite, "failed to write history row")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.WrapError(err, errors.ErrorTypeData, errors.CodeHistoryWrite, "failed to flush history row")
	}
	return nil
}
