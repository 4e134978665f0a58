package forecast

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/fluxcast/internal/tensor"
	"github.com/inferloop/fluxcast/pkg/errors"
)

const (
	encoderBlobName = "encoder"
	decoderBlobName = "decoder"
)

// paramBlob is the on-disk form of one parameter matrix.
type paramBlob struct {
	Rows int
	Cols int
	Data []float64
}

// CheckpointManager persists and restores the encoder and decoder parameter
// sets as a paired unit: two gob blobs named "encoder" and "decoder" under a
// checkpoint directory.
type CheckpointManager struct {
	logger *logrus.Logger
}

// NewCheckpointManager creates a checkpoint manager.
func NewCheckpointManager(logger *logrus.Logger) *CheckpointManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &CheckpointManager{logger: logger}
}

// Prepare ensures the checkpoint directory exists. If encoder or decoder
// blobs are already present it removes them when forceNew is set and fails
// with an already-exists error otherwise, preventing a silent overwrite of a
// trained model.
func (cm *CheckpointManager) Prepare(dir string, forceNew bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapError(err, errors.ErrorTypeCheckpoint, errors.CodeCheckpointWrite,
			fmt.Sprintf("failed to create checkpoint directory %s", dir))
	}
	for _, name := range []string{encoderBlobName, decoderBlobName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if !forceNew {
			return errors.NewCheckpointError(errors.CodeCheckpointExists,
				fmt.Sprintf("the checkpoint %s already exists; delete it or set force_new to retrain", dir))
		}
		if err := os.Remove(path); err != nil {
			return errors.WrapError(err, errors.ErrorTypeCheckpoint, errors.CodeCheckpointWrite,
				fmt.Sprintf("failed to remove stale checkpoint blob %s", path))
		}
		cm.logger.WithFields(logrus.Fields{
			"path": path,
		}).Info("Removed stale checkpoint blob")
	}
	return nil
}

// Save serializes both parameter sets under dir, overwriting any prior blobs
// at that exact path.
func (cm *CheckpointManager) Save(dir string, encoder *Encoder, decoder *Decoder) error {
	if err := writeBlob(filepath.Join(dir, encoderBlobName), encoder.Parameters()); err != nil {
		return err
	}
	if err := writeBlob(filepath.Join(dir, decoderBlobName), decoder.Parameters()); err != nil {
		return err
	}
	cm.logger.WithFields(logrus.Fields{
		"dir": dir,
	}).Debug("Checkpoint saved")
	return nil
}

// Load deserializes both blobs into the existing module instances. It fails
// with a missing-file error when either blob is absent.
func (cm *CheckpointManager) Load(dir string, encoder *Encoder, decoder *Decoder) error {
	if err := readBlob(filepath.Join(dir, encoderBlobName), encoder.Parameters()); err != nil {
		return err
	}
	if err := readBlob(filepath.Join(dir, decoderBlobName), decoder.Parameters()); err != nil {
		return err
	}
	cm.logger.WithFields(logrus.Fields{
		"dir": dir,
	}).Info("Checkpoint loaded")
	return nil
}

func writeBlob(path string, params []*tensor.Mat) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeCheckpoint, errors.CodeCheckpointWrite,
			fmt.Sprintf("failed to create checkpoint blob %s", path))
	}
	defer f.Close()

	blobs := make([]paramBlob, len(params))
	for i, p := range params {
		r, c := p.Dims()
		data := make([]float64, len(p.Raw()))
		copy(data, p.Raw())
		blobs[i] = paramBlob{Rows: r, Cols: c, Data: data}
	}
	if err := gob.NewEncoder(f).Encode(blobs); err != nil {
		return errors.WrapError(err, errors.ErrorTypeCheckpoint, errors.CodeCheckpointWrite,
			fmt.Sprintf("failed to encode checkpoint blob %s", path))
	}
	return nil
}

func readBlob(path string, params []*tensor.Mat) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewCheckpointError(errors.CodeCheckpointMissing,
				fmt.Sprintf("checkpoint blob %s does not exist", path))
		}
		return errors.WrapError(err, errors.ErrorTypeCheckpoint, errors.CodeCheckpointRead,
			fmt.Sprintf("failed to open checkpoint blob %s", path))
	}
	defer f.Close()

	var blobs []paramBlob
	if err := gob.NewDecoder(f).Decode(&blobs); err != nil {
		return errors.WrapError(err, errors.ErrorTypeCheckpoint, errors.CodeCheckpointRead,
			fmt.Sprintf("failed to decode checkpoint blob %s", path))
	}
	if len(blobs) != len(params) {
		return errors.NewCheckpointError(errors.CodeCheckpointRead,
			fmt.Sprintf("checkpoint blob %s holds %d parameters, model has %d", path, len(blobs), len(params)))
	}
	for i, blob := range blobs {
		r, c := params[i].Dims()
		if blob.Rows != r || blob.Cols != c || len(blob.Data) != r*c {
			return errors.NewShapeError(errors.CodeShapeMismatch,
				fmt.Sprintf("checkpoint parameter %d is (%d, %d), model expects (%d, %d)", i, blob.Rows, blob.Cols, r, c))
		}
		copy(params[i].Raw(), blob.Data)
	}
	return nil
}
