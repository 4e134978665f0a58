package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inferloop/fluxcast/internal/forecast"
	"github.com/inferloop/fluxcast/pkg/models"
)

type PredictOptions struct {
	DataFile      string
	CheckpointDir string
	OutputFile    string
	Normalization string
	MaxSamples    int
}

func NewPredictCmd() *cobra.Command {
	opts := &PredictOptions{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run inference over a test series",
		Long: `Load the trained encoder-decoder from the checkpoint directory and forecast
over every window of the test series. Predictions and ground truth are written
side by side as CSV.`,
		Example: `  # Forecast 900 steps ahead on the held-out series
  fluxcast predict --data test.csv --output-steps 900 --output predictions.csv`,
		// Config keys are shared between commands, so flags bind to viper
		// only when this command actually executes.
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindConfigFlags(cmd, map[string]string{
				"input_steps":  "input-steps",
				"output_steps": "output-steps",
				"batch_size":   "batch-size",
				"dimensions":   "dimensions",
				"latent_dim":   "latent-dim",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(opts)
		},
	}

	cmd.Flags().StringVar(&opts.DataFile, "data", "", "CSV series file, one time step per row")
	cmd.Flags().StringVar(&opts.CheckpointDir, "checkpoint-dir", "results/checkpoints", "Checkpoint directory")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")
	cmd.Flags().StringVar(&opts.Normalization, "normalization", "zscore", "Series normalization (zscore, minmax)")
	cmd.Flags().IntVar(&opts.MaxSamples, "max-samples", 10000, "Cap on window samples (0 for unlimited)")

	cmd.Flags().Int("input-steps", 100, "Encoder window length")
	cmd.Flags().Int("output-steps", 900, "Decoder horizon")
	cmd.Flags().Int("batch-size", 32, "Batch size")
	cmd.Flags().Int("dimensions", 40, "Features per step")
	cmd.Flags().Int("latent-dim", 384, "Hidden state size")

	cmd.MarkFlagRequired("data")

	return cmd
}

func runPredict(opts *PredictOptions) error {
	logger := newLogger()

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	// The whole series is the test split for prediction runs.
	split := [3]float64{0, 0, 1}
	source, err := buildSource(opts.DataFile, opts.Normalization, cfg, split, opts.MaxSamples, logger)
	if err != nil {
		return err
	}

	model, err := forecast.NewForecaster(cfg, logger)
	if err != nil {
		return err
	}
	model.BuildModel()
	if err := model.Load(opts.CheckpointDir); err != nil {
		return err
	}

	predictions, targets, err := model.PredictOver(context.Background(), source)
	if err != nil {
		return err
	}

	if err := writePredictions(opts.OutputFile, predictions, targets); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"samples":      predictions.Batch,
		"output_steps": predictions.Steps,
		"output":       opts.OutputFile,
	}).Info("Prediction finished")
	return nil
}

// writePredictions emits one row per (step, sample) pair with predicted and
// true features side by side.
func writePredictions(path string, predictions, targets *models.Window) error {
	out := os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	header := []string{"step", "sample"}
	for d := 0; d < predictions.Dims; d++ {
		header = append(header, fmt.Sprintf("pred_%d", d))
	}
	for d := 0; d < targets.Dims; d++ {
		header = append(header, fmt.Sprintf("true_%d", d))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for t := 0; t < predictions.Steps; t++ {
		for b := 0; b < predictions.Batch; b++ {
			row := []string{strconv.Itoa(t), strconv.Itoa(b)}
			for d := 0; d < predictions.Dims; d++ {
				row = append(row, strconv.FormatFloat(predictions.At(t, b, d), 'g', -1, 64))
			}
			for d := 0; d < targets.Dims; d++ {
				row = append(row, strconv.FormatFloat(targets.At(t, b, d), 'g', -1, 64))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}
