package commands

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inferloop/fluxcast/internal/forecast"
	"github.com/inferloop/fluxcast/internal/history"
	"github.com/inferloop/fluxcast/pkg/interfaces"
)

type TrainOptions struct {
	DataFile      string
	CheckpointDir string
	HistoryDir    string
	Normalization string
	TrainSplit    float64
	ValidSplit    float64
	MaxSamples    int
}

func NewTrainCmd() *cobra.Command {
	opts := &TrainOptions{}

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the encoder-decoder forecaster",
		Long: `Train the GRU encoder-decoder on a multivariate series. The series is cut
into overlapping input/target window pairs; the best checkpoint by validation
loss is kept under the checkpoint directory.`,
		Example: `  # Train on a 40-dimensional series with a 100-step horizon
  fluxcast train --data series.csv --dimensions 40 --output-steps 100

  # Retrain over an existing checkpoint
  fluxcast train --data series.csv --force-new`,
		// Config keys are shared between commands, so flags bind to viper
		// only when this command actually executes.
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindConfigFlags(cmd, map[string]string{
				"input_steps":   "input-steps",
				"output_steps":  "output-steps",
				"batch_size":    "batch-size",
				"dimensions":    "dimensions",
				"latent_dim":    "latent-dim",
				"learning_rate": "learning-rate",
				"gamma":         "gamma",
				"plateau":       "plateau",
				"epochs":        "epochs",
				"force_new":     "force-new",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(opts)
		},
	}

	cmd.Flags().StringVar(&opts.DataFile, "data", "", "CSV series file, one time step per row")
	cmd.Flags().StringVar(&opts.CheckpointDir, "checkpoint-dir", "results/checkpoints", "Checkpoint directory")
	cmd.Flags().StringVar(&opts.HistoryDir, "history-dir", "results/history", "Epoch history directory")
	cmd.Flags().StringVar(&opts.Normalization, "normalization", "zscore", "Series normalization (zscore, minmax)")
	cmd.Flags().Float64Var(&opts.TrainSplit, "train-split", 0.89, "Training fraction of the samples")
	cmd.Flags().Float64Var(&opts.ValidSplit, "valid-split", 0.11, "Validation fraction of the samples")
	cmd.Flags().IntVar(&opts.MaxSamples, "max-samples", 10000, "Cap on window samples (0 for unlimited)")

	cmd.Flags().Int("input-steps", 100, "Encoder window length")
	cmd.Flags().Int("output-steps", 100, "Decoder horizon")
	cmd.Flags().Int("batch-size", 32, "Batch size")
	cmd.Flags().Int("dimensions", 40, "Features per step")
	cmd.Flags().Int("latent-dim", 384, "Hidden state size")
	cmd.Flags().Float64("learning-rate", 1e-3, "Initial learning rate")
	cmd.Flags().Float64("gamma", 0.6, "Plateau LR decay factor")
	cmd.Flags().Int("plateau", 10, "Plateau patience in epochs")
	cmd.Flags().Int("epochs", 100, "Epoch budget")
	cmd.Flags().Bool("force-new", false, "Overwrite an existing checkpoint")

	cmd.MarkFlagRequired("data")

	return cmd
}

func runTrain(opts *TrainOptions) error {
	logger := newLogger()

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	split := [3]float64{opts.TrainSplit, opts.ValidSplit, 0}
	source, err := buildSource(opts.DataFile, opts.Normalization, cfg, split, opts.MaxSamples, logger)
	if err != nil {
		return err
	}

	model, err := forecast.NewForecaster(cfg, logger)
	if err != nil {
		return err
	}
	model.BuildModel()

	sink, err := history.NewCSVSink(opts.HistoryDir, logger)
	if err != nil {
		return err
	}

	var policy interfaces.StoppingPolicy = forecast.NeverStop{}
	if cfg.EarlyStopping {
		policy = forecast.NewPatienceStopping(cfg.Patience, cfg.MinDelta)
	}

	report, err := model.Fit(context.Background(), source, opts.CheckpointDir, sink, policy)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"best_epoch":    report.BestEpoch,
		"best_loss":     report.BestLoss,
		"best_val_loss": report.BestValidationLoss,
		"history":       sink.Path(),
	}).Info("Run finished")
	return nil
}
