package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inferloop/fluxcast/internal/dataset"
	"github.com/inferloop/fluxcast/internal/forecast"
)

// bindConfigFlags binds a command's flags to the shared viper config keys.
// Called from PreRunE so that only the executing command's flags back the
// keys; binding at construction time would let the last command built win.
func bindConfigFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

// newLogger builds the process logger honoring the config's log level.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(viper.GetString("log_level")); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// resolveConfig layers viper-provided values over the defaults. Flags bound
// by the commands take precedence through viper.
func resolveConfig() (*forecast.Config, error) {
	cfg := forecast.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildSource loads a CSV series, normalizes it and cuts it into windows.
func buildSource(dataFile, normalization string, cfg *forecast.Config, split [3]float64, maxSamples int, logger *logrus.Logger) (*dataset.WindowSource, error) {
	series, err := dataset.LoadCSV(dataFile)
	if err != nil {
		return nil, err
	}

	scaler := dataset.NewScaler(normalization)
	if err := scaler.Fit(series); err != nil {
		return nil, err
	}
	series = scaler.Transform(series)

	return dataset.NewWindowSource(series, &dataset.SourceConfig{
		InputSteps:  cfg.InputSteps,
		OutputSteps: cfg.OutputSteps,
		BatchSize:   cfg.BatchSize,
		Split:       split,
		MaxSamples:  maxSamples,
		Seed:        cfg.Seed,
	}, logger)
}
