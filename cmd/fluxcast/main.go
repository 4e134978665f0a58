package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inferloop/fluxcast/cmd/fluxcast/commands"
	"github.com/inferloop/fluxcast/pkg/errors"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fluxcast",
		Short: "Recurrent seq2seq time-series forecasting",
		Long: `Trains and runs inference with a GRU encoder-decoder forecasting model
over fixed-length multivariate time-series windows.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fluxcast.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Initialize Viper
	cobra.OnInitialize(initConfig)

	// Add commands
	rootCmd.AddCommand(commands.NewTrainCmd())
	rootCmd.AddCommand(commands.NewPredictCmd())

	// Single error boundary: every failure reports as "{kind}: {message}".
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errors.Report(err))
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fluxcast")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FLUXCAST")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
