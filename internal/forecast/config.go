package forecast

import (
	"time"

	"github.com/inferloop/fluxcast/pkg/errors"
)

// Config contains configuration for the seq2seq forecaster
type Config struct {
	// Window geometry
	InputSteps  int `json:"input_steps" mapstructure:"input_steps"`   // Encoder window length
	OutputSteps int `json:"output_steps" mapstructure:"output_steps"` // Decoder horizon
	BatchSize   int `json:"batch_size" mapstructure:"batch_size"`     // Constant across a run
	Dimensions  int `json:"dimensions" mapstructure:"dimensions"`     // Features per step
	LatentDim   int `json:"latent_dim" mapstructure:"latent_dim"`     // Hidden state size

	// Optimization
	LearningRate    float64 `json:"learning_rate" mapstructure:"learning_rate"`
	Gamma           float64 `json:"gamma" mapstructure:"gamma"`     // Plateau LR decay factor
	Plateau         int     `json:"plateau" mapstructure:"plateau"` // Plateau patience in epochs
	MinLearningRate float64 `json:"min_learning_rate" mapstructure:"min_learning_rate"`
	Epochs          int     `json:"epochs" mapstructure:"epochs"`

	// Early stopping
	EarlyStopping bool    `json:"early_stopping" mapstructure:"early_stopping"`
	Patience      int     `json:"patience" mapstructure:"patience"`
	MinDelta      float64 `json:"min_delta" mapstructure:"min_delta"`

	// Checkpointing
	ForceNew bool `json:"force_new" mapstructure:"force_new"` // Overwrite an existing checkpoint

	// Other parameters
	Seed int64 `json:"seed" mapstructure:"seed"` // Random seed, 0 picks one
}

// DefaultConfig returns the configuration used by the reference experiments.
func DefaultConfig() *Config {
	return &Config{
		InputSteps:      100,
		OutputSteps:     100,
		BatchSize:       32,
		Dimensions:      40,
		LatentDim:       384,
		LearningRate:    1e-3,
		Gamma:           0.6,
		Plateau:         10,
		MinLearningRate: 3e-6,
		Epochs:          100,
		EarlyStopping:   true,
		Patience:        20,
		MinDelta:        0.0,
		ForceNew:        false,
		Seed:            time.Now().UnixNano(),
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.InputSteps <= 0 {
		return errors.NewConfigError(errors.CodeInvalidConfig, "input_steps must be positive")
	}
	if c.OutputSteps <= 0 {
		return errors.NewConfigError(errors.CodeInvalidConfig, "output_steps must be positive")
	}
	if c.BatchSize <= 0 {
		return errors.NewConfigError(errors.CodeInvalidConfig, "batch_size must be positive")
	}
	if c.Dimensions <= 0 {
		return errors.NewConfigError(errors.CodeInvalidConfig, "dimensions must be positive")
	}
	if c.LatentDim <= 0 {
		return errors.NewConfigError(errors.CodeInvalidConfig, "latent_dim must be positive")
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return errors.NewConfigError(errors.CodeInvalidConfig, "learning_rate must be between 0 and 1")
	}
	if c.Gamma <= 0 || c.Gamma >= 1 {
		return errors.NewConfigError(errors.CodeInvalidConfig, "gamma must be between 0 and 1")
	}
	if c.Plateau < 0 {
		return errors.NewConfigError(errors.CodeInvalidConfig, "plateau must not be negative")
	}
	if c.Epochs <= 0 {
		return errors.NewConfigError(errors.CodeInvalidConfig, "epochs must be positive")
	}
	return nil
}
