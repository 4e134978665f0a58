package forecast

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/fluxcast/internal/tensor"
	"github.com/inferloop/fluxcast/pkg/errors"
	"github.com/inferloop/fluxcast/pkg/interfaces"
	"github.com/inferloop/fluxcast/pkg/models"
)

// Forecaster is the recurrent encoder-decoder forecasting engine. It owns the
// model parameters, the optimization controller and the checkpoint manager,
// and runs the per-epoch train/validation cycle.
type Forecaster struct {
	config      *Config
	logger      *logrus.Logger
	randSource  *rand.Rand
	lossFn      StepLoss
	checkpoints *CheckpointManager

	encoder    *Encoder
	decoder    *Decoder
	controller *Controller
}

// NewForecaster validates the configuration and prepares an engine. The model
// itself is constructed by BuildModel.
func NewForecaster(config *Config, logger *logrus.Logger) (*Forecaster, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}
	return &Forecaster{
		config:      config,
		logger:      logger,
		randSource:  rand.New(rand.NewSource(config.Seed)),
		lossFn:      MSELoss{},
		checkpoints: NewCheckpointManager(logger),
	}, nil
}

// SetLoss replaces the per-step loss function. The default is MSE.
func (f *Forecaster) SetLoss(loss StepLoss) {
	f.lossFn = loss
}

// SetRandSource replaces the random source used for weight initialization and
// per-batch hidden-state randomization. Tests inject a fixed seed here.
func (f *Forecaster) SetRandSource(src *rand.Rand) {
	f.randSource = src
}

// BuildModel constructs the encoder, decoder, optimizers and schedulers from
// the configuration.
func (f *Forecaster) BuildModel() {
	f.logger.Info("Building model")
	f.encoder = NewEncoder(f.config.InputSteps, f.config.BatchSize, f.config.Dimensions, f.config.LatentDim, f.randSource)
	f.decoder = NewDecoder(f.config.OutputSteps, f.config.BatchSize, f.config.Dimensions, f.config.LatentDim, f.randSource)
	f.controller = NewController(f.encoder, f.decoder, f.config)

	f.logger.WithFields(logrus.Fields{
		"latent_dim":    f.config.LatentDim,
		"dimensions":    f.config.Dimensions,
		"input_steps":   f.config.InputSteps,
		"output_steps":  f.config.OutputSteps,
		"parameters":    f.controller.NumParameters(),
		"learning_rate": f.controller.LearningRate(),
	}).Info("Model built")
}

// NumParameters returns the trainable parameter count across both modules.
func (f *Forecaster) NumParameters() int {
	return f.controller.NumParameters()
}

// LearningRate returns the representative (decoder) learning rate.
func (f *Forecaster) LearningRate() float64 {
	return f.controller.LearningRate()
}

// randomState draws a fresh initial hidden state for one batch. State is
// never carried across batches; every forward pass starts from noise, in
// training, validation and prediction alike.
func (f *Forecaster) randomState() *tensor.Mat {
	return tensor.NewRandMat(f.config.LatentDim, f.config.BatchSize, 1.0, f.randSource)
}

// doBatch runs one forward pass: encoder over the input window, then the
// autoregressive decoder from the seed. It returns the per-step predictions
// and the loss summed across output steps.
func (f *Forecaster) doBatch(g *tensor.Graph, batch *models.Batch, train bool) ([]*tensor.Mat, float64, error) {
	if batch.Target == nil || !batch.Target.Conforms() ||
		batch.Target.Steps != f.config.OutputSteps || batch.Target.Batch != f.config.BatchSize || batch.Target.Dims != f.config.Dimensions {
		return nil, 0, errors.NewShapeError(errors.CodeShapeMismatch,
			fmt.Sprintf("target does not reshape to (%d, %d, %d)", f.config.OutputSteps, f.config.BatchSize, f.config.Dimensions))
	}
	if batch.DecoderSeed == nil || !batch.DecoderSeed.Conforms() || batch.DecoderSeed.Steps != 1 {
		return nil, 0, errors.NewShapeError(errors.CodeShapeMismatch,
			fmt.Sprintf("decoder seed does not reshape to (1, %d, %d)", f.config.BatchSize, f.config.Dimensions))
	}

	_, state, err := f.encoder.Forward(g, batch.EncoderInput, f.randomState())
	if err != nil {
		return nil, 0, err
	}

	predictions, _, err := f.decoder.Forward(g, stepInput(batch.DecoderSeed, 0), state)
	if err != nil {
		return nil, 0, err
	}

	// Loss is additive across all output steps, one scalar per step.
	loss := 0.0
	for t, pred := range predictions {
		target := stepInput(batch.Target, t)
		loss += f.lossFn.Forward(pred, target)
		if train {
			f.lossFn.Backward(pred, target)
		}
	}
	return predictions, loss, nil
}

// shouldSave implements the validation-gated checkpoint decision: save if and
// only if the current mean validation loss is strictly below the minimum of
// all previous epochs. The first epoch always saves.
func shouldSave(previous []float64, current float64) bool {
	if len(previous) == 0 {
		return true
	}
	min := previous[0]
	for _, v := range previous[1:] {
		if v < min {
			min = v
		}
	}
	return min > current
}

// Fit runs the full training loop: per epoch, exactly
// floor(train_samples/batch_size) training batches followed by
// floor(valid_samples/batch_size) validation batches, checkpoint decision,
// scheduler step on the mean training loss, history record, early-stop check.
// It returns a report naming the best epoch.
func (f *Forecaster) Fit(ctx context.Context, source interfaces.BatchSource, checkpointDir string, sink interfaces.HistorySink, policy interfaces.StoppingPolicy) (*models.FitReport, error) {
	if f.controller == nil {
		return nil, errors.NewConfigError(errors.CodeModelNotBuilt, "BuildModel must be called before Fit")
	}
	if policy == nil {
		policy = NeverStop{}
	}
	trainSteps := source.TrainSampleCount() / source.BatchSize()
	validSteps := source.ValidSampleCount() / source.BatchSize()
	outputSteps := float64(f.config.OutputSteps)

	if trainSteps == 0 {
		return nil, errors.NewDataError(errors.CodeInsufficientData,
			fmt.Sprintf("training split has %d samples, not enough for one batch of %d",
				source.TrainSampleCount(), source.BatchSize()))
	}

	if err := f.checkpoints.Prepare(checkpointDir, f.config.ForceNew); err != nil {
		return nil, err
	}

	f.logger.WithFields(logrus.Fields{
		"epochs":      f.config.Epochs,
		"train_steps": trainSteps,
		"valid_steps": validSteps,
		"batch_size":  source.BatchSize(),
	}).Info("Starting training")

	start := time.Now()
	allValLosses := make([]float64, 0, f.config.Epochs)
	allLosses := make([]float64, 0, f.config.Epochs)
	report := &models.FitReport{BestLoss: math.Inf(1), BestValidationLoss: math.Inf(1)}

	for epoch := 0; epoch < f.config.Epochs; epoch++ {
		epochStart := time.Now()

		// Training phase
		batchLosses := make([]float64, 0, trainSteps)
		cursor := source.TrainBatches()
		for len(batchLosses) < trainSteps {
			batch, ok := cursor.Next()
			if !ok {
				break
			}
			f.controller.ZeroGradients()
			g := tensor.NewGraph(true)
			_, loss, err := f.doBatch(g, batch, true)
			if err != nil {
				return nil, err
			}
			g.Backward()
			f.controller.StepParameters()
			batchLosses = append(batchLosses, loss/outputSteps)
		}

		// Validation phase, gradients disabled
		valLosses := make([]float64, 0, validSteps)
		cursor = source.ValidBatches()
		for len(valLosses) < validSteps {
			batch, ok := cursor.Next()
			if !ok {
				break
			}
			g := tensor.NewGraph(false)
			_, loss, err := f.doBatch(g, batch, false)
			if err != nil {
				return nil, err
			}
			valLosses = append(valLosses, loss/outputSteps)
		}

		epochLoss := mean(batchLosses)
		epochValLoss := mean(valLosses)
		if len(valLosses) == 0 {
			// No validation split: gate checkpoints on the training loss
			// instead of propagating NaN through the history.
			epochValLoss = epochLoss
		}

		if shouldSave(allValLosses, epochValLoss) {
			if err := f.checkpoints.Save(checkpointDir, f.encoder, f.decoder); err != nil {
				return nil, err
			}
		}
		allValLosses = append(allValLosses, epochValLoss)
		allLosses = append(allLosses, epochLoss)

		learningRate := f.controller.StepSchedulers(epochLoss)

		if epochValLoss < report.BestValidationLoss {
			report.BestEpoch = epoch
			report.BestLoss = epochLoss
			report.BestValidationLoss = epochValLoss
		}

		if sink != nil {
			record := models.EpochRecord{
				Epoch:          epoch,
				Loss:           epochLoss,
				ValidationLoss: epochValLoss,
				LearningRate:   learningRate,
			}
			if err := sink.Append(record); err != nil {
				return nil, errors.WrapError(err, errors.ErrorTypeData, errors.CodeHistoryWrite,
					fmt.Sprintf("failed to record epoch %d", epoch))
			}
		}

		f.logger.WithFields(logrus.Fields{
			"epoch":         epoch,
			"loss":          epochLoss,
			"val_loss":      epochValLoss,
			"learning_rate": learningRate,
			"duration":      time.Since(epochStart),
		}).Info("Epoch completed")

		report.EpochsCompleted = epoch + 1

		if policy.ShouldStop(allValLosses) {
			f.logger.WithFields(logrus.Fields{
				"epoch": epoch,
			}).Info("Early stopping triggered")
			report.Stopped = true
			break
		}

		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}
	}

	report.Duration = time.Since(start)
	f.logger.WithFields(logrus.Fields{
		"best_epoch":    report.BestEpoch,
		"best_loss":     report.BestLoss,
		"best_val_loss": report.BestValidationLoss,
		"duration":      report.Duration,
	}).Info("Training completed")

	return report, nil
}

// PredictOver runs inference over the test split and returns concatenated
// predictions and targets, both shaped (output_steps, total_test, dimensions).
func (f *Forecaster) PredictOver(ctx context.Context, source interfaces.BatchSource) (*models.Window, *models.Window, error) {
	if f.controller == nil {
		return nil, nil, errors.NewConfigError(errors.CodeModelNotBuilt, "BuildModel must be called before PredictOver")
	}

	testSteps := source.TestSampleCount() / source.BatchSize()
	totalSamples := testSteps * source.BatchSize()
	predictions := models.NewWindow(f.config.OutputSteps, totalSamples, f.config.Dimensions)
	targets := models.NewWindow(f.config.OutputSteps, totalSamples, f.config.Dimensions)

	read := testSteps
	cursor := source.TestBatches()
	for s := 0; s < testSteps; s++ {
		batch, ok := cursor.Next()
		if !ok {
			read = s
			break
		}
		g := tensor.NewGraph(false)
		preds, _, err := f.doBatch(g, batch, false)
		if err != nil {
			return nil, nil, err
		}
		offset := s * source.BatchSize()
		for t, pred := range preds {
			for b := 0; b < source.BatchSize(); b++ {
				for d := 0; d < f.config.Dimensions; d++ {
					predictions.Set(t, offset+b, d, pred.At(d, b))
					targets.Set(t, offset+b, d, batch.Target.At(t, b, d))
				}
			}
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}
	}

	// A short cursor must not leave zero-filled tail samples in the result.
	if read < testSteps {
		total := read * source.BatchSize()
		predictions = truncateSamples(predictions, total)
		targets = truncateSamples(targets, total)
	}

	return predictions, targets, nil
}

// truncateSamples copies the first total samples of every step into a
// smaller window.
func truncateSamples(w *models.Window, total int) *models.Window {
	out := models.NewWindow(w.Steps, total, w.Dims)
	for t := 0; t < w.Steps; t++ {
		for b := 0; b < total; b++ {
			for d := 0; d < w.Dims; d++ {
				out.Set(t, b, d, w.At(t, b, d))
			}
		}
	}
	return out
}

// PredictOne runs inference for a single window of shape
// (input_steps, 1, dimensions) and returns (output_steps, 1, dimensions). The
// window is tiled across the batch dimension, the decoder is seeded with the
// window's last step and column 0 of the result is returned.
func (f *Forecaster) PredictOne(window *models.Window) (*models.Window, error) {
	if f.controller == nil {
		return nil, errors.NewConfigError(errors.CodeModelNotBuilt, "BuildModel must be called before PredictOne")
	}
	if window == nil || !window.Conforms() || window.Steps != f.config.InputSteps ||
		window.Batch != 1 || window.Dims != f.config.Dimensions {
		return nil, errors.NewShapeError(errors.CodeShapeMismatch,
			fmt.Sprintf("window does not reshape to (%d, 1, %d)", f.config.InputSteps, f.config.Dimensions))
	}

	tiled := models.NewWindow(f.config.InputSteps, f.config.BatchSize, f.config.Dimensions)
	seed := models.NewWindow(1, f.config.BatchSize, f.config.Dimensions)
	for t := 0; t < window.Steps; t++ {
		for b := 0; b < f.config.BatchSize; b++ {
			for d := 0; d < window.Dims; d++ {
				tiled.Set(t, b, d, window.At(t, 0, d))
			}
		}
	}
	last := window.Steps - 1
	for b := 0; b < f.config.BatchSize; b++ {
		for d := 0; d < window.Dims; d++ {
			seed.Set(0, b, d, window.At(last, 0, d))
		}
	}

	g := tensor.NewGraph(false)
	_, state, err := f.encoder.Forward(g, tiled, f.randomState())
	if err != nil {
		return nil, err
	}
	preds, _, err := f.decoder.Forward(g, stepInput(seed, 0), state)
	if err != nil {
		return nil, err
	}

	out := models.NewWindow(f.config.OutputSteps, 1, f.config.Dimensions)
	for t, pred := range preds {
		for d := 0; d < f.config.Dimensions; d++ {
			out.Set(t, 0, d, pred.At(d, 0))
		}
	}
	return out, nil
}

// Save persists the paired encoder+decoder parameters under path.
func (f *Forecaster) Save(path string) error {
	if f.controller == nil {
		return errors.NewConfigError(errors.CodeModelNotBuilt, "BuildModel must be called before Save")
	}
	return f.checkpoints.Save(path, f.encoder, f.decoder)
}

// Load restores the paired encoder+decoder parameters from path.
func (f *Forecaster) Load(path string) error {
	if f.controller == nil {
		return errors.NewConfigError(errors.CodeModelNotBuilt, "BuildModel must be called before Load")
	}
	return f.checkpoints.Load(path, f.encoder, f.decoder)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
