package forecast

// Controller owns the per-module optimizers and their plateau schedulers and
// presents them to the training loop as one unit.
type Controller struct {
	encoder *Encoder
	decoder *Decoder

	encoderOptimizer *AdamOptimizer
	decoderOptimizer *AdamOptimizer
	encoderScheduler *PlateauScheduler
	decoderScheduler *PlateauScheduler
}

// NewController wires optimizers and schedulers for both modules. Encoder and
// decoder start at the same learning rate but are scheduled independently.
func NewController(encoder *Encoder, decoder *Decoder, cfg *Config) *Controller {
	encoderOpt := NewAdamOptimizer(cfg.LearningRate)
	decoderOpt := NewAdamOptimizer(cfg.LearningRate)
	return &Controller{
		encoder:          encoder,
		decoder:          decoder,
		encoderOptimizer: encoderOpt,
		decoderOptimizer: decoderOpt,
		encoderScheduler: NewPlateauScheduler(encoderOpt, cfg.Gamma, cfg.Plateau, cfg.MinLearningRate),
		decoderScheduler: NewPlateauScheduler(decoderOpt, cfg.Gamma, cfg.Plateau, cfg.MinLearningRate),
	}
}

// ZeroGradients clears the accumulated gradients of both modules.
func (c *Controller) ZeroGradients() {
	for _, p := range c.encoder.Parameters() {
		p.ZeroGrad()
	}
	for _, p := range c.decoder.Parameters() {
		p.ZeroGrad()
	}
}

// StepParameters applies one gradient step to each module. Gradients must
// have been populated by a backward pass; they are cleared afterwards.
func (c *Controller) StepParameters() {
	c.decoderOptimizer.Step(c.decoder.Parameters())
	c.encoderOptimizer.Step(c.encoder.Parameters())
}

// StepSchedulers feeds the epoch's mean training loss to both schedulers and
// returns the representative post-step learning rate.
func (c *Controller) StepSchedulers(metric float64) float64 {
	c.decoderScheduler.Step(metric)
	c.encoderScheduler.Step(metric)
	return c.LearningRate()
}

// LearningRate returns the decoder optimizer's rate, used as the
// representative rate for logging and decisions.
func (c *Controller) LearningRate() float64 {
	return c.decoderOptimizer.LearningRate()
}

// NumParameters returns the total trainable parameter count of both modules.
func (c *Controller) NumParameters() int {
	n := 0
	for _, p := range c.encoder.Parameters() {
		n += p.Size()
	}
	for _, p := range c.decoder.Parameters() {
		n += p.Size()
	}
	return n
}
