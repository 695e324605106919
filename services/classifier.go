package services

import (
	"log/slog"

	"github.com/Faarae/dashboard-SmartEcoBin/forest"
	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

// Predictor is a trained model voting one of the four labels for a
// Gas, Jarak, Delta_Gas vector.
type Predictor interface {
	Predict(x []float64) (int, error)
}

type Classifier struct {
	model Predictor
	log   *slog.Logger
}

// NewClassifier accepts a nil model, in which case only the thresholds decide.
func NewClassifier(model Predictor, log *slog.Logger) *Classifier {
	return &Classifier{model: model, log: log}
}

// LoadPredictor loads the forest artifact at path. A missing or corrupt file
// is logged and yields nil so the dashboard keeps running on thresholds.
func LoadPredictor(path string, log *slog.Logger) Predictor {
	f, err := forest.Load(path)
	if err != nil {
		log.Warn("model unavailable, classifying on thresholds only", "path", path, "err", err)
		return nil
	}
	log.Info("model loaded", "path", path, "trees", len(f.Trees), "features", f.Features)
	return f
}

func (c *Classifier) ModelLoaded() bool {
	return c.model != nil
}

// Classify combines the model vote with the threshold overrides. Anomalous
// wins over decomposing, which wins over full.
func (c *Classifier) Classify(fv models.FeatureVector, th models.Thresholds) models.Status {
	vote := c.vote(fv)

	switch {
	case vote == models.LabelAnomalous:
		return models.StatusFor(models.LabelAnomalous)
	case vote == models.LabelDecomposing || fv.Gas > th.Gas:
		return models.StatusFor(models.LabelDecomposing)
	case vote == models.LabelFull || fv.Distance < th.Distance:
		return models.StatusFor(models.LabelFull)
	default:
		return models.StatusFor(models.LabelNormal)
	}
}

func (c *Classifier) vote(fv models.FeatureVector) (label models.Label) {
	if c.model == nil {
		return models.LabelNormal
	}

	defer func() {
		if r := recover(); r != nil {
			modelFallbacks.Inc()
			c.log.Debug("model panicked, treating vote as normal", "panic", r)
			label = models.LabelNormal
		}
	}()

	v, err := c.model.Predict(fv.Values())
	if err != nil {
		modelFallbacks.Inc()
		c.log.Debug("model prediction failed, treating vote as normal", "err", err)
		return models.LabelNormal
	}

	label = models.Label(v)
	if !label.Valid() {
		modelFallbacks.Inc()
		c.log.Debug("model returned unknown label, treating vote as normal", "label", v)
		return models.LabelNormal
	}
	return label
}
