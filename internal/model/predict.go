package model

import (
	"errors"
	"log/slog"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/features"
)

// ErrNotLoaded reports scoring against a nil artifact. Fatal for the request,
// not the process: the service keeps answering health checks so the missing
// model can be diagnosed.
var ErrNotLoaded = errors.New("model not loaded")

// Prediction is the raw scoring output, before the decision policy runs.
type Prediction struct {
	Probability float64
	// Substituted lists model features that were absent from the assembled
	// vector and defaulted to 0. Non-empty values show up in logs; a long
	// list means schema drift between extractor and artifact.
	Substituted []string
}

// Predict reconciles the vector against the artifact's ordered feature list,
// scales, and runs the classifier. A scaler shape mismatch degrades to
// unscaled inference rather than failing the request.
func (a *Artifact) Predict(vec features.Vector) (Prediction, error) {
	if a == nil || a.Classifier == nil {
		return Prediction{}, ErrNotLoaded
	}

	var pred Prediction
	x := make([]float64, len(a.FeatureList))
	for i, name := range a.FeatureList {
		v, ok := vec[name]
		if !ok {
			pred.Substituted = append(pred.Substituted, name)
			continue
		}
		x[i] = v
	}
	if len(pred.Substituted) > 0 {
		slog.Warn("Missing features defaulted to 0",
			"model", a.Info.Name,
			"missing", pred.Substituted,
		)
	}

	if a.Scaler != nil {
		scaled, err := a.Scaler.Transform(x)
		if err != nil {
			slog.Warn("Scaler shape mismatch, scoring unscaled", "model", a.Info.Name, "error", err)
		} else {
			x = scaled
		}
	}

	pred.Probability = a.Classifier.PositiveProbability(x)
	return pred, nil
}
