package model

import (
	"encoding/json"
	"fmt"
)

// Scaler is a fitted standard scaler: (x - mean) / scale per feature.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func ParseScaler(raw []byte) (*Scaler, error) {
	var s Scaler
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("scaler mean/scale length mismatch: %d vs %d", len(s.Mean), len(s.Scale))
	}
	return &s, nil
}

// Transform scales a sample in place-safe copy. Errors on shape mismatch so
// the caller can fall back to unscaled inference.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("feature count %d does not match scaler dimension %d", len(x), len(s.Mean))
	}
	out := make([]float64, len(x))
	for i := range x {
		if s.Scale[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = (x[i] - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}
