// Package model loads trained classifier artifacts and scores feature
// vectors against them. An Artifact is loaded once at startup and treated as
// immutable read-only state for the process lifetime; swapping models means
// restarting the service.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Info describes the loaded model for responses and diagnostics.
type Info struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Version string `json:"version"`
}

// Artifact bundles the classifier, its optional scaler, and the ordered
// feature list the classifier was trained on.
type Artifact struct {
	Classifier  *Ensemble
	Scaler      *Scaler
	FeatureList []string
	Info        Info
}

// Load reads `<name>_model.json`, `<name>_scaler.json` (optional), and
// `<name>_metadata.json` (optional) from dir. Only the classifier file is
// required; a missing scaler means unscaled inference and a missing or
// unusable metadata file falls back to defaultFeatures.
func Load(dir, name string, defaultFeatures []string) (*Artifact, error) {
	modelPath := filepath.Join(dir, name+"_model.json")
	raw, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("model file %s: %w", modelPath, err)
	}

	ensemble, err := ParseEnsemble(raw)
	if err != nil {
		return nil, fmt.Errorf("parse model %s: %w", modelPath, err)
	}
	slog.Info("Loaded classifier", "name", name, "type", ensemble.ModelType, "trees", len(ensemble.Trees))

	artifact := &Artifact{
		Classifier: ensemble,
		Info: Info{
			Name:    name,
			Type:    ensemble.ModelType,
			Version: ensemble.Version,
		},
	}
	if artifact.Info.Version == "" {
		artifact.Info.Version = "1.0"
	}

	scalerPath := filepath.Join(dir, name+"_scaler.json")
	if rawScaler, err := os.ReadFile(scalerPath); err == nil {
		scaler, err := ParseScaler(rawScaler)
		if err != nil {
			return nil, fmt.Errorf("parse scaler %s: %w", scalerPath, err)
		}
		artifact.Scaler = scaler
		slog.Info("Loaded feature scaler", "name", name, "features", len(scaler.Mean))
	}

	metadataPath := filepath.Join(dir, name+"_metadata.json")
	if rawMeta, err := os.ReadFile(metadataPath); err == nil {
		artifact.FeatureList = ParseFeatureList(rawMeta)
	}
	if len(artifact.FeatureList) == 0 {
		slog.Warn("No feature list in metadata, using default", "name", name, "default_count", len(defaultFeatures))
		artifact.FeatureList = defaultFeatures
	}

	slog.Info("Model artifact ready", "name", name, "feature_count", len(artifact.FeatureList))
	return artifact, nil
}

// ParseFeatureList resolves the ordered feature names from a metadata
// document, trying the known layouts in fixed priority order:
//  1. a bare JSON array of names
//  2. keys of feature_importances.importance, in document order
//  3. features.feature_list
//  4. a top-level feature_list
//
// Returns nil when none match.
func ParseFeatureList(raw []byte) []string {
	var bare []string
	if err := json.Unmarshal(raw, &bare); err == nil && len(bare) > 0 {
		return bare
	}

	var doc struct {
		FeatureImportances struct {
			Importance json.RawMessage `json:"importance"`
		} `json:"feature_importances"`
		Features struct {
			FeatureList []string `json:"feature_list"`
		} `json:"features"`
		FeatureList []string `json:"feature_list"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}

	if len(doc.FeatureImportances.Importance) > 0 {
		if keys := orderedObjectKeys(doc.FeatureImportances.Importance); len(keys) > 0 {
			return keys
		}
	}
	if len(doc.Features.FeatureList) > 0 {
		return doc.Features.FeatureList
	}
	if len(doc.FeatureList) > 0 {
		return doc.FeatureList
	}
	return nil
}

// orderedObjectKeys extracts a JSON object's keys preserving document order,
// which encoding/json maps would lose. The importance mapping is written by
// the training scripts in feature order, so order is significant.
func orderedObjectKeys(raw json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}
		keys = append(keys, key)

		// skip the value, whatever shape it has
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil
		}
	}
	return keys
}
