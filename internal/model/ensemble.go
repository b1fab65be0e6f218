package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Model types understood by the inference engine.
const (
	TypeRandomForest     = "random_forest"
	TypeGradientBoosting = "gradient_boosting"
)

// Tree is one decision tree in flat-array form, the standard export layout
// for sklearn-style tree ensembles: node i branches to ChildrenLeft[i] when
// feature Feature[i] <= Threshold[i], to ChildrenRight[i] otherwise, and a
// node with Feature[i] == -2 is a leaf.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

const leafMarker = -2

// Leaf walks the tree for one sample and returns the leaf's value row.
func (t *Tree) Leaf(x []float64) []float64 {
	node := 0
	for t.Feature[node] != leafMarker {
		f := t.Feature[node]
		if f >= 0 && f < len(x) && x[f] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// Ensemble is the serialized classifier: a random forest (leaf values are
// per-class sample counts, averaged) or a binary gradient-boosting machine
// (leaf values are raw scores, summed into a logit).
type Ensemble struct {
	ModelType    string            `json:"model_type"`
	Version      string            `json:"version"`
	NClasses     int               `json:"n_classes"`
	Classes      []json.RawMessage `json:"classes"`
	Trees        []Tree            `json:"trees"`
	LearningRate float64           `json:"learning_rate"`
	InitScore    float64           `json:"init_score"`

	positiveIndex int
}

func ParseEnsemble(raw []byte) (*Ensemble, error) {
	var e Ensemble
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	if len(e.Trees) == 0 {
		return nil, fmt.Errorf("ensemble has no trees")
	}
	switch e.ModelType {
	case TypeRandomForest, TypeGradientBoosting:
	default:
		return nil, fmt.Errorf("unsupported model_type %q", e.ModelType)
	}
	if e.ModelType == TypeGradientBoosting && e.LearningRate == 0 {
		e.LearningRate = 0.1
	}
	e.positiveIndex = resolvePositiveIndex(e.Classes)
	return &e, nil
}

// resolvePositiveIndex locates the phishing class in the model's own class
// ordering. Trained artifacts label it 1, "1", "bad", or "phishing"; when
// nothing matches (or no class list shipped) index 1 is the convention.
func resolvePositiveIndex(classes []json.RawMessage) int {
	for i, raw := range classes {
		var asInt int
		if err := json.Unmarshal(raw, &asInt); err == nil {
			if asInt == 1 {
				return i
			}
			continue
		}
		var asStr string
		if err := json.Unmarshal(raw, &asStr); err == nil {
			switch asStr {
			case "1", "bad", "phishing":
				return i
			}
		}
	}
	return 1
}

// PositiveProbability runs inference on one ordered sample and returns the
// probability of the phishing class.
func (e *Ensemble) PositiveProbability(x []float64) float64 {
	switch e.ModelType {
	case TypeGradientBoosting:
		score := e.InitScore
		for i := range e.Trees {
			leaf := e.Trees[i].Leaf(x)
			if len(leaf) > 0 {
				score += e.LearningRate * leaf[0]
			}
		}
		p := sigmoid(score)
		// sigmoid yields P(class at index 1)
		if e.positiveIndex == 0 {
			return 1 - p
		}
		return p

	default: // random forest
		total := 0.0
		for i := range e.Trees {
			leaf := e.Trees[i].Leaf(x)
			if e.positiveIndex >= len(leaf) {
				continue
			}
			sum := 0.0
			for _, v := range leaf {
				sum += v
			}
			if sum > 0 {
				total += leaf[e.positiveIndex] / sum
			}
		}
		return total / float64(len(e.Trees))
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
