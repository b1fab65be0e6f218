// Package decision turns a model probability and the fired risk signals into
// the final verdict. It is a pure function of its inputs, parameterized by a
// declarative deployment profile so the extension backend and the deep
// chatbot path share one implementation with different thresholds.
package decision

// Profile is one deployment's decision configuration. Thresholds live here,
// not in code paths: the historical per-service copies disagreed with each
// other, so each deployment now states its numbers explicitly.
type Profile struct {
	Name string

	// Threshold is the minimum phishing probability, inclusive.
	Threshold float64

	// OverrideFloor is the threat score floored in when the ultra-sensitive
	// override fires regardless of probability.
	OverrideFloor int

	// CriticalFactors is how many critical risk factors trigger the
	// aggregate override.
	CriticalFactors int

	// Schema names the feature schema this deployment extracts.
	Schema string
}

// LightweightProfile is the browser-extension backend: a high bar to keep
// false positives out of a surface that interrupts browsing.
func LightweightProfile() Profile {
	return Profile{
		Name:            "lightweight",
		Threshold:       0.70,
		OverrideFloor:   80,
		CriticalFactors: 3,
		Schema:          "lightweight/v1",
	}
}

// DeepProfile is the chatbot backend: deliberately recall-biased, a user
// asking for deep analysis would rather see a false alarm than miss a live
// phish.
func DeepProfile() Profile {
	return Profile{
		Name:            "deep",
		Threshold:       0.40,
		OverrideFloor:   85,
		CriticalFactors: 2,
		Schema:          "deep/v1",
	}
}
