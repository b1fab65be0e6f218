// Package models holds the request, response, and record types shared across
// the service boundary.
package models

import "time"

// AnalysisRequest is the inbound payload for both analysis endpoints.
// Features, when present, is a pre-computed vector override from a client
// that extracted locally.
type AnalysisRequest struct {
	URL      string             `json:"url" binding:"required"`
	Features map[string]float64 `json:"features,omitempty"`
	Client   string             `json:"client,omitempty"`
}

// DeepAnalysis is the nested enrichment block of deep responses.
type DeepAnalysis struct {
	DomainAgeDays      int            `json:"domain_age_days"`
	RegistrationDays   int            `json:"registration_length_days"`
	DNSRecords         map[string]any `json:"dns_records"`
	ContentAnalysis    map[string]any `json:"content_analysis,omitempty"`
	Typosquatting      map[string]any `json:"typosquatting,omitempty"`
	BrandImpersonation map[string]any `json:"brand_impersonation,omitempty"`
	DegradedSignals    []string       `json:"degraded_signals,omitempty"`
}

// AnalysisResult is the canonical per-request outcome. Immutable once built;
// the same value is returned to the caller, cached under the URL key, and
// persisted to the central store.
type AnalysisResult struct {
	URL              string        `json:"url"`
	IsPhishing       bool          `json:"is_phishing"`
	ThreatScore      int           `json:"threat_score"`
	Probability      float64       `json:"probability"`
	ConfidenceLevel  string        `json:"confidence_level"`
	Explanation      string        `json:"explanation"`
	Recommendations  []string      `json:"recommendations"`
	FeaturesAnalyzed []string      `json:"features_analyzed"`
	RiskFactors      []string      `json:"risk_factors,omitempty"`
	UltraHighRisk    bool          `json:"ultra_high_risk"`
	DeepAnalysis     *DeepAnalysis `json:"deep_analysis,omitempty"`
	ModelVersion     string        `json:"model_version"`
	Timestamp        time.Time     `json:"timestamp"`
	Cached           bool          `json:"cached,omitempty"`
}

// Feedback types accepted from clients and operators.
const (
	FeedbackFalseNegative   = "false_negative"
	FeedbackFalsePositive   = "false_positive"
	FeedbackConfirmPhishing = "confirm_phishing"
)

// ValidFeedbackType reports whether t is one of the accepted feedback kinds.
func ValidFeedbackType(t string) bool {
	switch t {
	case FeedbackFalseNegative, FeedbackFalsePositive, FeedbackConfirmPhishing:
		return true
	}
	return false
}

// FeedbackRequest is the inbound payload for the feedback endpoint.
type FeedbackRequest struct {
	URL          string `json:"url" binding:"required"`
	IsPhishing   *bool  `json:"is_phishing" binding:"required"`
	FeedbackType string `json:"feedback_type" binding:"required"`
}

// FeedbackRecord is one user/operator assertion queued for reconciliation
// with the central store. Delivery is at-least-once; records leave the queue
// only after a confirmed sync.
type FeedbackRecord struct {
	URL          string  `json:"url"`
	IsPhishing   bool    `json:"is_phishing"`
	FeedbackType string  `json:"feedback_type"`
	Timestamp    float64 `json:"timestamp"`
}
