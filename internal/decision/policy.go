package decision

import "math"

// Confidence levels exposed to clients.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

const youngDomainDays = 180

// Signals are the risk indicators the policy inspects, assembled by the
// pipeline from whichever feature schema the deployment runs.
type Signals struct {
	HasIPLiteral        bool
	Typosquatting       bool
	ImpersonatedDomain  string
	BrandInSubdomain    bool
	ImpersonatedBrand   string
	BrandKeywordAbuse   bool
	SuspiciousTLD       bool
	KeywordHits         int
	MissingHTTPS        bool
	Shortener           bool
	HighEntropy         bool
	ExcessiveSubdomains bool

	// DomainAgeDays is -1 when WHOIS degraded; only a known-young domain
	// counts as a risk factor.
	DomainAgeDays int
	DNSKnown      bool
	DNSComplete   bool
}

// CriticalFactors lists which critical risk factors fired, in explanation
// priority order.
func (s Signals) CriticalFactors() []string {
	var factors []string
	if s.Typosquatting {
		factors = append(factors, "typosquatting")
	}
	if s.BrandInSubdomain {
		factors = append(factors, "brand_in_subdomain")
	}
	if s.HasIPLiteral {
		factors = append(factors, "ip_literal_host")
	}
	if s.BrandKeywordAbuse {
		factors = append(factors, "brand_keyword")
	}
	if s.SuspiciousTLD {
		factors = append(factors, "suspicious_tld")
	}
	if s.KeywordHits >= 2 {
		factors = append(factors, "multiple_keywords")
	}
	if s.MissingHTTPS {
		factors = append(factors, "missing_https")
	}
	if s.Shortener {
		factors = append(factors, "url_shortener")
	}
	if s.HighEntropy {
		factors = append(factors, "high_entropy_domain")
	}
	if s.ExcessiveSubdomains {
		factors = append(factors, "excessive_subdomains")
	}
	if s.DomainAgeDays >= 0 && s.DomainAgeDays < youngDomainDays {
		factors = append(factors, "young_domain")
	}
	if s.DNSKnown && !s.DNSComplete {
		factors = append(factors, "incomplete_dns")
	}
	return factors
}

// Verdict is the final classification handed back to clients.
type Verdict struct {
	IsPhishing      bool
	ThreatScore     int
	ConfidenceLevel string
	UltraHighRisk   bool
	RiskFactors     []string
	Explanation     string
	Recommendations []string
}

// Evaluate applies a deployment profile to a model probability and the fired
// signals. The probability threshold is inclusive; the ultra-sensitive
// override forces a phishing verdict and floors the score whenever a
// high-confidence indicator is present, no matter what the model said.
func Evaluate(p Profile, probability float64, sig Signals) Verdict {
	score := int(math.Round(probability * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	v := Verdict{
		IsPhishing:  probability >= p.Threshold,
		ThreatScore: score,
		RiskFactors: sig.CriticalFactors(),
	}

	if sig.HasIPLiteral || sig.Typosquatting || sig.BrandInSubdomain ||
		len(v.RiskFactors) >= p.CriticalFactors {
		v.UltraHighRisk = true
		v.IsPhishing = true
		if v.ThreatScore < p.OverrideFloor {
			v.ThreatScore = p.OverrideFloor
		}
	}

	v.ConfidenceLevel = confidenceLevel(v.ThreatScore)
	v.Explanation = explain(v, sig)
	v.Recommendations = recommend(v, sig)
	return v
}

// confidenceLevel bands on distance from the midpoint: an extreme score is a
// confident call either way, a mid-range score is genuinely uncertain.
func confidenceLevel(score int) string {
	switch {
	case score > 85 || score < 15:
		return ConfidenceHigh
	case score >= 30 && score <= 70:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
