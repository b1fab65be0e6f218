package decision

import (
	"fmt"
	"strings"
)

// verifyReminder closes every explanation, phishing or not.
const verifyReminder = "Always verify the domain name carefully before entering credentials or personal information."

// explain builds the human-readable explanation from a fixed sentence menu,
// concatenated in priority order: impersonation first, then transport and
// structural signals, then the aggregate count.
func explain(v Verdict, sig Signals) string {
	var parts []string

	if sig.Typosquatting {
		if sig.ImpersonatedDomain != "" {
			parts = append(parts, fmt.Sprintf("The domain closely imitates %s and is likely a typosquatting attack.", sig.ImpersonatedDomain))
		} else {
			parts = append(parts, "The domain closely imitates a well-known brand domain.")
		}
	}
	if sig.BrandInSubdomain {
		if sig.ImpersonatedBrand != "" {
			parts = append(parts, fmt.Sprintf("The subdomain contains the %s brand name, but the actual domain is unrelated to that brand.", sig.ImpersonatedBrand))
		} else {
			parts = append(parts, "The subdomain impersonates a well-known brand on an unrelated domain.")
		}
	}
	if sig.HasIPLiteral {
		parts = append(parts, "The URL uses an IP address instead of a domain name.")
	}
	if sig.BrandKeywordAbuse {
		parts = append(parts, "The URL contains brand keywords on a domain the brand does not own (potential impersonation).")
	}
	if sig.SuspiciousTLD {
		parts = append(parts, "The domain uses a top-level domain frequently abused for phishing.")
	}
	if sig.KeywordHits >= 2 {
		parts = append(parts, "The URL contains multiple keywords commonly used in phishing lures.")
	}
	if sig.MissingHTTPS {
		parts = append(parts, "The site does not use HTTPS, so anything entered is transmitted unencrypted.")
	}
	if sig.Shortener {
		parts = append(parts, "The URL uses a shortening service that hides the real destination.")
	}
	if sig.HighEntropy {
		parts = append(parts, "The domain name has unusually high randomness.")
	}
	if sig.DomainAgeDays >= 0 && sig.DomainAgeDays < youngDomainDays {
		parts = append(parts, fmt.Sprintf("The domain was registered only %d days ago; phishing domains are typically short-lived.", sig.DomainAgeDays))
	}
	if sig.DNSKnown && !sig.DNSComplete {
		parts = append(parts, "The domain lacks the DNS records a legitimate, established site normally has.")
	}
	if v.UltraHighRisk && len(v.RiskFactors) >= 2 {
		parts = append(parts, fmt.Sprintf("%d independent risk indicators fired, which is itself a strong phishing signal.", len(v.RiskFactors)))
	}

	if len(parts) == 0 {
		if v.IsPhishing {
			parts = append(parts, "Multiple subtle indicators suggest this URL may be malicious.")
		} else {
			parts = append(parts, "No significant suspicious indicators were detected.")
		}
	}

	parts = append(parts, verifyReminder)
	return strings.Join(parts, " ")
}

// recommend selects next-step advice from a fixed menu keyed by verdict and
// fired signals.
func recommend(v Verdict, sig Signals) []string {
	var recs []string

	if v.IsPhishing {
		recs = append(recs,
			"Do not enter credentials, payment details, or personal information on this site.",
			"Close the page and navigate to the official website by typing its address directly.",
		)
		if sig.Typosquatting || sig.BrandInSubdomain || sig.BrandKeywordAbuse {
			recs = append(recs, "Report the URL to the impersonated brand's abuse contact.")
		}
	} else {
		recs = append(recs, "No immediate action needed; the URL shows no strong phishing indicators.")
		if sig.MissingHTTPS {
			recs = append(recs, "Avoid submitting sensitive information over plain HTTP.")
		}
		if sig.Shortener {
			recs = append(recs, "Expand the shortened URL to confirm its real destination before trusting it.")
		}
	}

	recs = append(recs, "Verify the domain spelling matches the site you intended to visit.")
	return recs
}
