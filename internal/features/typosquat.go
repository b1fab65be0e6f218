package features

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Tolerances of the typosquat contract.
const (
	typosquatLengthTolerance = 3    // skip candidates further apart than this
	typosquatRatioThreshold  = 0.25 // normalized edit distance at or below flags
	homoglyphConfidence      = 0.95
	editCharConfidence       = 0.9
	minDomainLength          = 4
)

// TyposquatResult reports whether a domain imitates a dictionary brand.
type TyposquatResult struct {
	IsTyposquatting    bool    `json:"is_typosquatting"`
	ImpersonatedDomain string  `json:"impersonated_domain,omitempty"`
	EditDistance       int     `json:"edit_distance,omitempty"`
	Confidence         float64 `json:"confidence,omitempty"`
	AttackType         string  `json:"attack_type,omitempty"`
}

// DetectTyposquatting compares the registrable domain's base label against
// every brand domain in dictionary order and short-circuits on the first
// qualifying match. First match wins, not best match: the brand table is
// curated so earlier entries are the higher-value targets.
func DetectTyposquatting(domain string) TyposquatResult {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if len(domain) < minDomainLength {
		return TyposquatResult{}
	}
	base := domain
	if i := strings.Index(domain, "."); i >= 0 {
		base = domain[:i]
	}

	for _, brand := range BrandDictionary {
		for _, brandDomain := range brand.Domains {
			brandBase := brandDomain
			if i := strings.Index(brandDomain, "."); i >= 0 {
				brandBase = brandDomain[:i]
			}
			if brandBase == "" || base == brandBase {
				continue
			}

			diff := len(base) - len(brandBase)
			if diff < -typosquatLengthTolerance || diff > typosquatLengthTolerance {
				continue
			}

			dist := levenshtein.ComputeDistance(base, brandBase)
			longer := len(base)
			if len(brandBase) > longer {
				longer = len(brandBase)
			}
			ratio := float64(dist) / float64(longer)
			if ratio <= typosquatRatioThreshold {
				return TyposquatResult{
					IsTyposquatting:    true,
					ImpersonatedDomain: brandDomain,
					EditDistance:       dist,
					Confidence:         1 - ratio,
					AttackType:         "edit_distance",
				}
			}

			if homoglyphEqual(base, brandBase) {
				return TyposquatResult{
					IsTyposquatting:    true,
					ImpersonatedDomain: brandDomain,
					EditDistance:       dist,
					Confidence:         homoglyphConfidence,
					AttackType:         "homoglyph",
				}
			}

			// single-character insertion or deletion against a candidate of
			// adjacent length
			if (diff == 1 || diff == -1) && dist == 1 {
				return TyposquatResult{
					IsTyposquatting:    true,
					ImpersonatedDomain: brandDomain,
					EditDistance:       1,
					Confidence:         editCharConfidence,
					AttackType:         "char_insertion_deletion",
				}
			}
		}
	}
	return TyposquatResult{}
}

// homoglyphEqual reports whether substituting look-alike characters in a
// makes it identical to b.
func homoglyphEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	ra, rb := []rune(a), []rune(b)
	for i := range ra {
		if ra[i] == rb[i] {
			continue
		}
		subs, ok := homoglyphSubs[ra[i]]
		if !ok {
			return false
		}
		matched := false
		for _, s := range subs {
			if s == rb[i] {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// BrandSubdomainResult reports a brand name placed inside the subdomain of an
// unrelated registrable domain.
type BrandSubdomainResult struct {
	HasBrandInSubdomain bool   `json:"has_brand_in_subdomain"`
	ImpersonatedBrand   string `json:"impersonated_brand,omitempty"`
}

// DetectBrandInSubdomain flags URLs like https://paypal.login-check.tk/ where
// the subdomain carries a brand the registrable domain does not belong to.
func DetectBrandInSubdomain(rawURL string) BrandSubdomainResult {
	parts, ok := SplitDomain(rawURL)
	if !ok || parts.Subdomain == "" {
		return BrandSubdomainResult{}
	}

	sub := strings.ToLower(parts.Subdomain)
	for _, brand := range BrandDictionary {
		if !strings.Contains(sub, brand.Name) {
			continue
		}
		owned := false
		for _, d := range brand.Domains {
			if parts.Registrable == d {
				owned = true
				break
			}
		}
		if !owned {
			return BrandSubdomainResult{
				HasBrandInSubdomain: true,
				ImpersonatedBrand:   brand.Name,
			}
		}
	}
	return BrandSubdomainResult{}
}
