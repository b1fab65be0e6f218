package features

// Vector is the flat named feature map handed to the scoring engine. The
// engine imposes ordering from the model's trained feature list; the map
// itself is assembled once per request and never mutated afterwards.
type Vector map[string]float64

// Schema identifiers. Versioned: each trained artifact expects exactly the
// names its schema declares.
const (
	SchemaLightweight = "lightweight/v1"
	SchemaDeep        = "deep/v1"
)

// LightweightFeatures is the strongly-typed record behind SchemaLightweight.
// Pure function of the URL string; no network signals.
type LightweightFeatures struct {
	URLLength          float64
	NumDots            float64
	NumSpecialChars    float64
	HasIP              float64
	HasAtSymbol        float64
	NumSubdomains      float64
	HasHTTPS           float64
	HasHyphen          float64
	IsShortened        float64
	SuspiciousTLD      float64
	SuspiciousKeywords float64
	BrandKeywords      float64
	DomainEntropy      float64
}

// LightweightFeatureNames is the declared schema, in training order.
var LightweightFeatureNames = []string{
	"url_length", "num_dots", "num_special_chars", "has_ip",
	"has_at_symbol", "num_subdomains", "has_https", "has_hyphen",
	"is_shortened", "suspicious_tld", "suspicious_keywords",
	"brand_keywords", "domain_entropy",
}

func (f LightweightFeatures) Vector() Vector {
	return Vector{
		"url_length":          f.URLLength,
		"num_dots":            f.NumDots,
		"num_special_chars":   f.NumSpecialChars,
		"has_ip":              f.HasIP,
		"has_at_symbol":       f.HasAtSymbol,
		"num_subdomains":      f.NumSubdomains,
		"has_https":           f.HasHTTPS,
		"has_hyphen":          f.HasHyphen,
		"is_shortened":        f.IsShortened,
		"suspicious_tld":      f.SuspiciousTLD,
		"suspicious_keywords": f.SuspiciousKeywords,
		"brand_keywords":      f.BrandKeywords,
		"domain_entropy":      f.DomainEntropy,
	}
}

// DeepFeatures is the strongly-typed record behind SchemaDeep, the chatbot
// model. Network-derived fields are filled from enrichment signals with
// defaults when those degrade.
type DeepFeatures struct {
	UsingIP             float64
	SymbolAt            float64
	PrefixSuffix        float64
	SubDomains          float64
	UsesHTTP            float64
	DomainLength        float64
	DomainRegLen        float64
	AgeOfDomain         float64
	DNSRecording        float64
	WebsiteTraffic      float64
	PageRank            float64
	GoogleIndex         float64
	LinksPointingToPage float64
	StatsReport         float64
	IsTyposquatting     float64
	BrandInSubdomain    float64
	AbnormalURL         float64
	RequestURL          float64
	LegitimacyScore     float64
}

// DeepFeatureNames preserves the trained model's naming, punctuation and all.
var DeepFeatureNames = []string{
	"UsingIP", "Symbol@", "PrefixSuffix-", "SubDomains", "uses_http",
	"DomainLength", "DomainRegLen", "AgeofDomain", "DNSRecording",
	"WebsiteTraffic", "PageRank", "GoogleIndex", "LinksPointingToPage",
	"StatsReport", "IsTyposquatting", "BrandInSubdomain", "AbnormalURL",
	"RequestURL", "LegitimacyScore",
}

func (f DeepFeatures) Vector() Vector {
	return Vector{
		"UsingIP":             f.UsingIP,
		"Symbol@":             f.SymbolAt,
		"PrefixSuffix-":       f.PrefixSuffix,
		"SubDomains":          f.SubDomains,
		"uses_http":           f.UsesHTTP,
		"DomainLength":        f.DomainLength,
		"DomainRegLen":        f.DomainRegLen,
		"AgeofDomain":         f.AgeOfDomain,
		"DNSRecording":        f.DNSRecording,
		"WebsiteTraffic":      f.WebsiteTraffic,
		"PageRank":            f.PageRank,
		"GoogleIndex":         f.GoogleIndex,
		"LinksPointingToPage": f.LinksPointingToPage,
		"StatsReport":         f.StatsReport,
		"IsTyposquatting":     f.IsTyposquatting,
		"BrandInSubdomain":    f.BrandInSubdomain,
		"AbnormalURL":         f.AbnormalURL,
		"RequestURL":          f.RequestURL,
		"LegitimacyScore":     f.LegitimacyScore,
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
