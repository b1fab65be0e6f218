package features

import (
	"math"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// Fixed thresholds of the lexical contract. These were baked into the trained
// models; changing any of them breaks score comparability.
const (
	LongURLThreshold      = 75
	ExtremeURLThreshold   = 100
	ExcessiveSubdomains   = 2
	ExtremeSubdomains     = 4
	DigitRatioThreshold   = 0.2
	SpecialCharDensity    = 0.15
	EntropyThreshold      = 3.0
	LongDomainThreshold   = 20
	MultipleKeywordsCount = 2
)

var ipLiteralRe = regexp.MustCompile(`\d+\.\d+\.\d+\.\d+`)

const specialChars = "!@#$%^&*()_+-=[]{}|;:,<>?/"

// Lexical is everything computable from the URL string and the static
// reference tables alone. No network I/O happens here.
type Lexical struct {
	URLLength      int
	DomainLength   int
	PathLength     int
	QueryLength    int
	NumDots        int
	SpecialChars   int
	SubdomainCount int

	HasIP        bool
	HasAtSymbol  bool
	HasHyphen    bool
	HasHTTPS     bool
	LongURL      bool // > 75
	ExtremeURL   bool // > 100
	LongDomain   bool // registrable domain > 20
	HighDigits   bool // digit ratio > 0.2
	DenseSpecial bool // special-char density > 0.15

	DomainEntropy float64
	HighEntropy   bool

	SuspiciousTLD bool
	IsShortened   bool

	KeywordHits      int
	HasKeyword       bool // >= 1
	MultipleKeywords bool // >= 2
	BrandHits        int
	AbnormalURL      bool // suspiciousTerms match anywhere in the URL

	Domain DomainParts
	Valid  bool // host parsed into a registrable domain
}

// ExtractLexical computes the lexical feature family for a URL. It never
// panics or errors: an unparseable URL yields the neutral zero value with
// Valid=false, which downstream schemas turn into all-default vectors.
func ExtractLexical(rawURL string) Lexical {
	var lx Lexical
	lower := strings.ToLower(rawURL)

	lx.URLLength = len(rawURL)
	lx.NumDots = strings.Count(rawURL, ".")
	lx.HasAtSymbol = strings.Contains(rawURL, "@")
	lx.HasIP = ipLiteralRe.MatchString(rawURL)
	lx.HasHTTPS = strings.HasPrefix(lower, "https")
	lx.LongURL = lx.URLLength > LongURLThreshold
	lx.ExtremeURL = lx.URLLength > ExtremeURLThreshold

	for _, c := range rawURL {
		if strings.ContainsRune(specialChars, c) {
			lx.SpecialChars++
		}
	}
	if lx.URLLength > 0 {
		lx.DenseSpecial = float64(lx.SpecialChars)/float64(lx.URLLength) > SpecialCharDensity

		digits := 0
		for _, c := range rawURL {
			if unicode.IsDigit(c) {
				digits++
			}
		}
		lx.HighDigits = float64(digits)/float64(lx.URLLength) > DigitRatioThreshold
	}

	for _, kw := range phishingKeywords {
		if strings.Contains(lower, kw) {
			lx.KeywordHits++
		}
	}
	lx.HasKeyword = lx.KeywordHits >= 1
	lx.MultipleKeywords = lx.KeywordHits >= MultipleKeywordsCount

	for _, term := range suspiciousTerms {
		if strings.Contains(lower, term) {
			lx.AbnormalURL = true
			break
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return lx
	}
	host := strings.ToLower(parsed.Hostname())
	lx.PathLength = len(parsed.Path)
	lx.QueryLength = len(parsed.RawQuery)
	lx.HasHyphen = strings.Contains(host, "-")

	for _, brand := range brandKeywords {
		if strings.Contains(host, brand) {
			lx.BrandHits++
		}
	}

	parts, ok := SplitDomain(rawURL)
	if !ok {
		return lx
	}
	lx.Valid = true
	lx.Domain = parts
	lx.DomainLength = len(parts.Registrable)
	lx.LongDomain = lx.DomainLength > LongDomainThreshold
	lx.SubdomainCount = parts.SubdomainCount()
	lx.SuspiciousTLD = suspiciousTLDs[lastLabel(parts.TLD)]
	lx.IsShortened = shortenerDomains[parts.Registrable]

	lx.DomainEntropy = shannonEntropy(parts.Base)
	lx.HighEntropy = lx.DomainEntropy > EntropyThreshold

	return lx
}

// shannonEntropy of a string in bits per character.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, c := range s {
		freq[c]++
		total++
	}
	entropy := 0.0
	for _, n := range freq {
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// lastLabel handles multi-label public suffixes: "co.uk" → "uk" never matches
// the suspicious-TLD set, "com.tk" → "tk" does.
func lastLabel(suffix string) string {
	if i := strings.LastIndex(suffix, "."); i >= 0 {
		return suffix[i+1:]
	}
	return suffix
}
