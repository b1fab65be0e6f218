package features

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Thresholds turning raw enrichment values into the deep model's binary
// features. Part of the trained contract.
const (
	agedDomainDays       = 180
	establishedDays      = 365
	longRegistrationDays = 365
	trafficRecordCount   = 3
)

// Extractor owns the fetchers and assembles complete feature records. One
// Extractor serves the whole process; all methods are safe for concurrent
// use.
type Extractor struct {
	WHOIS *WHOISClient
	DNS   *DNSClient
	HTML  *HTMLClient
}

// Enrichment keeps the raw network signals alongside the assembled vector so
// responses can expose them as deep_analysis, and degradations stay
// observable.
type Enrichment struct {
	WHOIS      Signal[WHOISInfo]
	DNS        Signal[DNSRecords]
	HTML       Signal[HTMLContent]
	Typosquat  TyposquatResult
	BrandAbuse BrandSubdomainResult
	Lexical    Lexical
}

// DegradedReasons lists which enrichment families fell back to defaults.
func (e *Enrichment) DegradedReasons() []string {
	var reasons []string
	if e.WHOIS.Degraded {
		reasons = append(reasons, "whois: "+e.WHOIS.Reason)
	}
	if e.DNS.Degraded {
		reasons = append(reasons, "dns: "+e.DNS.Reason)
	}
	if e.HTML.Degraded {
		reasons = append(reasons, "html: "+e.HTML.Reason)
	}
	return reasons
}

// ExtractLightweight computes the lightweight schema. Deterministic, no
// network I/O, never fails: malformed URLs produce the neutral default
// record.
func (e *Extractor) ExtractLightweight(rawURL string) LightweightFeatures {
	lx := ExtractLexical(rawURL)

	return LightweightFeatures{
		URLLength:          float64(lx.URLLength),
		NumDots:            float64(lx.NumDots),
		NumSpecialChars:    float64(lx.SpecialChars),
		HasIP:              boolFeature(lx.HasIP),
		HasAtSymbol:        boolFeature(lx.HasAtSymbol),
		NumSubdomains:      float64(lx.SubdomainCount),
		HasHTTPS:           boolFeature(lx.HasHTTPS),
		HasHyphen:          boolFeature(lx.HasHyphen),
		IsShortened:        boolFeature(lx.IsShortened),
		SuspiciousTLD:      boolFeature(lx.SuspiciousTLD),
		SuspiciousKeywords: float64(lx.KeywordHits),
		BrandKeywords:      float64(lx.BrandHits),
		DomainEntropy:      lx.DomainEntropy,
	}
}

// ExtractDeep runs the full pipeline: lexical analysis, then WHOIS, DNS, and
// HTML enrichment concurrently. The fetchers are independent and read-only so
// they fan out; only the assembly below waits on all three. Each degrades to
// its documented default on failure — a dead registry never sinks an
// analysis.
func (e *Extractor) ExtractDeep(ctx context.Context, rawURL string) (DeepFeatures, *Enrichment) {
	start := time.Now()
	lx := ExtractLexical(rawURL)

	enrichment := &Enrichment{
		WHOIS:   Degraded(defaultWHOISInfo(), "not attempted"),
		DNS:     Degraded(DNSRecords{}, "not attempted"),
		HTML:    Degraded(DefaultHTMLContent(), "not attempted"),
		Lexical: lx,
	}

	if !lx.Valid {
		slog.Warn("Deep extraction on unparseable URL, returning defaults", "url", rawURL)
		return defaultDeepFeatures(), enrichment
	}

	domain := lx.Domain.Registrable
	enrichment.Typosquat = DetectTyposquatting(domain)
	enrichment.BrandAbuse = DetectBrandInSubdomain(rawURL)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		enrichment.WHOIS = e.WHOIS.Lookup(ctx, domain)
	}()
	go func() {
		defer wg.Done()
		enrichment.DNS = e.DNS.Records(ctx, domain)
	}()
	go func() {
		defer wg.Done()
		enrichment.HTML = e.HTML.Analyze(ctx, rawURL)
	}()
	wg.Wait()

	feats := assembleDeep(lx, enrichment)

	slog.Info("Deep feature extraction completed",
		"domain", domain,
		"elapsed_ms", time.Since(start).Milliseconds(),
		"degraded", enrichment.DegradedReasons(),
	)
	return feats, enrichment
}

func assembleDeep(lx Lexical, en *Enrichment) DeepFeatures {
	whois := en.WHOIS.Value
	records := en.DNS.Value
	html := en.HTML.Value

	f := DeepFeatures{
		UsingIP:          boolFeature(lx.HasIP),
		SymbolAt:         boolFeature(lx.HasAtSymbol),
		PrefixSuffix:     boolFeature(lx.HasHyphen),
		SubDomains:       float64(lx.SubdomainCount),
		UsesHTTP:         boolFeature(!lx.HasHTTPS),
		DomainLength:     boolFeature(lx.LongDomain),
		DomainRegLen:     boolFeature(whois.RegistrationDays > longRegistrationDays),
		AgeOfDomain:      boolFeature(whois.DomainAgeDays > agedDomainDays),
		DNSRecording:     boolFeature(records.Complete()),
		WebsiteTraffic:   boolFeature(records.TotalRecords > trafficRecordCount),
		PageRank:         boolFeature(records.FullSetup()),
		GoogleIndex:      boolFeature(records.Complete()),
		IsTyposquatting:  boolFeature(en.Typosquat.IsTyposquatting),
		BrandInSubdomain: boolFeature(en.BrandAbuse.HasBrandInSubdomain),
		AbnormalURL:      boolFeature(lx.AbnormalURL),
		RequestURL:       boolFeature(html.ExternalScripts > 0),
	}
	f.LinksPointingToPage = boolFeature(whois.DomainAgeDays > establishedDays)
	f.StatsReport = boolFeature(whois.DomainAgeDays > agedDomainDays && records.TotalRecords > trafficRecordCount)
	f.LegitimacyScore = legitimacyScore(lx, f)
	return f
}

// legitimacyScore is the composite 0..1 feature: neutral 0.5 baseline nudged
// by age, DNS completeness, transport, and the impersonation detectors.
func legitimacyScore(lx Lexical, f DeepFeatures) float64 {
	score := 0.5

	if f.AgeOfDomain == 1 {
		score += 0.2
	}
	if f.DNSRecording == 1 && f.PageRank == 1 {
		score += 0.1
	}
	if f.UsesHTTP == 1 && !isHTTPAllowlisted(lx.Domain.Registrable) {
		score -= 0.2
	}
	if f.IsTyposquatting == 1 {
		score -= 0.3
	}
	if f.BrandInSubdomain == 1 {
		score -= 0.3
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	// known plain-HTTP sites keep a fixed, slightly-positive score
	if f.UsesHTTP == 1 && isHTTPAllowlisted(lx.Domain.Registrable) {
		score = 0.8
	}
	return score
}

func isHTTPAllowlisted(domain string) bool {
	for _, allowed := range httpAllowlist {
		if domain == allowed || strings.HasSuffix(domain, "."+allowed) {
			return true
		}
	}
	return false
}

func defaultDeepFeatures() DeepFeatures {
	return DeepFeatures{LegitimacyScore: 0.5}
}
