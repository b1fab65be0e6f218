// Package analysis is the orchestration layer: it runs feature extraction,
// model scoring, and decision policy for one URL, with caching, request
// coalescing, and central-store persistence around the core pipeline.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/cache"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/central"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/decision"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/features"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/model"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/models"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/safeurl"
)

// Service runs URL analyses for both deployment profiles. All fields are set
// at construction and never mutated, so one Service serves every request.
type Service struct {
	guard     *safeurl.Guard
	extractor *features.Extractor
	cache     *cache.Store
	central   *central.Client
	logger    *slog.Logger

	lightweight profileRuntime
	deep        profileRuntime

	group singleflight.Group
}

// profileRuntime pairs a decision profile with its loaded model. Artifact may
// be nil when the model file was missing at startup; analyses for that
// profile then fail with ErrModelUnavailable while the rest of the service
// keeps running.
type profileRuntime struct {
	profile  decision.Profile
	artifact *model.Artifact
}

// ErrModelUnavailable is returned when the requested profile's classifier
// never loaded.
var ErrModelUnavailable = model.ErrNotLoaded

// Config carries the Service's collaborators.
type Config struct {
	Guard            *safeurl.Guard
	Extractor        *features.Extractor
	Cache            *cache.Store
	Central          *central.Client
	LightweightModel *model.Artifact
	DeepModel        *model.Artifact
	Logger           *slog.Logger
}

// New assembles a Service. Nil models are tolerated so a half-provisioned
// node can still serve the profile it has artifacts for.
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		guard:       cfg.Guard,
		extractor:   cfg.Extractor,
		cache:       cfg.Cache,
		central:     cfg.Central,
		logger:      logger,
		lightweight: profileRuntime{profile: decision.LightweightProfile(), artifact: cfg.LightweightModel},
		deep:        profileRuntime{profile: decision.DeepProfile(), artifact: cfg.DeepModel},
	}
}

// ModelLoaded reports whether the named profile has a usable classifier.
func (s *Service) ModelLoaded(profileName string) bool {
	switch profileName {
	case s.lightweight.profile.Name:
		return s.lightweight.artifact != nil
	case s.deep.profile.Name:
		return s.deep.artifact != nil
	}
	return false
}

// AnalyzeLightweight classifies a URL with the lexical-only pipeline. No
// network I/O; latency is dominated by the cache round trip.
func (s *Service) AnalyzeLightweight(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	return s.analyze(ctx, req, s.lightweight, false)
}

// AnalyzeDeep classifies a URL with the full enrichment pipeline: WHOIS,
// DNS, and a guarded page fetch on top of the lexical features.
func (s *Service) AnalyzeDeep(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	return s.analyze(ctx, req, s.deep, true)
}

func (s *Service) analyze(ctx context.Context, req models.AnalysisRequest, rt profileRuntime, deep bool) (*models.AnalysisResult, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, fmt.Errorf("empty url")
	}
	if rt.artifact == nil {
		return nil, ErrModelUnavailable
	}

	if cached := s.cache.GetAnalysis(ctx, url); cached != nil && cached.ModelVersion == rt.artifact.Info.Version {
		return cached, nil
	}

	// Coalesce concurrent analyses of the same URL per profile. The deep
	// pipeline fires three network fetches per miss; a burst of identical
	// lookups must not multiply that.
	key := rt.profile.Name + "|" + url
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.analyzeUncached(ctx, req, url, rt, deep)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.AnalysisResult), nil
}

func (s *Service) analyzeUncached(ctx context.Context, req models.AnalysisRequest, url string, rt profileRuntime, deep bool) (*models.AnalysisResult, error) {
	start := time.Now()

	var (
		vec        features.Vector
		enrichment *features.Enrichment
	)
	if deep {
		feats, en := s.extractor.ExtractDeep(ctx, url)
		vec = feats.Vector()
		enrichment = en
	} else {
		vec = s.extractor.ExtractLightweight(url).Vector()
	}
	// Client-supplied values override extracted ones key by key. Unknown keys
	// are dropped at prediction time, not here.
	for k, val := range req.Features {
		vec[k] = val
	}

	pred, err := rt.artifact.Predict(vec)
	if err != nil {
		return nil, fmt.Errorf("scoring %s profile: %w", rt.profile.Name, err)
	}

	sig := s.buildSignals(url, enrichment)
	verdict := decision.Evaluate(rt.profile, pred.Probability, sig)

	result := &models.AnalysisResult{
		URL:              url,
		IsPhishing:       verdict.IsPhishing,
		ThreatScore:      verdict.ThreatScore,
		Probability:      pred.Probability,
		ConfidenceLevel:  verdict.ConfidenceLevel,
		Explanation:      verdict.Explanation,
		Recommendations:  verdict.Recommendations,
		FeaturesAnalyzed: rt.artifact.FeatureList,
		RiskFactors:      verdict.RiskFactors,
		UltraHighRisk:    verdict.UltraHighRisk,
		ModelVersion:     rt.artifact.Info.Version,
		Timestamp:        time.Now().UTC(),
	}
	if deep && enrichment != nil {
		result.DeepAnalysis = buildDeepAnalysis(enrichment)
	}

	s.cache.SetAnalysis(ctx, result)
	s.persistAsync(result)

	s.logger.Info("url analyzed",
		"profile", rt.profile.Name,
		"phishing", result.IsPhishing,
		"score", result.ThreatScore,
		"confidence", result.ConfidenceLevel,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// buildSignals maps extraction output onto the decision policy's inputs. The
// impersonation detectors are pure string work, so the lightweight profile
// gets them too; only the network-derived fields need enrichment.
func (s *Service) buildSignals(url string, en *features.Enrichment) decision.Signals {
	var lx features.Lexical
	typo := features.DetectTyposquatting(domainOf(url))
	brand := features.DetectBrandInSubdomain(url)

	sig := decision.Signals{
		DomainAgeDays: -1,
	}
	if en != nil {
		lx = en.Lexical
		typo = en.Typosquat
		brand = en.BrandAbuse
		if !en.WHOIS.Degraded {
			sig.DomainAgeDays = en.WHOIS.Value.DomainAgeDays
		}
		sig.DNSKnown = !en.DNS.Degraded
		sig.DNSComplete = en.DNS.Value.Complete()
	} else {
		lx = features.ExtractLexical(url)
	}

	sig.HasIPLiteral = lx.HasIP
	sig.Typosquatting = typo.IsTyposquatting
	sig.ImpersonatedDomain = typo.ImpersonatedDomain
	sig.BrandInSubdomain = brand.HasBrandInSubdomain
	sig.ImpersonatedBrand = brand.ImpersonatedBrand
	sig.BrandKeywordAbuse = lx.BrandHits > 0 && (typo.IsTyposquatting || brand.HasBrandInSubdomain || lx.SuspiciousTLD)
	sig.SuspiciousTLD = lx.SuspiciousTLD
	sig.KeywordHits = lx.KeywordHits
	sig.MissingHTTPS = !lx.HasHTTPS && lx.Valid
	sig.Shortener = lx.IsShortened
	sig.HighEntropy = lx.HighEntropy
	sig.ExcessiveSubdomains = lx.SubdomainCount > features.ExcessiveSubdomains
	return sig
}

func domainOf(url string) string {
	parts, ok := features.SplitDomain(url)
	if !ok {
		return ""
	}
	return parts.Registrable
}

func buildDeepAnalysis(en *features.Enrichment) *models.DeepAnalysis {
	da := &models.DeepAnalysis{
		DomainAgeDays:    en.WHOIS.Value.DomainAgeDays,
		RegistrationDays: en.WHOIS.Value.RegistrationDays,
		DNSRecords: map[string]any{
			"has_a":         en.DNS.Value.HasA,
			"has_mx":        en.DNS.Value.HasMX,
			"has_ns":        en.DNS.Value.HasNS,
			"has_txt":       en.DNS.Value.HasTXT,
			"total_records": en.DNS.Value.TotalRecords,
		},
		DegradedSignals: en.DegradedReasons(),
	}
	if !en.HTML.Degraded {
		h := en.HTML.Value
		da.ContentAnalysis = map[string]any{
			"external_favicon":      h.ExternalFavicon,
			"form_action_external":  h.FormActionExternal,
			"has_password_input":    h.HasPasswordInput,
			"external_scripts":      h.ExternalScripts,
			"iframe_count":          h.IframeCount,
			"anchor_external_ratio": h.AnchorExternalRatio(),
			"meta_refresh":          h.MetaRefresh,
			"popup_window":          h.PopupWindow,
			"right_click_disabled":  h.RightClickDisabled,
		}
	}
	if en.Typosquat.IsTyposquatting {
		da.Typosquatting = map[string]any{
			"impersonated_domain": en.Typosquat.ImpersonatedDomain,
			"edit_distance":       en.Typosquat.EditDistance,
			"confidence":          en.Typosquat.Confidence,
			"attack_type":         en.Typosquat.AttackType,
		}
	}
	if en.BrandAbuse.HasBrandInSubdomain {
		da.BrandImpersonation = map[string]any{
			"impersonated_brand": en.BrandAbuse.ImpersonatedBrand,
		}
	}
	return da
}

// persistAsync ships the result to the central store off the request path.
func (s *Service) persistAsync(result *models.AnalysisResult) {
	if !s.central.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.central.PersistAnalysis(ctx, result); err != nil {
			s.logger.Warn("central persist failed", "url", result.URL, "error", err)
		}
	}()
}

// RecordFeedback validates and queues one feedback record.
func (s *Service) RecordFeedback(ctx context.Context, req models.FeedbackRequest) error {
	if !models.ValidFeedbackType(req.FeedbackType) {
		return fmt.Errorf("unknown feedback type %q", req.FeedbackType)
	}
	rec := models.FeedbackRecord{
		URL:          strings.TrimSpace(req.URL),
		IsPhishing:   req.IsPhishing != nil && *req.IsPhishing,
		FeedbackType: req.FeedbackType,
		Timestamp:    float64(time.Now().UnixNano()) / 1e9,
	}
	if rec.URL == "" {
		return fmt.Errorf("empty url")
	}
	return s.cache.StoreFeedback(ctx, rec)
}
