// Package handlers holds the HTTP endpoints. Handlers stay thin: bind,
// delegate to the analysis service, map errors to status codes.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/analysis"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/decision"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/models"
)

type AnalyzeHandler struct {
	Service *analysis.Service
}

func NewAnalyzeHandler(service *analysis.Service) *AnalyzeHandler {
	return &AnalyzeHandler{Service: service}
}

// AnalyzeURL serves POST /api/analyze-url, the lightweight profile used by
// the browser extension.
func (h *AnalyzeHandler) AnalyzeURL(c *gin.Context) {
	h.serve(c, h.Service.AnalyzeLightweight)
}

// DeepAnalyzeURL serves POST /api/deep-analyze-url, the full enrichment
// profile used by the chatbot backend.
func (h *AnalyzeHandler) DeepAnalyzeURL(c *gin.Context) {
	h.serve(c, h.Service.AnalyzeDeep)
}

func (h *AnalyzeHandler) serve(c *gin.Context, run func(context.Context, models.AnalysisRequest) (*models.AnalysisResult, error)) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	// A fault inside scoring must not take the request down with it. The
	// caller gets the safe default: no phishing claim, zero score, and an
	// explanation saying the analysis did not complete.
	defer func() {
		if r := recover(); r != nil {
			traceID, _ := c.Get("trace_id")
			slog.Error("Analysis panicked, returning safe default",
				"trace_id", traceID,
				"url", req.URL,
				"error", fmt.Sprintf("%v", r),
			)
			c.JSON(http.StatusOK, safeDefaultResult(req.URL))
		}
	}()

	result, err := run(c.Request.Context(), req)
	if err != nil {
		traceID, _ := c.Get("trace_id")
		if errors.Is(err, analysis.ErrModelUnavailable) {
			slog.Warn("Analysis rejected, model not loaded", "trace_id", traceID)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "classification model not available"})
			return
		}
		slog.Error("Analysis failed", "trace_id", traceID, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// safeDefaultResult is the response body for a scoring fault: deliberately
// non-alarming, and explicit that no verdict was reached.
func safeDefaultResult(url string) *models.AnalysisResult {
	return &models.AnalysisResult{
		URL:             url,
		IsPhishing:      false,
		ThreatScore:     0,
		Probability:     0,
		ConfidenceLevel: decision.ConfidenceLow,
		Explanation:     "The analysis could not be completed due to an internal error. No verdict was reached; treat the URL with normal caution and verify the domain manually.",
		Recommendations: []string{
			"Retry the analysis shortly.",
			"Verify the domain spelling matches the site you intended to visit.",
		},
		ModelVersion: "unavailable",
		Timestamp:    time.Now().UTC(),
	}
}
