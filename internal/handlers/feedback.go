package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/analysis"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/models"
)

type FeedbackHandler struct {
	Service *analysis.Service
}

func NewFeedbackHandler(service *analysis.Service) *FeedbackHandler {
	return &FeedbackHandler{Service: service}
}

// SubmitFeedback serves POST /api/feedback. Accepted records go onto the
// learning queue; the syncer ships them to the central store later.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url, is_phishing, and feedback_type are required"})
		return
	}

	if err := h.Service.RecordFeedback(c.Request.Context(), req); err != nil {
		traceID, _ := c.Get("trace_id")
		slog.Warn("Feedback rejected", "trace_id", traceID, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}
