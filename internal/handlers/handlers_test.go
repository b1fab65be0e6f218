package handlers_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/analysis"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/central"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/features"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/handlers"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T, withModel bool) *gin.Engine {
	t.Helper()

	var artifact *model.Artifact
	if withModel {
		ensemble, err := model.ParseEnsemble([]byte(`{
			"model_type": "random_forest",
			"version": "test",
			"classes": [0, 1],
			"trees": [{
				"children_left": [1, -1, -1],
				"children_right": [2, -1, -1],
				"feature": [0, -2, -2],
				"threshold": [0.5, 0, 0],
				"value": [[0, 0], [9, 1], [1, 9]]
			}]
		}`))
		if err != nil {
			t.Fatal(err)
		}
		artifact = &model.Artifact{
			Classifier:  ensemble,
			FeatureList: []string{"suspicious_tld"},
			Info:        model.Info{Name: "lightweight", Version: "test"},
		}
	}

	service := analysis.New(analysis.Config{
		Extractor:        &features.Extractor{},
		Central:          central.NewClient("", "", slog.Default()),
		LightweightModel: artifact,
		Logger:           slog.Default(),
	})

	router := gin.New()
	analyzeHandler := handlers.NewAnalyzeHandler(service)
	healthHandler := handlers.NewHealthHandler(service, nil, "test")
	router.POST("/api/analyze-url", analyzeHandler.AnalyzeURL)
	router.GET("/health", healthHandler.HealthCheck)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeURLEndpoint(t *testing.T) {
	router := testRouter(t, true)

	w := postJSON(router, "/api/analyze-url", `{"url": "http://paypal-verify-account.tk/login"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var result map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result["is_phishing"] != true {
		t.Errorf("is_phishing = %v, want true", result["is_phishing"])
	}
	if _, ok := result["threat_score"].(float64); !ok {
		t.Error("threat_score missing from response")
	}
	if result["explanation"] == "" {
		t.Error("empty explanation")
	}
}

func TestAnalyzeURLRequiresURL(t *testing.T) {
	router := testRouter(t, true)

	if w := postJSON(router, "/api/analyze-url", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", w.Code)
	}
	if w := postJSON(router, "/api/analyze-url", `not json`); w.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d, want 400", w.Code)
	}
}

func TestAnalyzeURLModelMissing(t *testing.T) {
	router := testRouter(t, false)

	w := postJSON(router, "/api/analyze-url", `{"url": "https://example.com/"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 with no model loaded", w.Code)
	}
}

func TestAnalyzeURLSafeDefaultOnScoringFault(t *testing.T) {
	// a tree whose child index points past the node arrays blows up during
	// inference; the endpoint must answer with the safe default, not a 500
	ensemble, err := model.ParseEnsemble([]byte(`{
		"model_type": "random_forest",
		"classes": [0, 1],
		"trees": [{
			"children_left": [5],
			"children_right": [5],
			"feature": [0],
			"threshold": [0.5],
			"value": [[1, 1]]
		}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	service := analysis.New(analysis.Config{
		Extractor: &features.Extractor{},
		Central:   central.NewClient("", "", slog.Default()),
		LightweightModel: &model.Artifact{
			Classifier:  ensemble,
			FeatureList: []string{"suspicious_tld"},
			Info:        model.Info{Name: "lightweight", Version: "broken"},
		},
		Logger: slog.Default(),
	})
	router := gin.New()
	router.POST("/api/analyze-url", handlers.NewAnalyzeHandler(service).AnalyzeURL)

	w := postJSON(router, "/api/analyze-url", `{"url": "https://www.example.com/"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 safe default", w.Code)
	}

	var result map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result["is_phishing"] != false {
		t.Errorf("is_phishing = %v, want false", result["is_phishing"])
	}
	if result["threat_score"] != float64(0) {
		t.Errorf("threat_score = %v, want 0", result["threat_score"])
	}
	if !strings.Contains(result["explanation"].(string), "could not be completed") {
		t.Errorf("explanation = %v, want the incomplete-analysis message", result["explanation"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200 even with degraded collaborators", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
	modelInfo, ok := body["models"].(map[string]any)
	if !ok {
		t.Fatal("models block missing")
	}
	if modelInfo["lightweight_loaded"] != false {
		t.Error("missing model reported as loaded")
	}
}
