package features

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/safeurl"
)

const (
	htmlFetchTimeout = 3 * time.Second
	htmlMaxBody      = 1 << 20
	htmlUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
)

// HTMLContent is the markup feature family. DefaultHTMLContent is the
// documented degraded value; InternalLinks starts at 1 so the anchor ratio
// never divides by zero.
type HTMLContent struct {
	ExternalFavicon    bool `json:"external_favicon"`
	FormActionExternal bool `json:"form_action_external"`
	FormActionMissing  bool `json:"form_action_missing"`
	HasPasswordInput   bool `json:"has_password_input"`
	HasHiddenInput     bool `json:"has_hidden_input"`
	ExternalScripts    int  `json:"external_scripts"`
	ExternalStyles     int  `json:"external_styles"`
	IframeCount        int  `json:"iframe_count"`
	ExternalLinks      int  `json:"external_links"`
	InternalLinks      int  `json:"internal_links"`
	MetaRefresh        bool `json:"meta_refresh"`
	PopupWindow        bool `json:"popup_window"`
	RightClickDisabled bool `json:"right_click_disabled"`
}

func DefaultHTMLContent() HTMLContent {
	return HTMLContent{InternalLinks: 1}
}

// AnchorExternalRatio is external anchors over all anchors.
func (h HTMLContent) AnchorExternalRatio() float64 {
	total := h.ExternalLinks + h.InternalLinks
	if total == 0 {
		return 0
	}
	return float64(h.ExternalLinks) / float64(total)
}

// HTMLClient performs the single bounded page fetch of the deep pipeline.
// Every fetch is gated through the safety guard; redirects are refused so a
// page cannot bounce the request somewhere the guard never saw.
type HTMLClient struct {
	guard  *safeurl.Guard
	client *http.Client
}

func NewHTMLClient(guard *safeurl.Guard) *HTMLClient {
	return &HTMLClient{
		guard: guard,
		client: &http.Client{
			Timeout: htmlFetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Analyze fetches the page and extracts the markup features. Any failure at
// any stage — unsafe URL, unsafe resolved IP, timeout, non-200, bad markup —
// yields the all-default set.
func (c *HTMLClient) Analyze(ctx context.Context, rawURL string) Signal[HTMLContent] {
	if !c.guard.IsURLSafe(ctx, rawURL) {
		return Degraded(DefaultHTMLContent(), "URL rejected by safety guard")
	}
	if ip := c.guard.ResolveFirst(ctx, rawURL); ip == nil || !c.guard.IsIPSafe(ip) {
		return Degraded(DefaultHTMLContent(), "resolved IP rejected by safety guard")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Degraded(DefaultHTMLContent(), "request build: "+err.Error())
	}
	req.Header.Set("User-Agent", htmlUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Debug("HTML fetch failed", "url", rawURL, "error", err)
		return Degraded(DefaultHTMLContent(), "fetch: "+err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Degraded(DefaultHTMLContent(), fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, htmlMaxBody))
	if err != nil {
		return Degraded(DefaultHTMLContent(), "parse: "+err.Error())
	}

	parts, ok := SplitDomain(rawURL)
	if !ok {
		return Degraded(DefaultHTMLContent(), "unparseable host")
	}

	return Ok(extractHTMLContent(doc, parts.Registrable))
}

func extractHTMLContent(doc *goquery.Document, pageDomain string) HTMLContent {
	content := DefaultHTMLContent()
	content.InternalLinks = 0

	doc.Find(`link[rel*="icon"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if isExternalRef(href, pageDomain) {
			content.ExternalFavicon = true
			return false
		}
		return true
	})

	doc.Find("form").Each(func(_ int, s *goquery.Selection) {
		action, exists := s.Attr("action")
		action = strings.TrimSpace(action)
		if !exists || action == "" || action == "#" || action == "about:blank" {
			content.FormActionMissing = true
			return
		}
		if isExternalRef(action, pageDomain) {
			content.FormActionExternal = true
		}
	})

	if doc.Find(`input[type="password"]`).Length() > 0 {
		content.HasPasswordInput = true
	}
	if doc.Find(`input[type="hidden"]`).Length() > 0 {
		content.HasHiddenInput = true
	}

	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if isExternalRef(src, pageDomain) {
			content.ExternalScripts++
		}
	})
	doc.Find(`link[rel="stylesheet"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if isExternalRef(href, pageDomain) {
			content.ExternalStyles++
		}
	})

	content.IframeCount = doc.Find("iframe").Length()

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(strings.ToLower(href), "http") {
			if isExternalRef(href, pageDomain) {
				content.ExternalLinks++
			} else {
				content.InternalLinks++
			}
		} else {
			content.InternalLinks++
		}
	})

	doc.Find("meta[http-equiv]").Each(func(_ int, s *goquery.Selection) {
		equiv, _ := s.Attr("http-equiv")
		if strings.EqualFold(equiv, "refresh") {
			content.MetaRefresh = true
		}
	})

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if strings.Contains(text, "window.open") {
			content.PopupWindow = true
		}
		if strings.Contains(text, "contextmenu") || strings.Contains(text, "event.button==2") ||
			strings.Contains(text, "event.button == 2") {
			content.RightClickDisabled = true
		}
	})
	if _, exists := doc.Find("body[oncontextmenu]").Attr("oncontextmenu"); exists {
		content.RightClickDisabled = true
	}

	return content
}

// isExternalRef reports whether an absolute href points outside pageDomain.
// Relative references are internal by definition.
func isExternalRef(ref, pageDomain string) bool {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(strings.ToLower(ref), "http") {
		return false
	}
	parts, ok := SplitDomain(ref)
	if !ok {
		return false
	}
	return parts.Registrable != pageDomain
}
