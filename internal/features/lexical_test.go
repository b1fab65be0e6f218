package features

import (
	"math"
	"strings"
	"testing"
)

func TestExtractLexicalBenign(t *testing.T) {
	lx := ExtractLexical("https://www.example.com/about")

	if !lx.Valid {
		t.Fatal("expected valid URL")
	}
	if lx.HasIP {
		t.Error("example.com flagged as IP literal")
	}
	if !lx.HasHTTPS {
		t.Error("https scheme not detected")
	}
	if lx.SuspiciousTLD {
		t.Error(".com flagged as suspicious TLD")
	}
	if lx.KeywordHits != 0 {
		t.Errorf("keyword hits = %d, want 0", lx.KeywordHits)
	}
	if lx.Domain.Registrable != "example.com" {
		t.Errorf("registrable = %q, want example.com", lx.Domain.Registrable)
	}
}

func TestExtractLexicalIPLiteral(t *testing.T) {
	lx := ExtractLexical("http://192.168.1.10/login")
	if !lx.HasIP {
		t.Error("IP literal host not detected")
	}
	if lx.HasHTTPS {
		t.Error("http scheme reported as https")
	}

	// an IP anywhere in the URL counts, matching the trained feature
	lx = ExtractLexical("https://example.com/redirect?to=10.0.0.1")
	if !lx.HasIP {
		t.Error("embedded IP not detected")
	}
}

func TestExtractLexicalPhishingShape(t *testing.T) {
	lx := ExtractLexical("http://paypal-secure-verify-account.tk/login?update=1")

	if !lx.HasHyphen {
		t.Error("hyphenated domain not detected")
	}
	if !lx.SuspiciousTLD {
		t.Error(".tk not flagged")
	}
	if lx.KeywordHits < 2 {
		t.Errorf("keyword hits = %d, want >= 2 (secure, verify, account, login, update)", lx.KeywordHits)
	}
	if !lx.MultipleKeywords {
		t.Error("multiple keywords flag not set")
	}
	if lx.BrandHits == 0 {
		t.Error("paypal brand mention not counted")
	}
	if lx.HasHTTPS {
		t.Error("plain http reported as https")
	}
}

func TestExtractLexicalThresholds(t *testing.T) {
	longPath := strings.Repeat("a", 80)
	lx := ExtractLexical("https://example.com/" + longPath)
	if !lx.LongURL {
		t.Errorf("URL of length %d not flagged long (threshold %d)", lx.URLLength, LongURLThreshold)
	}

	lx = ExtractLexical("https://a.b.c.d.example.com/")
	if lx.SubdomainCount <= ExcessiveSubdomains {
		t.Errorf("subdomain count = %d, want > %d", lx.SubdomainCount, ExcessiveSubdomains)
	}
}

func TestExtractLexicalShortener(t *testing.T) {
	lx := ExtractLexical("https://bit.ly/3xYzAbc")
	if !lx.IsShortened {
		t.Error("bit.ly not recognized as shortener")
	}
	lx = ExtractLexical("https://example.com/bit.ly")
	if lx.IsShortened {
		t.Error("shortener name in path flagged the domain")
	}
}

func TestExtractLexicalInvalidURL(t *testing.T) {
	lx := ExtractLexical("not a url at all")
	if lx.Valid {
		t.Error("garbage input reported valid")
	}

	lx = ExtractLexical("")
	if lx.Valid {
		t.Error("empty input reported valid")
	}
}

func TestShannonEntropy(t *testing.T) {
	if got := shannonEntropy("aaaa"); got != 0 {
		t.Errorf("entropy(aaaa) = %f, want 0", got)
	}
	// four distinct symbols, uniform: exactly 2 bits
	if got := shannonEntropy("abcd"); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("entropy(abcd) = %f, want 2.0", got)
	}
	if got := shannonEntropy(""); got != 0 {
		t.Errorf("entropy(\"\") = %f, want 0", got)
	}
}

func TestLightweightVectorComplete(t *testing.T) {
	vec := (&Extractor{}).ExtractLightweight("https://www.example.com/").Vector()

	if len(vec) != len(LightweightFeatureNames) {
		t.Fatalf("vector has %d keys, schema has %d", len(vec), len(LightweightFeatureNames))
	}
	for _, name := range LightweightFeatureNames {
		if _, ok := vec[name]; !ok {
			t.Errorf("vector missing %q", name)
		}
	}
}

func TestDeepVectorComplete(t *testing.T) {
	vec := defaultDeepFeatures().Vector()

	if len(vec) != len(DeepFeatureNames) {
		t.Fatalf("vector has %d keys, schema has %d", len(vec), len(DeepFeatureNames))
	}
	for _, name := range DeepFeatureNames {
		if _, ok := vec[name]; !ok {
			t.Errorf("vector missing %q", name)
		}
	}
	if vec["LegitimacyScore"] != 0.5 {
		t.Errorf("default LegitimacyScore = %f, want 0.5", vec["LegitimacyScore"])
	}
}
