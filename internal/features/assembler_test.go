package features

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/safeurl"
)

// failingExtractor wires every fetcher to a dead backend so each enrichment
// family exercises its degraded path.
func failingExtractor() *Extractor {
	whois := NewWHOISClient()
	whois.dial = func(ctx context.Context, server string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}

	dnsc := NewDNSClient()
	dnsc.exchange = func(ctx context.Context, msg *dns.Msg, addr string) (*dns.Msg, error) {
		return nil, errors.New("i/o timeout")
	}

	guard := safeurl.New(safeurl.WithResolver(func(ctx context.Context, host string) ([]net.IP, error) {
		return nil, errors.New("no such host")
	}))

	return &Extractor{WHOIS: whois, DNS: dnsc, HTML: NewHTMLClient(guard)}
}

func TestExtractDeepAllDegraded(t *testing.T) {
	e := failingExtractor()
	feats, en := e.ExtractDeep(context.Background(), "https://unreachable-domain-zzz.com/login")

	if len(en.DegradedReasons()) != 3 {
		t.Fatalf("degraded reasons = %v, want all three families", en.DegradedReasons())
	}

	// unknown WHOIS means the age-derived features default to 0
	if feats.AgeOfDomain != 0 || feats.DomainRegLen != 0 {
		t.Errorf("age features = %v/%v, want 0/0 on degraded WHOIS", feats.AgeOfDomain, feats.DomainRegLen)
	}
	if feats.DNSRecording != 0 || feats.WebsiteTraffic != 0 {
		t.Errorf("dns features = %v/%v, want 0/0 on degraded DNS", feats.DNSRecording, feats.WebsiteTraffic)
	}
	if feats.RequestURL != 0 {
		t.Errorf("RequestURL = %v, want 0 on degraded HTML", feats.RequestURL)
	}
	// lexical work is untouched by network failures
	if feats.UsesHTTP != 0 {
		t.Errorf("UsesHTTP = %v for an https URL", feats.UsesHTTP)
	}
}

func TestExtractDeepInvalidURL(t *testing.T) {
	e := failingExtractor()
	feats, en := e.ExtractDeep(context.Background(), ":::not-a-url")

	if feats != defaultDeepFeatures() {
		t.Errorf("invalid URL features = %+v, want defaults", feats)
	}
	if en.Typosquat.IsTyposquatting || en.BrandAbuse.HasBrandInSubdomain {
		t.Error("impersonation detectors fired on invalid URL")
	}
}

func TestExtractDeepIdempotent(t *testing.T) {
	e := failingExtractor()
	url := "http://paypal-verify.tk/account"

	first, _ := e.ExtractDeep(context.Background(), url)
	second, _ := e.ExtractDeep(context.Background(), url)
	if first != second {
		t.Errorf("repeat extraction diverged:\n%+v\n%+v", first, second)
	}
}

func TestExtractDeepHealthySignals(t *testing.T) {
	whois := NewWHOISClient()
	whois.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	whois.dial = func(ctx context.Context, server string) (net.Conn, error) {
		client, server43 := net.Pipe()
		go func() {
			buf := make([]byte, 256)
			server43.Read(buf)
			fmt.Fprintf(server43, "Creation Date: 2010-05-01T00:00:00Z\r\nRegistry Expiry Date: 2027-05-01T00:00:00Z\r\n")
			server43.Close()
		}()
		return client, nil
	}

	dnsc := NewDNSClient()
	dnsc.exchange = func(ctx context.Context, msg *dns.Msg, addr string) (*dns.Msg, error) {
		reply := new(dns.Msg)
		reply.SetReply(msg)
		q := msg.Question[0]
		var rr dns.RR
		switch q.Qtype {
		case dns.TypeA:
			rr, _ = dns.NewRR(q.Name + " 300 IN A 93.184.216.34")
		case dns.TypeMX:
			rr, _ = dns.NewRR(q.Name + " 300 IN MX 10 mail." + q.Name)
		case dns.TypeNS:
			rr, _ = dns.NewRR(q.Name + " 300 IN NS ns1." + q.Name)
		case dns.TypeTXT:
			rr, _ = dns.NewRR(q.Name + ` 300 IN TXT "v=spf1 -all"`)
		}
		reply.Answer = append(reply.Answer, rr, rr)
		return reply, nil
	}

	guard := safeurl.New(safeurl.WithResolver(func(ctx context.Context, host string) ([]net.IP, error) {
		return nil, errors.New("no fetch in this test")
	}))

	e := &Extractor{WHOIS: whois, DNS: dnsc, HTML: NewHTMLClient(guard)}
	feats, en := e.ExtractDeep(context.Background(), "https://old-established.com/")

	if en.WHOIS.Degraded {
		t.Fatalf("WHOIS degraded: %s", en.WHOIS.Reason)
	}
	if feats.AgeOfDomain != 1 {
		t.Errorf("AgeOfDomain = %v for a 2010 registration", feats.AgeOfDomain)
	}
	if feats.DomainRegLen != 1 {
		t.Errorf("DomainRegLen = %v for a 17-year window", feats.DomainRegLen)
	}
	if feats.DNSRecording != 1 || feats.PageRank != 1 {
		t.Errorf("dns features = %v/%v, want 1/1 with full record set", feats.DNSRecording, feats.PageRank)
	}
	if feats.WebsiteTraffic != 1 {
		t.Errorf("WebsiteTraffic = %v with 8 records", feats.WebsiteTraffic)
	}
}

func TestLegitimacyScore(t *testing.T) {
	base := func() (Lexical, DeepFeatures) {
		lx := ExtractLexical("https://www.example.org/")
		return lx, DeepFeatures{}
	}

	t.Run("neutral baseline", func(t *testing.T) {
		lx, f := base()
		if got := legitimacyScore(lx, f); got != 0.5 {
			t.Errorf("score = %f, want 0.5", got)
		}
	})

	t.Run("aged with full dns", func(t *testing.T) {
		lx, f := base()
		f.AgeOfDomain = 1
		f.DNSRecording = 1
		f.PageRank = 1
		if got := legitimacyScore(lx, f); math.Abs(got-0.8) > 1e-9 {
			t.Errorf("score = %f, want 0.8", got)
		}
	})

	t.Run("impersonation floors to zero", func(t *testing.T) {
		lx, f := base()
		f.UsesHTTP = 1
		f.IsTyposquatting = 1
		f.BrandInSubdomain = 1
		if got := legitimacyScore(lx, f); got != 0 {
			t.Errorf("score = %f, want 0", got)
		}
	})

	t.Run("allowlisted http pinned", func(t *testing.T) {
		lx := ExtractLexical("http://example.com/")
		f := DeepFeatures{UsesHTTP: 1}
		if got := legitimacyScore(lx, f); got != 0.8 {
			t.Errorf("score = %f, want 0.8 for allowlisted plain-http host", got)
		}
	})
}
