package features

import (
	"context"
	"log/slog"
	"time"

	"github.com/miekg/dns"
)

// DNSRecords holds presence flags and totals for the record types the models
// care about. Zero value is the documented degraded default.
type DNSRecords struct {
	HasA         bool `json:"has_a"`
	HasMX        bool `json:"has_mx"`
	HasNS        bool `json:"has_ns"`
	HasTXT       bool `json:"has_txt"`
	TotalRecords int  `json:"total_records"`
}

// Complete is the "proper DNS setup" signal: the domain both resolves and is
// delegated.
func (r DNSRecords) Complete() bool {
	return r.HasA && r.HasNS
}

// FullSetup requires mail routing on top of resolution and delegation.
func (r DNSRecords) FullSetup() bool {
	return r.HasA && r.HasMX && r.HasNS
}

type resolverConfig struct {
	name string
	addr string
}

var defaultResolvers = []resolverConfig{
	{name: "Cloudflare", addr: "1.1.1.1:53"},
	{name: "Google", addr: "8.8.8.8:53"},
}

// DNSClient queries public resolvers for the enrichment record set.
type DNSClient struct {
	client    *dns.Client
	resolvers []resolverConfig
	exchange  func(ctx context.Context, msg *dns.Msg, addr string) (*dns.Msg, error)
}

func NewDNSClient() *DNSClient {
	c := &DNSClient{
		client: &dns.Client{
			Timeout: 3 * time.Second,
			Net:     "udp",
		},
		resolvers: defaultResolvers,
	}
	c.exchange = func(ctx context.Context, msg *dns.Msg, addr string) (*dns.Msg, error) {
		reply, _, err := c.client.ExchangeContext(ctx, msg, addr)
		return reply, err
	}
	return c
}

// Records queries A, MX, NS, and TXT for the domain. Each record type fails
// in isolation: a timeout on MX still leaves A/NS/TXT results intact. Only a
// fully empty outcome is reported as degraded.
func (c *DNSClient) Records(ctx context.Context, domain string) Signal[DNSRecords] {
	var records DNSRecords
	fqdn := dns.Fqdn(domain)
	anyAnswered := false

	for _, rtype := range []uint16{dns.TypeA, dns.TypeMX, dns.TypeNS, dns.TypeTXT} {
		count, err := c.queryCount(ctx, fqdn, rtype)
		if err != nil {
			slog.Debug("DNS query failed", "domain", domain, "type", dns.TypeToString[rtype], "error", err)
			continue
		}
		anyAnswered = true
		if count == 0 {
			continue
		}
		records.TotalRecords += count
		switch rtype {
		case dns.TypeA:
			records.HasA = true
		case dns.TypeMX:
			records.HasMX = true
		case dns.TypeNS:
			records.HasNS = true
		case dns.TypeTXT:
			records.HasTXT = true
		}
	}

	if !anyAnswered {
		return Degraded(DNSRecords{}, "all DNS queries failed for "+domain)
	}
	return Ok(records)
}

func (c *DNSClient) queryCount(ctx context.Context, fqdn string, rtype uint16) (int, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(fqdn, rtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, resolver := range c.resolvers {
		reply, err := c.exchange(ctx, msg, resolver.addr)
		if err != nil {
			lastErr = err
			continue
		}
		return len(reply.Answer), nil
	}
	return 0, lastErr
}
