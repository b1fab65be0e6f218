package features

import (
	"context"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"time"
)

// WHOISInfo carries registration timing signals. Both fields default to -1
// ("unknown") when the registry gives nothing usable.
type WHOISInfo struct {
	DomainAgeDays    int `json:"domain_age_days"`
	RegistrationDays int `json:"registration_length_days"`
}

func defaultWHOISInfo() WHOISInfo {
	return WHOISInfo{DomainAgeDays: -1, RegistrationDays: -1}
}

var whoisServers = map[string]string{
	"com": "whois.verisign-grs.com", "net": "whois.verisign-grs.com",
	"org": "whois.pir.org", "io": "whois.nic.io",
	"dev": "whois.nic.google", "app": "whois.nic.google",
	"co": "whois.nic.co", "me": "whois.nic.me",
	"uk": "whois.nic.uk", "us": "whois.nic.us",
	"ca": "whois.cira.ca", "au": "whois.auda.org.au",
	"de": "whois.denic.de", "fr": "whois.nic.fr",
	"nl": "whois.sidn.nl", "eu": "whois.eu",
	"info": "whois.afilias.net", "biz": "whois.nic.biz",
	"xyz": "whois.nic.xyz", "top": "whois.nic.top",
	"tk": "whois.dot.tk", "ml": "whois.nic.ml",
	"ga": "whois.nic.ga", "cf": "whois.nic.cf",
	"online": "whois.nic.online", "site": "whois.nic.site",
	"cloud": "whois.nic.cloud", "live": "whois.nic.live",
}

var (
	creationDateRe = regexp.MustCompile(`(?im)^\s*(?:creation date|created(?: on)?|registered(?: on)?|registration date)\s*:?\s*(.+)$`)
	expiryDateRe   = regexp.MustCompile(`(?im)^\s*(?:registry expiry date|expiration date|expiry date|expires(?: on)?|paid-till)\s*:?\s*(.+)$`)
)

var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02 15:04:05",
	"02.01.2006",
}

// WHOISClient fetches domain registration info over raw port-43 WHOIS.
type WHOISClient struct {
	timeout time.Duration
	dial    func(ctx context.Context, server string) (net.Conn, error)
	now     func() time.Time
}

func NewWHOISClient() *WHOISClient {
	c := &WHOISClient{
		timeout: 5 * time.Second,
		now:     time.Now,
	}
	c.dial = func(ctx context.Context, server string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", server+":43")
	}
	return c
}

// Lookup resolves creation/expiry dates for a registrable domain and derives
// age and registration length in days. Best-effort: any failure degrades to
// the unknown defaults instead of erroring.
func (c *WHOISClient) Lookup(ctx context.Context, domain string) Signal[WHOISInfo] {
	tld := lastLabel(domain)
	server, ok := whoisServers[tld]
	if !ok {
		return Degraded(defaultWHOISInfo(), "no WHOIS server for TLD ."+tld)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dial(ctx, server)
	if err != nil {
		slog.Debug("WHOIS dial failed", "domain", domain, "server", server, "error", err)
		return Degraded(defaultWHOISInfo(), "whois dial: "+err.Error())
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte(domain + "\r\n")); err != nil {
		return Degraded(defaultWHOISInfo(), "whois write: "+err.Error())
	}

	var buf [8192]byte
	var response []byte
	for {
		n, err := conn.Read(buf[:])
		if n > 0 {
			response = append(response, buf[:n]...)
		}
		if err != nil {
			break
		}
		if len(response) > 32768 {
			break
		}
	}

	info, ok := c.parseDates(string(response))
	if !ok {
		return Degraded(defaultWHOISInfo(), "no parseable dates in WHOIS response")
	}
	return Ok(info)
}

// parseDates extracts the registration window from raw WHOIS output. Several
// registries return multiple creation-date candidates; the oldest one that
// parses is treated as the registration date.
func (c *WHOISClient) parseDates(output string) (WHOISInfo, bool) {
	info := defaultWHOISInfo()

	created, createdOK := oldestDate(creationDateRe.FindAllStringSubmatch(output, -1))
	expires, expiresOK := oldestDate(expiryDateRe.FindAllStringSubmatch(output, -1))

	if !createdOK {
		return info, false
	}

	info.DomainAgeDays = int(c.now().Sub(created).Hours() / 24)
	if expiresOK && expires.After(created) {
		info.RegistrationDays = int(expires.Sub(created).Hours() / 24)
	}
	return info, true
}

func oldestDate(matches [][]string) (time.Time, bool) {
	var oldest time.Time
	found := false
	for _, m := range matches {
		raw := strings.TrimSpace(m[1])
		for _, layout := range whoisDateLayouts {
			t, err := time.Parse(layout, raw)
			if err != nil {
				continue
			}
			if !found || t.Before(oldest) {
				oldest = t
				found = true
			}
			break
		}
	}
	return oldest, found
}
