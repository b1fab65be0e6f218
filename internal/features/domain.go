package features

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// DomainParts is the registrable-domain split of a URL's host, e.g.
// login.secure.paypal.com → Subdomain "login.secure", Registrable
// "paypal.com", Base "paypal", TLD "com".
type DomainParts struct {
	Subdomain   string // labels left of the registrable domain, may be empty
	Registrable string // e.g. "paypal.com"
	Base        string // registrable domain minus its public suffix, e.g. "paypal"
	TLD         string // public suffix, e.g. "com" or "co.uk"
	Host        string // full normalized host
}

// SplitDomain normalizes the URL's host (IDNA lookup form) and splits it
// around the public suffix. Returns ok=false when the URL has no usable host.
func SplitDomain(rawURL string) (DomainParts, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return DomainParts{}, false
	}
	host := strings.ToLower(strings.TrimSuffix(parsed.Hostname(), "."))
	if host == "" || !strings.Contains(host, ".") {
		return DomainParts{}, false
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}

	suffix, _ := publicsuffix.PublicSuffix(host)
	if suffix == "" || suffix == host {
		return DomainParts{}, false
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return DomainParts{}, false
	}

	base := strings.TrimSuffix(registrable, "."+suffix)
	sub := strings.TrimSuffix(host, registrable)
	sub = strings.TrimSuffix(sub, ".")

	return DomainParts{
		Subdomain:   sub,
		Registrable: registrable,
		Base:        base,
		TLD:         suffix,
		Host:        host,
	}, true
}

// SubdomainCount is the number of labels left of the registrable domain.
func (d DomainParts) SubdomainCount() int {
	if d.Subdomain == "" {
		return 0
	}
	return len(strings.Split(d.Subdomain, "."))
}
