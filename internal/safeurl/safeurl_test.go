package safeurl

import (
	"context"
	"errors"
	"net"
	"testing"
)

func staticResolver(addrs map[string][]string) Resolver {
	return func(_ context.Context, host string) ([]net.IP, error) {
		strs, ok := addrs[host]
		if !ok {
			return nil, errors.New("no such host")
		}
		ips := make([]net.IP, 0, len(strs))
		for _, s := range strs {
			ips = append(ips, net.ParseIP(s))
		}
		return ips, nil
	}
}

func TestIsURLSafe_RejectsInternalTargets(t *testing.T) {
	g := New(WithResolver(staticResolver(nil)))

	rejected := []string{
		"http://127.0.0.1/admin",
		"http://169.254.169.254/",
		"ftp://example.com/file",
		"http://localhost:8080/",
		"http://nodots",
		"http://admin.corp.example/",
		"",
	}
	for _, u := range rejected {
		if g.IsURLSafe(context.Background(), u) {
			t.Errorf("expected %q to be rejected", u)
		}
	}
}

func TestIsURLSafe_AllowsKnownSafeHosts(t *testing.T) {
	// allow-listed hosts pass without resolution
	g := New(WithResolver(staticResolver(nil)))

	if !g.IsURLSafe(context.Background(), "https://example.com/") {
		t.Error("expected https://example.com/ to be accepted")
	}
	if !g.IsURLSafe(context.Background(), "http://info.cern.ch/") {
		t.Error("expected http://info.cern.ch/ to be accepted")
	}
}

func TestIsURLSafe_ResolutionChecks(t *testing.T) {
	g := New(WithResolver(staticResolver(map[string][]string{
		"public.test":    {"93.184.216.34"},
		"private.test":   {"10.1.2.3"},
		"dual.test":      {"93.184.216.34", "192.168.0.5"},
		"testnet.test":   {"192.0.2.55"},
		"multicast.test": {"224.0.0.1"},
	})))

	ctx := context.Background()

	if !g.IsURLSafe(ctx, "https://public.test/login") {
		t.Error("expected public.test to be accepted")
	}
	for _, u := range []string{
		"https://private.test/",
		"https://dual.test/",
		"https://testnet.test/",
		"https://multicast.test/",
		"https://unresolvable.test/",
	} {
		if g.IsURLSafe(ctx, u) {
			t.Errorf("expected %q to be rejected", u)
		}
	}
}

func TestIsIPSafe(t *testing.T) {
	g := New()

	unsafe := []string{
		"10.0.0.1", "172.16.5.5", "192.168.1.1", "127.0.0.1",
		"169.254.169.254", "192.0.2.1", "224.0.0.1", "240.0.0.1", "0.0.0.0",
	}
	for _, s := range unsafe {
		if g.IsIPSafe(net.ParseIP(s)) {
			t.Errorf("expected %s to be unsafe", s)
		}
	}

	safe := []string{"8.8.8.8", "93.184.216.34", "1.1.1.1"}
	for _, s := range safe {
		if !g.IsIPSafe(net.ParseIP(s)) {
			t.Errorf("expected %s to be safe", s)
		}
	}

	if g.IsIPSafe(nil) {
		t.Error("expected nil IP to be unsafe")
	}
}
