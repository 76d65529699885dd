package joburl

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
)

const maxRedirects = 5

// ErrBlockedHost marks URLs that point at loopback, private, link-local or
// otherwise non-public addresses.
var ErrBlockedHost = errors.New("url host is not publicly routable")

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598).
var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// publicIP reports whether ip is safe to fetch from on behalf of a user.
func publicIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
		if ip[0] == 0 || sharedAddressSpace.Contains(ip) {
			return false
		}
	}
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast())
}

// checkHostLiteral rejects hosts that are non-public without a DNS lookup:
// IP literals and localhost names. Other names are checked when dialing.
func checkHostLiteral(host string) error {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return ErrBlockedHost
	}
	if ip := net.ParseIP(host); ip != nil && !publicIP(ip) {
		return ErrBlockedHost
	}
	return nil
}

// dialControl runs after DNS resolution, so it also covers redirects and
// names that resolve to private addresses.
func dialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if !publicIP(net.ParseIP(host)) {
		return fmt.Errorf("dial %s: %w", host, ErrBlockedHost)
	}
	return nil
}

func guardedTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   dialControl,
	}
	return &http.Transport{
		// No proxy: a proxy would dial the target on our behalf and skip the check.
		Proxy:                 nil,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}

// redirectGuard caps redirects and re-checks scheme and host of every hop.
func redirectGuard(allowPrivate bool) resty.RedirectPolicy {
	return resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
			return fmt.Errorf("redirect to %q: %w", req.URL.Scheme, ErrInvalidURL)
		}
		if allowPrivate {
			return nil
		}
		if err := checkHostLiteral(req.URL.Hostname()); err != nil {
			return fmt.Errorf("redirect to %s: %w", req.URL.Hostname(), err)
		}
		return nil
	})
}
