package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"

	"github.com/JonMunkholm/catalogimport/internal/core"
)

// TrustedRealIP resolves the client IP. X-Real-IP and X-Forwarded-For are
// honoured only when the connection comes from one of trustedCIDRs; bare
// IPs are accepted as single-host prefixes. The result replaces
// r.RemoteAddr and is stored with core.ContextWithIPAddress.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	var trusted []netip.Prefix
	for _, cidr := range trustedCIDRs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if p, err := netip.ParsePrefix(cidr); err == nil {
			trusted = append(trusted, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(cidr); err == nil {
			trusted = append(trusted, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		slog.Warn("realip: invalid trusted proxy CIDR, skipping", "cidr", cidr)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client, ok := remoteAddr(r.RemoteAddr)
			if ok && isTrusted(client, trusted) {
				if fwd, ok := forwardedFor(r); ok {
					client = fwd
					r.RemoteAddr = fwd.String()
				}
			}
			if ok {
				r = r.WithContext(core.ContextWithIPAddress(r.Context(), client.String()))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forwardedFor returns the first valid client address from X-Real-IP or,
// failing that, the first X-Forwarded-For hop.
func forwardedFor(r *http.Request) (netip.Addr, bool) {
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		addr, err := netip.ParseAddr(rip)
		return addr.Unmap(), err == nil
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		addr, err := netip.ParseAddr(strings.TrimSpace(first))
		return addr.Unmap(), err == nil
	}
	return netip.Addr{}, false
}

// remoteAddr parses "host:port" or a bare IP.
func remoteAddr(addr string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(addr); err == nil {
		return ap.Addr().Unmap(), true
	}
	a, err := netip.ParseAddr(addr)
	return a.Unmap(), err == nil
}

func isTrusted(ip netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the address resolved by TrustedRealIP, or RemoteAddr.
func ClientIP(r *http.Request) string {
	if ip := core.GetIPAddressFromContext(r.Context()); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
