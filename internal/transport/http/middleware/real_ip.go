package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RealIP rewrites RemoteAddr to the client address reported by
// X-Forwarded-For or X-Real-IP, but only when the direct peer is one of the
// trusted proxies. With no trusted proxies the headers are ignored, so rate
// limits keyed on the client IP cannot be dodged by forging them.
//
// X-Forwarded-For is walked right to left and the first hop outside the
// trusted set is taken as the client.
func RealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			peer, ok := parseAddr(remoteHost(r.RemoteAddr))
			if ok && isTrusted(trusted, peer) {
				if ip := forwardedClient(r, trusted); ip.IsValid() {
					r.RemoteAddr = net.JoinHostPort(ip.String(), "0")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedClient(r *http.Request, trusted []netip.Prefix) netip.Addr {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		var last netip.Addr
		for i := len(hops) - 1; i >= 0; i-- {
			ip, ok := parseAddr(hops[i])
			if !ok {
				// a malformed hop ends the trusted chain
				return last
			}
			last = ip
			if !isTrusted(trusted, ip) {
				return ip
			}
		}
		return last
	}
	if ip, ok := parseAddr(r.Header.Get("X-Real-IP")); ok {
		return ip
	}
	return netip.Addr{}
}

func remoteHost(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func parseAddr(s string) (netip.Addr, bool) {
	ip, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}

func isTrusted(trusted []netip.Prefix, ip netip.Addr) bool {
	for _, p := range trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
