package api

import (
	"net"
	"net/http"
	"strings"
)

// extractIP picks the client address from proxy headers, preferring the
// first X-Forwarded-For hop.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		first, _, _ := strings.Cut(xForwardedFor, ",")
		return strings.TrimSpace(first)
	}
	return strings.TrimSpace(xRealIP)
}

// clientIP returns the request's client address. middleware.RealIP has
// already rewritten RemoteAddr from the proxy headers when present.
func clientIP(r *http.Request) string {
	if ip := extractIP(r.Header.Get("X-Forwarded-For"), r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
