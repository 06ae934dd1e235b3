package domain

import (
	"net"
	"net/http"
	"strings"
)

// forwarding headers in trust order, first valid IP wins
var ipHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"CF-Connecting-IP",
	"X-Client-IP",
}

// RealIP extracts the best-effort client IP from proxy headers,
// falling back to the socket peer address
func RealIP(r *http.Request) string {
	for _, h := range ipHeaders {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		// X-Forwarded-For may carry a hop chain; the client is leftmost
		for _, part := range strings.Split(v, ",") {
			if ip := normalizeIP(part); ip != "" {
				return ip
			}
		}
	}
	if ip := normalizeIP(r.RemoteAddr); ip != "" {
		return ip
	}
	return ""
}

// normalizeIP trims, strips a port when present, and validates
func normalizeIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	if ip := net.ParseIP(s); ip != nil {
		return ip.String()
	}
	return ""
}
