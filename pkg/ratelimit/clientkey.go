package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Forwarding headers, in the order they are consulted
var ClientHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"X-Client-IP",
	"CF-Connecting-IP",
	"X-Cluster-Client-IP",
}

const defaultClientKey = "127.0.0.1"

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ClientKey returns the rate limit key for a request: the first value of
// the first forwarding header which is set, else the peer address
func ClientKey(r *http.Request) string {
	for _, header := range ClientHeaders {
		if value := r.Header.Get(header); value != "" {
			first, _, _ := strings.Cut(value, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}
	if r.RemoteAddr == "" {
		return defaultClientKey
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
