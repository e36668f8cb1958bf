// forum/utils/security.go
package utils

import (
	"net"
	"net/http"
	"strings"
)

// GetIPAddress extracts the real IP address from a request, trusting
// forwarding headers set by a reverse proxy. The engine uses the result as
// an opaque rate-limit identifier only.
func GetIPAddress(r *http.Request) string {
	if cf := r.Header.Get("CF-Connecting-IP"); cf != "" {
		return cf
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
