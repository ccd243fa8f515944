package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ForwardingHeaders are consulted in order before falling back to RemoteAddr.
var ForwardingHeaders = []string{
	"CF-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// FromRequest returns the normalised client address of r, or "" when no
// header or RemoteAddr holds a valid IP. X-Forwarded-For yields its first
// valid entry.
func FromRequest(r *http.Request) string {
	for _, header := range ForwardingHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		for candidate := range strings.SplitSeq(value, ",") {
			if ip := normalize(candidate); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return normalize(r.RemoteAddr)
	}
	return normalize(host)
}

func normalize(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}
