package observability

import (
	"net"
	"net/http"
	"strings"
)

// RequestMeta is the client metadata attached to websocket lifecycle events.
type RequestMeta struct {
	DeviceID  string
	RequestID string
	IP        string
}

// MetaFromRequest extracts device, request id and client IP headers. The IP
// honors the first X-Forwarded-For hop when the service sits behind a proxy.
func MetaFromRequest(r *http.Request) RequestMeta {
	return RequestMeta{
		DeviceID:  r.Header.Get("X-Device-Id"),
		RequestID: r.Header.Get("X-Request-Id"),
		IP:        clientIP(r),
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
