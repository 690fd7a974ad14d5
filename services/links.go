package services

import (
	"net/http"
	"net/url"
	"strings"
)

// BuildResetLink returns "<base>reset-password?token=<token>". base gains a
// trailing slash when missing.
func BuildResetLink(base, token string) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + "reset-password?token=" + url.QueryEscape(token)
}

// RequestBaseURL reconstructs the scheme and host the client used to reach
// the server, honouring X-Forwarded-Proto behind a proxy.
func RequestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host + "/"
}
