// Package requestmeta answers scheme and origin questions about incoming
// requests for cookie and CSRF decisions.
package requestmeta

import (
	"net/http"
	"net/url"
	"strings"
)

// SchemePolicy controls how the request scheme is resolved.
//
// X-Forwarded-Proto is only honored when TrustForwardedProto is set, which a
// deployment should do only behind a proxy that overwrites the header.
type SchemePolicy struct {
	TrustForwardedProto bool
}

type origin struct {
	scheme string
	host   string
	port   string
}

func (o origin) matches(other origin) bool {
	return o.host != "" && o.port != "" &&
		o.scheme == other.scheme &&
		o.host == other.host &&
		o.port == other.port
}

// IsHTTPSWithPolicy reports whether a request should be treated as HTTPS.
func IsHTTPSWithPolicy(r *http.Request, policy SchemePolicy) bool {
	return requestScheme(r, policy) == "https"
}

// HasSameOriginProofWithPolicy reports whether Origin, or Referer when Origin
// is absent, names the same scheme, host and port as the request.
func HasSameOriginProofWithPolicy(r *http.Request, policy SchemePolicy) bool {
	if r == nil {
		return false
	}
	self := requestOrigin(r, policy)
	if raw := strings.TrimSpace(r.Header.Get("Origin")); raw != "" {
		claimed, ok := parseOrigin(raw)
		return ok && self.matches(claimed)
	}
	if raw := strings.TrimSpace(r.Header.Get("Referer")); raw != "" {
		claimed, ok := parseOrigin(raw)
		return ok && self.matches(claimed)
	}
	return false
}

// SameOriginReturnPath returns the path and query of a same-origin Referer,
// or fallback when the Referer is missing or points elsewhere.
func SameOriginReturnPath(r *http.Request, policy SchemePolicy, fallback string) string {
	if r == nil {
		return fallback
	}
	raw := strings.TrimSpace(r.Header.Get("Referer"))
	if raw == "" {
		return fallback
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fallback
	}
	claimed, ok := parseOrigin(raw)
	if !ok || !requestOrigin(r, policy).matches(claimed) {
		return fallback
	}
	path := parsed.EscapedPath()
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		path = "/"
	}
	if parsed.RawQuery != "" {
		return path + "?" + parsed.RawQuery
	}
	return path
}

func parseOrigin(raw string) (origin, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return origin{}, false
	}
	scheme := strings.ToLower(strings.TrimSpace(parsed.Scheme))
	if scheme == "" {
		return origin{}, false
	}
	o := origin{
		scheme: scheme,
		host:   strings.ToLower(strings.TrimSpace(parsed.Hostname())),
		port:   strings.TrimSpace(parsed.Port()),
	}
	if o.port == "" {
		o.port = defaultPortForScheme(scheme)
	}
	return o, o.host != ""
}

func requestOrigin(r *http.Request, policy SchemePolicy) origin {
	o := origin{scheme: requestScheme(r, policy)}
	o.host, o.port = hostParts(r.Host)
	if o.host == "" && r.URL != nil {
		o.host, o.port = hostParts(r.URL.Host)
	}
	if o.port == "" {
		o.port = defaultPortForScheme(o.scheme)
	}
	return o
}

func requestScheme(r *http.Request, policy SchemePolicy) string {
	if r == nil {
		return ""
	}
	if policy.TrustForwardedProto {
		if forwarded := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); forwarded == "http" || forwarded == "https" {
			return forwarded
		}
	}
	if r.URL != nil {
		if scheme := strings.ToLower(r.URL.Scheme); scheme == "http" || scheme == "https" {
			return scheme
		}
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func defaultPortForScheme(scheme string) string {
	switch scheme {
	case "https":
		return "443"
	case "http":
		return "80"
	default:
		return ""
	}
}

func hostParts(rawHost string) (string, string) {
	parsed, err := url.Parse("//" + strings.TrimSpace(rawHost))
	if err != nil {
		return "", ""
	}
	return strings.ToLower(parsed.Hostname()), parsed.Port()
}
