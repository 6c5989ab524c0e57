package httpmw

import (
	"net/http"
	"strings"
)

// No CSRF handling: nothing here sets cookies or accepts state-changing
// requests on the public listener.

// contentSecurityPolicy applies to landing page documents.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self'",
	"style-src 'self'",
	"img-src 'self' data:",
	"font-src 'self'",
	"connect-src 'self'",
	"base-uri 'self'",
	"form-action 'self'",
	"frame-ancestors 'none'",
	"object-src 'none'",
	"upgrade-insecure-requests",
}, "; ")

var permissionsPolicy = strings.Join([]string{
	"accelerometer=()", "camera=()", "geolocation=()", "gyroscope=()",
	"magnetometer=()", "microphone=()", "payment=()", "usb=()",
}, ", ")

// securityHeaders go on every response. Cross-Origin-Resource-Policy is
// cross-origin because allow-listed sites embed avatars with <img>.
var securityHeaders = [][2]string{
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload"},
	{"Content-Security-Policy", contentSecurityPolicy},
	{"Permissions-Policy", permissionsPolicy},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"X-Permitted-Cross-Domain-Policies", "none"},
	{"Cross-Origin-Embedder-Policy", "require-corp"},
	{"Cross-Origin-Opener-Policy", "same-origin"},
	{"Cross-Origin-Resource-Policy", "cross-origin"},
}

// SecurityHeaders sets the headers above before calling next, so a handler
// can still replace any of them (the SVG endpoint swaps in its own CSP).
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}
