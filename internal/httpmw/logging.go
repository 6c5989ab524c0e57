package httpmw

import (
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/keithlinneman/avatars-web/internal/health"
	"github.com/keithlinneman/avatars-web/internal/log"
)

// WithLogger puts a request logger into the context. Its fields are values the
// server derived itself; query strings, headers and Host never reach the logs.
func WithLogger(base log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			peer := r.RemoteAddr
			if host, _, err := net.SplitHostPort(peer); err == nil {
				peer = host
			}
			client := ClientIPFromContext(ctx)
			if client == "" {
				client = peer
			}
			reqID, scheme := RequestIDFromContext(ctx), schemeFromRequest(r)
			fields := []any{
				"request_id", reqID,
				"client.address", client,
				"network.peer.address", peer,
				"http.request.method", r.Method,
				"url.path", r.URL.Path,
				"url.scheme", scheme,
			}

			if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
				span.SetAttributes(
					attribute.String("request_id", reqID),
					attribute.String("client.address", client),
					attribute.String("network.peer.address", peer),
					attribute.String("url.scheme", scheme),
				)
			}
			next.ServeHTTP(w, r.WithContext(log.WithContext(ctx, base.With(fields...))))
		})
	}
}

// AccessLog writes one "http request" line per request once the handler has
// returned, so the chi route pattern is final.
func AccessLog() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, ctx: r.Context(), reqStart: start}

			next.ServeHTTP(rw, r)
			rw.finishWriteSpan()

			if skipAccessLog(r.URL.Path) {
				return
			}
			ctx := r.Context()
			log.FromContext(ctx).Info(ctx, "http request",
				"http.route", routePattern(r),
				"http.response.status_code", rw.statusOrOK(),
				"http.response.body.size", rw.bytes,
				"http.request.body.size", max(r.ContentLength, 0),
				"http.server.request.duration", time.Since(start).Seconds(),
			)
		})
	}
}

// schemeFromRequest trusts X-Forwarded-Proto from the load balancer first,
// then an absolute request URL, then the TLS state. Only http and https count.
func schemeFromRequest(r *http.Request) string {
	candidates := make([]string, 0, 2)
	if xf := r.Header.Get("X-Forwarded-Proto"); xf != "" {
		first, _, _ := strings.Cut(xf, ",")
		candidates = append(candidates, strings.TrimSpace(first))
	}
	if r.URL != nil {
		candidates = append(candidates, r.URL.Scheme)
	}
	for _, c := range candidates {
		switch s := strings.ToLower(c); s {
		case "http", "https":
			return s
		}
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

var quietExts = map[string]struct{}{
	".css": {}, ".js": {}, ".map": {}, ".ico": {}, ".svg": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".webp": {}, ".woff": {}, ".woff2": {},
}

// skipAccessLog keeps probes and landing-page assets out of the access log.
func skipAccessLog(p string) bool {
	if p == health.LivePath || p == health.ReadyPath {
		return true
	}
	_, quiet := quietExts[strings.ToLower(path.Ext(p))]
	return quiet
}

// Scope adds a handler name to the request logger and span.
func Scope(handler string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if span := trace.SpanFromContext(ctx); span.IsRecording() {
				span.SetAttributes(attribute.String("app.handler", handler))
			}
			ctx = log.WithContext(ctx, log.FromContext(ctx).With("handler", handler))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
