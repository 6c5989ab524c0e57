package httpmw

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ContentInfo reports the landing bundle currently being served.
type ContentInfo interface {
	ContentVersion() string
	ContentHash() string
}

const contentHashHeaderLen = 12

// ContentHeaders stamps landing page responses with X-Content-Bundle-Version
// and a shortened X-Content-Hash, and tags the active span with both.
func ContentHeaders(info ContentInfo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if info == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			version, hash := info.ContentVersion(), info.ContentHash()
			if version != "" {
				w.Header().Set("X-Content-Bundle-Version", version)
			}
			if hash != "" {
				w.Header().Set("X-Content-Hash", shortHash(hash))
			}

			if span := trace.SpanFromContext(r.Context()); span.IsRecording() {
				var attrs []attribute.KeyValue
				if version != "" {
					attrs = append(attrs, attribute.String("content.version", version))
				}
				if hash != "" {
					attrs = append(attrs, attribute.String("content.hash", hash))
				}
				span.SetAttributes(attrs...)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func shortHash(h string) string {
	if len(h) > contentHashHeaderLen {
		return h[:contentHashHeaderLen]
	}
	return h
}
