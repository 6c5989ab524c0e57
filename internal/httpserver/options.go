package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keithlinneman/avatars-web/internal/health"
	"github.com/keithlinneman/avatars-web/internal/httpmw"
	"github.com/keithlinneman/avatars-web/internal/log"
)

// Options configures the public listener.
type Options struct {
	Logger log.Logger
	Port   int

	UseRecoverMW bool
	OnPanic      func()

	MetricsMW   func(http.Handler) http.Handler
	RateLimitMW func(http.Handler) http.Handler

	// APIRoutes registers the avatar endpoints.
	APIRoutes func(chi.Router)
	// SiteHandler serves the landing page for every path no route claims.
	SiteHandler http.Handler
	// ContentInfo stamps landing responses with the bundle version and hash.
	ContentInfo httpmw.ContentInfo

	ClientIPOpts httpmw.ClientIPOptions

	Health    health.Probe
	Readiness health.Probe
}
