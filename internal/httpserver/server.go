package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/keithlinneman/avatars-web/internal/health"
	"github.com/keithlinneman/avatars-web/internal/httpmw"
	"github.com/keithlinneman/avatars-web/internal/log"
	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

// maxRequestBody caps inbound bodies. Every public route is a GET.
const maxRequestBody = 1024

// NewHandler assembles the router and middleware stack for the public port.
// main owns the *http.Server so it can drive graceful shutdown.
func NewHandler(opts *Options) http.Handler {
	if opts == nil {
		opts = &Options{}
	}
	L := opts.Logger
	if L == nil {
		L = log.Nop()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Compress(5,
			"text/html",
			"text/css",
			"application/javascript",
			"text/javascript",
			"application/json",
			"image/svg+xml",
		),
		httpmw.AnnotateHTTPRoute,
		httpmw.AccessLog(),
		httpmw.MaxBody(maxRequestBody),
	)

	if opts.Health != nil {
		r.Get(health.LivePath, health.HealthzHandler(opts.Health))
	}
	if opts.Readiness != nil {
		r.Get(health.ReadyPath, health.ReadyzHandler(opts.Readiness))
	}

	if opts.APIRoutes != nil {
		opts.APIRoutes(r)
	}

	// the landing page owns everything the API does not
	if opts.SiteHandler != nil {
		site := httpmw.ContentHeaders(opts.ContentInfo)(opts.SiteHandler)
		r.NotFound(site.ServeHTTP)
		r.MethodNotAllowed(site.ServeHTTP)
	}

	var recoverMW func(http.Handler) http.Handler
	if opts.UseRecoverMW {
		recoverMW = httpmw.Recover(L, opts.OnPanic)
	}

	return httpmw.Chain(r,
		httpmw.SecurityHeaders,
		recoverMW,
		httpmw.RequestID("X-Request-Id"),
		httpmw.ClientIPWithOptions(opts.ClientIPOpts),
		opts.RateLimitMW,
		tracing,
		httpmw.TraceResponseHeaders("X-Trace-Id", "X-Span-Id"),
		opts.MetricsMW,
		httpmw.WithLogger(L),
	)
}

// tracing starts the server span. AnnotateHTTPRoute renames it once chi has
// matched a route.
func tracing(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "http.server",
		otelhttp.WithFilter(func(r *http.Request) bool { return shouldTrace(r.URL.Path) }),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithPublicEndpointFn(func(*http.Request) bool { return true }),
	)
}

// shouldTrace skips probes and static landing assets. Avatar renders are
// always traced.
func shouldTrace(p string) bool {
	switch p {
	case health.LivePath, health.ReadyPath, "/favicon.ico", "/favicon.svg", "/robots.txt":
		return false
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".css", ".js", ".png", ".jpg", ".jpeg", ".webp", ".svg", ".ico", ".woff", ".woff2", ".map":
		return false
	}
	return true
}

// Server timeout defaults, shared with opshttp.
const (
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20 // 1 MB
)

// NewServer applies the shared timeouts to an *http.Server for handler.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		MaxHeaderBytes:    DefaultMaxHeaderBytes,
	}
}

const (
	defaultPort     = 8080
	shutdownTimeout = 5 * time.Second
)

// Start listens on opts.Port (8080 when unset) and serves NewHandler(opts) in
// the background. The returned stop drains in-flight requests and is safe to
// call more than once.
func Start(ctx context.Context, opts *Options) (func(context.Context) error, error) {
	L := opts.Logger
	if L == nil {
		L = log.Nop()
	}
	port := opts.Port
	if port == 0 {
		port = defaultPort
	}
	addr := net.JoinHostPort("", strconv.Itoa(port))

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp4", addr)
	if err != nil {
		return nil, xerrors.Wrapf(err, "listen on %s", addr)
	}
	srv := NewServer(addr, NewHandler(opts))

	go func() {
		L.Info(ctx, "http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			L.Error(ctx, err, "http server error")
		}
	}()

	var once sync.Once
	stop := func(sctx context.Context) (err error) {
		once.Do(func() {
			L.Info(sctx, "http server shutting down")
			c, cancel := context.WithTimeout(sctx, shutdownTimeout)
			defer cancel()
			err = srv.Shutdown(c)
		})
		return err
	}
	return stop, nil
}
