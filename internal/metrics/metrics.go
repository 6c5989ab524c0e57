// Package metrics owns the Prometheus registry for the avatar server. Label
// values are always drawn from fixed sets (route patterns, parameter names,
// reasons) and never from request data.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keithlinneman/avatars-web/internal/version"
)

var (
	latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	sizeBuckets    = prometheus.ExponentialBuckets(256, 4, 9)
	renderBuckets  = prometheus.ExponentialBuckets(0.0001, 2.5, 9)
	bundleBuckets  = []float64{0.5, 1, 2.5, 5, 10, 30, 60}
)

type ServerMetrics struct {
	reg     *prometheus.Registry
	handler http.Handler

	// http
	inflight    prometheus.Gauge
	reqTotal    *prometheus.CounterVec
	reqDur      *prometheus.HistogramVec
	respBytes   *prometheus.HistogramVec
	errorsTotal *prometheus.CounterVec
	panics      prometheus.Counter

	rateLimited   prometheus.Counter
	limiterFull   prometheus.Counter
	profiling     prometheus.Gauge
	buildInfo     *prometheus.GaugeVec
	contentSource *prometheus.GaugeVec
	contentBundle *prometheus.GaugeVec
	contentLoaded prometheus.Gauge
	bundleLoadDur prometheus.Histogram
	bundleErrors  *prometheus.CounterVec

	// avatars
	renders         *prometheus.CounterVec
	renderDur       prometheus.Histogram
	paramsRejected  *prometheus.CounterVec
	refererRejected *prometheus.CounterVec
}

// New builds a private registry holding the Go and process collectors plus
// every server metric.
func New() *ServerMetrics {
	m := &ServerMetrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		reqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: latencyBuckets,
		}, []string{"method", "route"}),
		respBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Response body size by method and route pattern.",
			Buckets: sizeBuckets,
		}, []string{"method", "route"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "5xx responses by method and route pattern.",
		}, []string{"method", "route"}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_panic_total",
			Help: "Handler panics recovered by the server.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_requests_rate_limited_total",
			Help: "Requests rejected with 429 by the per-client limiter.",
		}),
		limiterFull: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_requests_rate_limited_capacity_total",
			Help: "Times the limiter's visitor table hit its size cap.",
		}),
		profiling: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "profiling_active",
			Help: "1 while continuous profiling is running.",
		}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build metadata carried in labels. Always 1.",
		}, []string{"app", "component", "version", "commit", "commit_date", "build_id", "build_date", "vcs_dirty", "go_version"}),
		contentSource: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "content_source_info",
			Help: "Where the landing page content came from. Always 1.",
		}, []string{"source"}),
		contentBundle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "content_bundle_info",
			Help: "Digest of the active landing bundle. Always 1.",
		}, []string{"sha256"}),
		contentLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "content_loaded_timestamp_seconds",
			Help: "Unix time the active landing content was loaded.",
		}),
		bundleLoadDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "content_bundle_load_duration_seconds",
			Help:    "Time to fetch, verify and unpack a landing bundle.",
			Buckets: bundleBuckets,
		}),
		bundleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_bundle_load_errors_total",
			Help: "Landing bundle load failures by stage.",
		}, []string{"stage"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avatar_renders_total",
			Help: "Avatars produced by route (svg renders, random redirects).",
		}, []string{"route"}),
		renderDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "avatar_render_duration_seconds",
			Help:    "Time spent building the SVG markup for one avatar.",
			Buckets: renderBuckets,
		}),
		paramsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avatar_params_rejected_total",
			Help: "Query parameters supplied with an invalid value, by name.",
		}, []string{"param"}),
		refererRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "referer_rejected_total",
			Help: "Requests refused by the referer allow-list, by reason.",
		}, []string{"reason"}),
	}

	m.reg = prometheus.NewRegistry()
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.inflight, m.reqTotal, m.reqDur, m.respBytes, m.errorsTotal, m.panics,
		m.rateLimited, m.limiterFull, m.profiling, m.buildInfo,
		m.contentSource, m.contentBundle, m.contentLoaded, m.bundleLoadDur, m.bundleErrors,
		m.renders, m.renderDur, m.paramsRejected, m.refererRejected,
	)
	m.handler = promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
	return m
}

// Handler serves the registry in Prometheus or OpenMetrics text format.
func (m *ServerMetrics) Handler() http.Handler { return m.handler }

// Registry exposes the underlying registry for Gather in tests and tooling.
func (m *ServerMetrics) Registry() *prometheus.Registry { return m.reg }

func (m *ServerMetrics) IncHTTPPanic()         { m.panics.Inc() }
func (m *ServerMetrics) IncRateLimitDenied()   { m.rateLimited.Inc() }
func (m *ServerMetrics) IncRateLimitCapacity() { m.limiterFull.Inc() }

func (m *ServerMetrics) SetProfilingActive(active bool) {
	v := 0.0
	if active {
		v = 1
	}
	m.profiling.Set(v)
}

// SetBuildInfoFromVersion publishes vi once at startup.
func (m *ServerMetrics) SetBuildInfoFromVersion(app, component string, vi version.Info) {
	dirty := "unknown"
	if vi.VCSDirty != nil {
		dirty = strconv.FormatBool(*vi.VCSDirty)
	}
	m.buildInfo.With(prometheus.Labels{
		"app":         app,
		"component":   component,
		"version":     vi.Version,
		"commit":      vi.Commit,
		"commit_date": vi.CommitDate,
		"build_id":    vi.BuildID,
		"build_date":  vi.BuildDate,
		"go_version":  vi.GoVersion,
		"vcs_dirty":   dirty,
	}).Set(1)
}

// SetContentSource replaces the previous source label.
func (m *ServerMetrics) SetContentSource(source string) {
	m.contentSource.Reset()
	m.contentSource.WithLabelValues(source).Set(1)
}

// SetContentBundle replaces the previous bundle digest label.
func (m *ServerMetrics) SetContentBundle(sha256 string) {
	m.contentBundle.Reset()
	m.contentBundle.WithLabelValues(sha256).Set(1)
}

func (m *ServerMetrics) SetContentLoadedTimestamp(t time.Time) {
	m.contentLoaded.Set(float64(t.Unix()))
}

func (m *ServerMetrics) ObserveBundleLoadDuration(seconds float64) {
	m.bundleLoadDur.Observe(seconds)
}

func (m *ServerMetrics) IncBundleLoadError(stage string) {
	m.bundleErrors.WithLabelValues(stage).Inc()
}

// IncAvatarRender counts one avatar produced on route.
func (m *ServerMetrics) IncAvatarRender(route string) {
	m.renders.WithLabelValues(route).Inc()
}

func (m *ServerMetrics) ObserveAvatarRender(d time.Duration) {
	m.renderDur.Observe(d.Seconds())
}

// IncParamRejected counts a supplied-but-invalid query parameter. param is
// always one of the fixed parameter names.
func (m *ServerMetrics) IncParamRejected(param string) {
	m.paramsRejected.WithLabelValues(param).Inc()
}

func (m *ServerMetrics) IncRefererRejected(reason string) {
	m.refererRejected.WithLabelValues(reason).Inc()
}
