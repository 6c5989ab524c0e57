package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"

	"github.com/keithlinneman/avatars-web/internal/avatarhttp"
	"github.com/keithlinneman/avatars-web/internal/cfg"
	"github.com/keithlinneman/avatars-web/internal/content"
	"github.com/keithlinneman/avatars-web/internal/cryptoutil"
	"github.com/keithlinneman/avatars-web/internal/health"
	"github.com/keithlinneman/avatars-web/internal/httpmw"
	"github.com/keithlinneman/avatars-web/internal/httpserver"
	"github.com/keithlinneman/avatars-web/internal/log"
	"github.com/keithlinneman/avatars-web/internal/metrics"
	"github.com/keithlinneman/avatars-web/internal/opshttp"
	"github.com/keithlinneman/avatars-web/internal/otelx"
	"github.com/keithlinneman/avatars-web/internal/prof"
	"github.com/keithlinneman/avatars-web/internal/ratelimit"
	"github.com/keithlinneman/avatars-web/internal/sitehandler"
	v "github.com/keithlinneman/avatars-web/internal/version"
	"github.com/keithlinneman/avatars-web/internal/webassets"
	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

const (
	component       = "server"
	shutdownTimeout = 10 * time.Second
)

func main() {
	var conf cfg.App
	var showVersion bool
	cfg.Register(flag.CommandLine, &conf)
	flag.BoolVar(&showVersion, "V", false, "print version and build information and exit")
	flag.Parse()

	vi := v.Get()
	if showVersion {
		fmt.Println(vi)
		return
	}

	// .env first so real environment variables and flags both override it
	if err := cfg.LoadDotEnv(conf.EnvFile); err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	cfg.FillFromEnv(flag.CommandLine, "", func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	})
	if err := cfg.Validate(conf); err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	lg, err := newLogger(conf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init error:", err)
		os.Exit(1)
	}
	defer lg.Sync()

	if err := run(conf, vi, lg.With("component", component)); err != nil {
		lg.Error(context.Background(), err, "server exited with error")
		os.Exit(1)
	}
}

func newLogger(conf cfg.App) (log.Logger, error) {
	lvl, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, err
	}
	stackLvl := slog.LevelError
	if conf.StacktraceLevel != "" {
		if stackLvl, err = log.ParseLevel(conf.StacktraceLevel); err != nil {
			return nil, err
		}
	}
	return log.New(log.Options{
		App:               v.AppName,
		Version:           v.Version,
		Commit:            v.Commit,
		BuildID:           v.BuildID,
		Level:             lvl,
		StacktraceLevel:   stackLvl,
		JSON:              conf.LogJSON,
		IncludeErrorLinks: conf.IncludeErrorLinks,
		MaxErrorLinks:     conf.MaxErrorLinks,
	})
}

func run(conf cfg.App, vi v.Info, L log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx, L)

	rt, err := conf.Runtime()
	if err != nil {
		return xerrors.Wrap(err, "build avatar runtime config")
	}

	L.Info(ctx, "starting",
		"version", vi.Version,
		"commit", vi.Commit,
		"build_date", vi.BuildDate,
		"go_version", vi.GoVersion,
		"listen_port", conf.ListenPort,
		"admin_port", conf.AdminPort,
		"referer_check", len(rt.AllowList) > 0,
		"allowed_referers", rt.AllowList.Hosts(),
		"self_domain", rt.SelfDomain,
		"strict_colors", conf.StrictColors,
		"landing_bundles", conf.LandingEnabled(),
		"enable_tracing", conf.EnableTracing,
		"enable_pyroscope", conf.EnablePyroscope,
	)
	if rt.SelfDomain == "" {
		L.Warn(ctx, "self domain not set, /random-svg will redirect to a relative URL")
	} else if len(rt.AllowList) > 0 && !rt.AllowList.Allows(hostOf(rt.SelfDomain)) {
		L.Warn(ctx, "self domain is not in the referer allow-list, the landing page preview will be refused",
			"self_domain", rt.SelfDomain,
		)
	}

	m := metrics.New()
	m.SetBuildInfoFromVersion(v.AppName, component, vi)

	stopProf, err := prof.Start(ctx, prof.Options{
		Enabled:       conf.EnablePyroscope,
		AppName:       v.AppName,
		ServerAddress: conf.PyroServer,
		TenantID:      conf.PyroTenantID,
		Tags: map[string]string{
			"component": component,
			"version":   vi.Version,
			"commit":    vi.Commit,
		},
	})
	if err != nil {
		L.Error(ctx, err, "pyroscope start failed, continuing without profiling")
	}
	m.SetProfilingActive(err == nil && conf.EnablePyroscope)
	defer stopProf()

	// the collector runs on localhost, so the exporter skips TLS
	shutdownOTEL, err := otelx.Init(ctx, otelx.Options{
		Enabled:   conf.EnableTracing,
		Endpoint:  conf.OTLPEndpoint,
		Insecure:  true,
		Sample:    conf.TraceSample,
		Service:   v.AppName,
		Component: component,
		Version:   vi.Version,
	})
	if err != nil {
		L.Error(ctx, err, "otel init failed, continuing without tracing")
		shutdownOTEL = func(context.Context) error { return nil }
	}

	landing := content.NewManager()
	seed, err := webassets.SeedSnapshot()
	if err != nil {
		return xerrors.Wrap(err, "load embedded landing page")
	}
	landing.Set(seed)

	watcher, err := startLanding(ctx, conf, landing, m)
	if err != nil {
		return err
	}
	publishContent(m, landing)

	site, err := sitehandler.New(sitehandler.Options{
		Logger:     L,
		Content:    landing,
		FallbackFS: webassets.FallbackFS(),
	})
	if err != nil {
		return xerrors.Wrap(err, "create landing handler")
	}

	api, err := avatarhttp.NewAPI(avatarhttp.Options{
		Runtime: rt,
		Logger:  L,
		Metrics: m,
	})
	if err != nil {
		return xerrors.Wrap(err, "create avatar api")
	}

	limiter := ratelimit.New(ctx,
		ratelimit.WithRate(conf.RateLimitRPS, conf.RateLimitBurst),
		ratelimit.WithOnDenied(func(string) { m.IncRateLimitDenied() }),
		ratelimit.WithOnFirstDenied(func(ip string) {
			L.Warn(ctx, "rate limit triggered", "client_ip", ip)
		}),
		ratelimit.WithOnCapacity(func(size int) {
			m.IncRateLimitCapacity()
			L.Warn(ctx, "rate limiter full, new clients rejected until eviction", "visitors", size)
		}),
	)

	var gate health.ShutdownGate
	readiness := health.All(
		gate.Probe(),
		health.Named("landing", health.CheckFunc(func(context.Context) error { return landing.ReadyErr() })),
	)

	stopSite, err := httpserver.Start(ctx, &httpserver.Options{
		Logger:       L,
		Port:         conf.ListenPort,
		UseRecoverMW: true,
		OnPanic:      m.IncHTTPPanic,
		MetricsMW:    m.Middleware,
		RateLimitMW:  limiter.Middleware,
		APIRoutes:    api.RegisterRoutes,
		SiteHandler:  site,
		ContentInfo:  landing,
		ClientIPOpts: httpmw.ClientIPOptions{TrustedHops: conf.TrustedProxyHops},
		Health:       health.Fixed(true, ""),
		Readiness:    readiness,
	})
	if err != nil {
		return xerrors.Wrap(err, "start public listener")
	}

	ops := &opshttp.Options{
		Port:         conf.AdminPort,
		Metrics:      m.Handler(),
		EnablePprof:  conf.EnablePprof,
		Health:       health.Fixed(true, ""),
		Readiness:    readiness,
		UseRecoverMW: true,
		OnPanic:      m.IncHTTPPanic,
	}
	if watcher != nil {
		ops.Landing = watcher
	}
	stopOps, err := opshttp.Start(ctx, L, ops)
	if err != nil {
		_ = stopSite(context.Background())
		return xerrors.Wrap(err, "start ops listener")
	}

	if err := notifySystemd(); err != nil {
		L.Debug(ctx, "systemd readiness not sent", "reason", err.Error())
	}

	<-ctx.Done()
	stop()
	bg := context.Background()
	L.Info(bg, "shutdown signal received, failing readiness", "drain", conf.ShutdownDrain.String())
	gate.Set("draining")

	// a second signal skips the drain
	force := make(chan os.Signal, 1)
	signal.Notify(force, os.Interrupt, syscall.SIGTERM)
	select {
	case <-time.After(conf.ShutdownDrain):
	case <-force:
		L.Warn(bg, "second signal received, skipping drain")
	}
	signal.Stop(force)

	sctx, cancel := context.WithTimeout(bg, shutdownTimeout)
	defer cancel()
	if err := stopSite(sctx); err != nil {
		L.Error(bg, err, "public listener shutdown")
	}
	if err := stopOps(sctx); err != nil {
		L.Error(bg, err, "ops listener shutdown")
	}
	if err := shutdownOTEL(sctx); err != nil {
		L.Error(bg, err, "otel shutdown")
	}
	L.Info(bg, "shutdown complete")
	return nil
}

// startLanding loads the current landing bundle when a bundle source is
// configured and returns a watcher for it. It returns nil when the embedded
// page is all there is. A failed first load keeps the seed page up.
func startLanding(ctx context.Context, conf cfg.App, mgr *content.Manager, m *metrics.ServerMetrics) (*content.Watcher, error) {
	L := log.FromContext(ctx)
	if !conf.LandingEnabled() {
		L.Info(ctx, "no landing bundle source configured, serving the embedded page")
		return nil, nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, xerrors.Wrap(err, "load AWS config")
	}

	opts := content.LoaderOptions{
		Logger:     L,
		SSMParam:   conf.LandingSSMParam,
		S3Bucket:   conf.LandingS3Bucket,
		S3Prefix:   conf.LandingS3Prefix,
		Validation: content.DefaultValidationOptions(),
		OnError:    m.IncBundleLoadError,
		OnLoaded:   func(d time.Duration) { m.ObserveBundleLoadDuration(d.Seconds()) },
		AWSConfig:  &awsCfg,
	}
	if conf.LandingSigningKeyARN != "" {
		opts.Verifier = cryptoutil.NewKMSVerifier(kms.NewFromConfig(awsCfg), conf.LandingSigningKeyARN)
	}
	loader, err := content.NewLoader(ctx, opts)
	if err != nil {
		return nil, xerrors.Wrap(err, "create landing loader")
	}

	if err := loader.LoadIntoManager(ctx, mgr); err != nil {
		L.Error(ctx, err, "initial landing bundle load failed, serving the embedded page")
	}

	w, err := content.NewWatcher(content.WatcherOptions{
		Logger:   L,
		Source:   loader,
		Manager:  mgr,
		Interval: conf.LandingPollInterval,
		OnSwap:   func(content.Snapshot) { publishContent(m, mgr) },
	})
	if err != nil {
		return nil, err
	}
	if conf.LandingPollInterval > 0 {
		go func() { _ = w.Run(ctx) }()
	}
	return w, nil
}

func publishContent(m *metrics.ServerMetrics, mgr *content.Manager) {
	m.SetContentSource(string(mgr.Source()))
	m.SetContentBundle(mgr.ContentHash())
	if t := mgr.LoadedAt(); !t.IsZero() {
		m.SetContentLoadedTimestamp(t)
	}
}

// hostOf accepts a bare host or an origin.
func hostOf(domain string) string {
	if u, err := url.Parse(domain); err == nil && u.Host != "" {
		return u.Hostname()
	}
	return domain
}
