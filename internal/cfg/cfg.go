package cfg

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/keithlinneman/avatars-web/internal/avatarparams"
	"github.com/keithlinneman/avatars-web/internal/log"
	"github.com/keithlinneman/avatars-web/internal/referer"
	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

// DefaultEnvFile is loaded before env lookup when -env-file is not given.
const DefaultEnvFile = ".env"

type App struct {
	ListenPort            int
	AdminPort             int
	AllowedRefererDomains string
	SelfDomain            string
	StrictColors          bool
	EnvFile               string
	ShutdownDrain         time.Duration

	LogJSON           bool
	LogLevel          string
	StacktraceLevel   string
	IncludeErrorLinks bool
	MaxErrorLinks     int

	EnablePprof     bool
	EnablePyroscope bool
	EnableTracing   bool
	PyroServer      string
	PyroTenantID    string
	OTLPEndpoint    string
	TraceSample     float64

	RateLimitRPS     float64
	RateLimitBurst   int
	TrustedProxyHops int

	LandingSSMParam      string
	LandingS3Bucket      string
	LandingS3Prefix      string
	LandingSigningKeyARN string
	LandingPollInterval  time.Duration
}

// Register binds all config fields to the given FlagSet with defaults inline
func Register(fs *flag.FlagSet, c *App) {
	fs.IntVar(&c.ListenPort, "listen-port", 8080, "public listen TCP port (1..65535)")
	fs.IntVar(&c.AdminPort, "admin-port", 9000, "admin listen TCP port (1..65535)")
	fs.StringVar(&c.AllowedRefererDomains, "allowed-referer-domains", "", "comma separated Referer hostnames allowed to use /svg and /random-svg (empty disables the check)")
	fs.StringVar(&c.SelfDomain, "self-domain", "", "public domain of this service, used in /random-svg redirects")
	fs.BoolVar(&c.StrictColors, "strict-colors", false, "require colors to be exactly 6 hex digits instead of a 6 digit prefix")
	fs.StringVar(&c.EnvFile, "env-file", DefaultEnvFile, "dotenv file to load before reading env vars (missing file is ignored)")
	fs.DurationVar(&c.ShutdownDrain, "shutdown-drain", 10*time.Second, "time between failing readiness and closing listeners on shutdown")

	fs.BoolVar(&c.LogJSON, "log-json", true, "JSON logs (true) or logfmt (false)")
	fs.StringVar(&c.LogLevel, "log-level", "info", "debug|info|warn|error")
	fs.StringVar(&c.StacktraceLevel, "stacktrace-level", "error", "debug|info|warn|error")
	fs.BoolVar(&c.IncludeErrorLinks, "include-error-links", true, "Include error links in log messages")
	fs.IntVar(&c.MaxErrorLinks, "max-error-links", 5, "max error chain depth (1..64)")

	fs.BoolVar(&c.EnablePprof, "enable-pprof", true, "Enable pprof profiling (on admin port only)")
	fs.BoolVar(&c.EnablePyroscope, "enable-pyroscope", false, "Enable pushing Pyroscope data to server set in -pyro-server")
	fs.BoolVar(&c.EnableTracing, "enable-tracing", false, "Enable OTLP tracing and push to otlp-endpoint")
	fs.StringVar(&c.PyroServer, "pyro-server", "", "pyroscope server url to push to")
	fs.StringVar(&c.PyroTenantID, "pyro-tenant", "", "tenant (x-scope-orgid) to use for pyro-server")
	fs.StringVar(&c.OTLPEndpoint, "otlp-endpoint", "", "OTLP endpoint to push to (gRPC) (host:port)")
	fs.Float64Var(&c.TraceSample, "trace-sample", 0.0, "trace sampling ratio (0..1)")

	fs.Float64Var(&c.RateLimitRPS, "rate-limit-rps", 20, "per-ip request refill rate (requests/second)")
	fs.IntVar(&c.RateLimitBurst, "rate-limit-burst", 60, "per-ip burst size")
	fs.IntVar(&c.TrustedProxyHops, "trusted-proxy-hops", 0, "number of trusted reverse proxies in front of the service (0 uses the socket peer)")

	fs.StringVar(&c.LandingSSMParam, "landing-ssm-param", "", "ssm parameter holding the landing page bundle sha256 (empty serves the embedded page)")
	fs.StringVar(&c.LandingS3Bucket, "landing-s3-bucket", "", "s3 bucket holding landing page bundles")
	fs.StringVar(&c.LandingS3Prefix, "landing-s3-prefix", "avatars-web/landing/bundles", "s3 prefix (key) of landing page bundles")
	fs.StringVar(&c.LandingSigningKeyARN, "landing-signing-key-arn", "", "KMS key ARN for landing bundle signature verification (optional)")
	fs.DurationVar(&c.LandingPollInterval, "landing-poll-interval", 30*time.Second, "how often to check SSM for a new landing bundle (0 disables polling)")
}

// LoadDotEnv adds variables from a dotenv file to the process environment.
// Variables already set in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return xerrors.Wrapf(err, "load env file %s", path)
	}
	return nil
}

// FillFromEnv sets any flag not explicitly passed on the CLI from
// environment variables. Flag "foo-bar" maps to PREFIX_FOO_BAR.
// Precedence: cli flag > env var > default.
func FillFromEnv(fs *flag.FlagSet, prefix string, logf func(string, ...any)) {
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	fs.VisitAll(func(f *flag.Flag) {
		key := prefix + strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_")
		envVal, envSet := os.LookupEnv(key)
		if !envSet {
			return
		}
		if explicit[f.Name] {
			if logf != nil {
				logf("flag -%s: cli value %q overrides env %s=%q", f.Name, f.Value.String(), key, envVal)
			}
			return
		}
		prev := f.Value.String()
		if err := fs.Set(f.Name, envVal); err != nil {
			_ = fs.Set(f.Name, prev)
			if logf != nil {
				logf("flag -%s: ignoring invalid env %s=%q: %v", f.Name, key, envVal, err)
			}
		}
	})
}

// Validate checks that config values are within expected ranges and formats.
// Returns an error describing all invalid fields, or nil if all valid.
func Validate(c App) error {
	var errs []error

	// Ports
	if c.ListenPort < 1 || c.ListenPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid LISTEN_PORT %d (must be 1..65535)", c.ListenPort))
	}
	if c.AdminPort < 1 || c.AdminPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid ADMIN_PORT %d (must be 1..65535)", c.AdminPort))
	}
	if c.AdminPort == c.ListenPort {
		errs = append(errs, fmt.Errorf("ADMIN_PORT and LISTEN_PORT must differ (both %d)", c.ListenPort))
	}

	if c.ShutdownDrain < 0 || c.ShutdownDrain > 2*time.Minute {
		errs = append(errs, fmt.Errorf("SHUTDOWN_DRAIN must be 0..2m (got %s)", c.ShutdownDrain))
	}

	// Referer allow-list
	if _, err := referer.ParseAllowList(c.AllowedRefererDomains); err != nil {
		errs = append(errs, fmt.Errorf("invalid ALLOWED_REFERER_DOMAINS: %w", err))
	}

	// Self domain, bare host or origin
	if d := strings.TrimSpace(c.SelfDomain); d != "" {
		if strings.Contains(d, "://") {
			if u, err := url.Parse(d); err != nil || u.Host == "" || (u.Path != "" && u.Path != "/") {
				errs = append(errs, fmt.Errorf("SELF_DOMAIN must be a hostname or origin (got %q)", c.SelfDomain))
			}
		} else if strings.ContainsAny(d, "/?# ") {
			errs = append(errs, fmt.Errorf("SELF_DOMAIN must be a hostname or origin (got %q)", c.SelfDomain))
		}
	}

	// Log levels
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err))
	}
	if c.StacktraceLevel != "" {
		if _, err := log.ParseLevel(c.StacktraceLevel); err != nil {
			errs = append(errs, fmt.Errorf("invalid STACKTRACE_LEVEL %q: %w", c.StacktraceLevel, err))
		}
	}

	// Tracing sample
	if c.TraceSample < 0 || c.TraceSample > 1 {
		errs = append(errs, fmt.Errorf("invalid TRACE_SAMPLE %.3f (must be 0..1)", c.TraceSample))
	}

	// Pyroscope (URL and scheme)
	if c.EnablePyroscope {
		if c.PyroServer == "" {
			errs = append(errs, fmt.Errorf("PYRO_SERVER required when ENABLE_PYROSCOPE=true"))
		} else if u, err := url.Parse(c.PyroServer); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("PYRO_SERVER must be a URL (got %q)", c.PyroServer))
		}
		if c.PyroTenantID == "" {
			errs = append(errs, fmt.Errorf("PYRO_TENANT required when ENABLE_PYROSCOPE=true"))
		}
	}

	// OTLP tracing (grpc exporter wants host:port, no scheme)
	if c.EnableTracing {
		if c.OTLPEndpoint == "" {
			errs = append(errs, fmt.Errorf("OTLP_ENDPOINT required when ENABLE_TRACING=true"))
		} else if _, _, err := net.SplitHostPort(c.OTLPEndpoint); err != nil {
			errs = append(errs, fmt.Errorf("OTLP_ENDPOINT must be host:port (got %q): %v", c.OTLPEndpoint, err))
		}
	}

	// Error link limits
	if c.IncludeErrorLinks {
		if c.MaxErrorLinks < 1 || c.MaxErrorLinks > 64 {
			errs = append(errs, fmt.Errorf("MAX_ERROR_LINKS must be 1..64 (got %d)", c.MaxErrorLinks))
		}
	}

	// Rate limiting
	if c.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must be > 0 (got %g)", c.RateLimitRPS))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be >= 1 (got %d)", c.RateLimitBurst))
	}
	if c.TrustedProxyHops < 0 || c.TrustedProxyHops > 10 {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXY_HOPS must be 0..10 (got %d)", c.TrustedProxyHops))
	}

	// Landing bundle, param and bucket go together
	if (c.LandingSSMParam == "") != (c.LandingS3Bucket == "") {
		errs = append(errs, fmt.Errorf("LANDING_SSM_PARAM and LANDING_S3_BUCKET must be set together"))
	}
	if c.LandingSSMParam != "" && c.LandingS3Prefix == "" {
		errs = append(errs, fmt.Errorf("LANDING_S3_PREFIX is required when LANDING_SSM_PARAM is set"))
	}
	if c.LandingSigningKeyARN != "" && c.LandingSSMParam == "" {
		errs = append(errs, fmt.Errorf("LANDING_SIGNING_KEY_ARN requires LANDING_SSM_PARAM"))
	}
	if c.LandingPollInterval != 0 && c.LandingPollInterval < 5*time.Second {
		errs = append(errs, fmt.Errorf("LANDING_POLL_INTERVAL must be 0 or >= 5s (got %s)", c.LandingPollInterval))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// LandingEnabled reports whether the landing page is loaded from S3.
func (c App) LandingEnabled() bool {
	return c.LandingSSMParam != "" && c.LandingS3Bucket != ""
}

// Runtime is the immutable configuration handed to the avatar routes.
// It is built once at startup; request handling never reads the environment.
type Runtime struct {
	AllowList  referer.AllowList
	SelfDomain string
	Params     avatarparams.Policy
}

// Runtime parses the raw avatar settings. Call Validate first; the only
// error returned here is a malformed referer allow-list.
func (c App) Runtime() (Runtime, error) {
	allow, err := referer.ParseAllowList(c.AllowedRefererDomains)
	if err != nil {
		return Runtime{}, err
	}
	return Runtime{
		AllowList:  allow,
		SelfDomain: strings.TrimSpace(c.SelfDomain),
		Params:     avatarparams.Policy{StrictColors: c.StrictColors},
	}, nil
}
