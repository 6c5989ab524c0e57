package cfg

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func wantErrContains(t *testing.T, err error, sub string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got <nil>", sub)
	}
	if !strings.Contains(err.Error(), sub) {
		t.Fatalf("error %q does not contain %q", err.Error(), sub)
	}
}

// newTestConfig registers flags on a fresh FlagSet, parses the given args,
// and returns the resulting App. This isolates each test from flag.CommandLine.
func newTestConfig(t *testing.T, args []string) App {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var c App
	Register(fs, &c)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("flag parse: %v", err)
	}
	return c
}

func TestRegister_Defaults(t *testing.T) {
	c := newTestConfig(t, nil)

	if c.ListenPort != 8080 {
		t.Errorf("ListenPort: want 8080, got %d", c.ListenPort)
	}
	if c.AdminPort != 9000 {
		t.Errorf("AdminPort: want 9000, got %d", c.AdminPort)
	}
	if c.AllowedRefererDomains != "" {
		t.Errorf("AllowedRefererDomains: want empty, got %q", c.AllowedRefererDomains)
	}
	if c.StrictColors {
		t.Error("StrictColors: want false")
	}
	if c.EnvFile != DefaultEnvFile {
		t.Errorf("EnvFile: want %q, got %q", DefaultEnvFile, c.EnvFile)
	}
	if !c.LogJSON {
		t.Error("LogJSON: want true")
	}
	if c.LogLevel != "info" {
		t.Errorf("LogLevel: want %q, got %q", "info", c.LogLevel)
	}
	if !c.EnablePprof {
		t.Error("EnablePprof: want true")
	}
	if c.EnablePyroscope || c.EnableTracing {
		t.Error("pyroscope and tracing should default off")
	}
	if c.RateLimitRPS != 20 || c.RateLimitBurst != 60 {
		t.Errorf("rate limit: want 20/60, got %g/%d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.LandingEnabled() {
		t.Error("landing bundle should default off")
	}
	if c.LandingPollInterval != 30*time.Second {
		t.Errorf("LandingPollInterval: want 30s, got %s", c.LandingPollInterval)
	}
	if err := Validate(c); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestRegister_CLIOverrides(t *testing.T) {
	c := newTestConfig(t, []string{
		"-listen-port=3000",
		"-admin-port=9100",
		"-allowed-referer-domains=example.com, cdn.example.com",
		"-self-domain=avatars.example.com",
		"-strict-colors=true",
		"-log-json=false",
		"-log-level=debug",
		"-trace-sample=0.5",
		"-rate-limit-rps=5",
		"-rate-limit-burst=10",
		"-trusted-proxy-hops=1",
		"-landing-ssm-param=/custom/param",
		"-landing-s3-bucket=my-bucket",
		"-landing-s3-prefix=my/prefix",
	})

	if c.ListenPort != 3000 {
		t.Errorf("ListenPort: want 3000, got %d", c.ListenPort)
	}
	if c.AdminPort != 9100 {
		t.Errorf("AdminPort: want 9100, got %d", c.AdminPort)
	}
	if c.AllowedRefererDomains != "example.com, cdn.example.com" {
		t.Errorf("AllowedRefererDomains = %q", c.AllowedRefererDomains)
	}
	if c.SelfDomain != "avatars.example.com" {
		t.Errorf("SelfDomain = %q", c.SelfDomain)
	}
	if !c.StrictColors {
		t.Error("StrictColors: want true")
	}
	if c.LogJSON {
		t.Error("LogJSON: want false")
	}
	if c.TraceSample != 0.5 {
		t.Errorf("TraceSample: want 0.5, got %f", c.TraceSample)
	}
	if c.RateLimitRPS != 5 || c.RateLimitBurst != 10 || c.TrustedProxyHops != 1 {
		t.Errorf("rate limit = %g/%d/%d", c.RateLimitRPS, c.RateLimitBurst, c.TrustedProxyHops)
	}
	if !c.LandingEnabled() {
		t.Error("landing should be enabled")
	}
	if c.LandingS3Prefix != "my/prefix" {
		t.Errorf("LandingS3Prefix: want %q, got %q", "my/prefix", c.LandingS3Prefix)
	}
	if err := Validate(c); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestFillFromEnv_UnprefixedNames(t *testing.T) {
	t.Setenv("LISTEN_PORT", "8088")
	t.Setenv("ALLOWED_REFERER_DOMAINS", "example.com")
	t.Setenv("SELF_DOMAIN", "https://avatars.example.com")
	t.Setenv("STRICT_COLORS", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRACE_SAMPLE", "0.25")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var c App
	Register(fs, &c)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("flag parse: %v", err)
	}
	FillFromEnv(fs, "", nil)

	if c.ListenPort != 8088 {
		t.Errorf("ListenPort: want 8088, got %d", c.ListenPort)
	}
	if c.AllowedRefererDomains != "example.com" {
		t.Errorf("AllowedRefererDomains = %q", c.AllowedRefererDomains)
	}
	if c.SelfDomain != "https://avatars.example.com" {
		t.Errorf("SelfDomain = %q", c.SelfDomain)
	}
	if !c.StrictColors {
		t.Error("StrictColors: want true from env")
	}
	if c.LogLevel != "debug" {
		t.Errorf("LogLevel: want %q, got %q", "debug", c.LogLevel)
	}
	if c.TraceSample != 0.25 {
		t.Errorf("TraceSample: want 0.25, got %f", c.TraceSample)
	}
}

func TestFillFromEnv_Prefix(t *testing.T) {
	pfx := "TESTCFG_"
	t.Setenv(pfx+"ADMIN_PORT", "9100")
	t.Setenv(pfx+"ENABLE_PPROF", "false")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var c App
	Register(fs, &c)
	_ = fs.Parse(nil)
	FillFromEnv(fs, pfx, nil)

	if c.AdminPort != 9100 {
		t.Errorf("AdminPort: want 9100, got %d", c.AdminPort)
	}
	if c.EnablePprof {
		t.Error("EnablePprof: want false from env")
	}
}

func TestFillFromEnv_CLITakesPrecedence(t *testing.T) {
	pfx := "TESTCFG2_"
	t.Setenv(pfx+"LISTEN_PORT", "7777")
	t.Setenv(pfx+"LOG_LEVEL", "warn")
	t.Setenv(pfx+"ENABLE_PPROF", "false")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var c App
	Register(fs, &c)
	if err := fs.Parse([]string{"-listen-port=9090", "-log-level=debug", "-enable-pprof=true"}); err != nil {
		t.Fatalf("flag parse: %v", err)
	}

	var overrideMessages []string
	FillFromEnv(fs, pfx, func(format string, args ...any) {
		overrideMessages = append(overrideMessages, fmt.Sprintf(format, args...))
	})

	// CLI wins
	if c.ListenPort != 9090 {
		t.Errorf("ListenPort: want 9090 (cli), got %d", c.ListenPort)
	}
	if c.LogLevel != "debug" {
		t.Errorf("LogLevel: want %q (cli), got %q", "debug", c.LogLevel)
	}
	if !c.EnablePprof {
		t.Error("EnablePprof: want true (cli)")
	}

	if len(overrideMessages) != 3 {
		t.Errorf("expected 3 override messages, got %d: %v", len(overrideMessages), overrideMessages)
	}
	for _, msg := range overrideMessages {
		if !strings.Contains(msg, "overrides env") {
			t.Errorf("unexpected override message format: %s", msg)
		}
	}
}

func TestFillFromEnv_InvalidEnvIgnored(t *testing.T) {
	pfx := "TESTCFG3_"
	t.Setenv(pfx+"LISTEN_PORT", "not-a-number")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var c App
	Register(fs, &c)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("flag parse: %v", err)
	}

	var logMessages []string
	FillFromEnv(fs, pfx, func(format string, args ...any) {
		logMessages = append(logMessages, fmt.Sprintf(format, args...))
	})

	if c.ListenPort != 8080 {
		t.Errorf("ListenPort: want 8080 (default), got %d", c.ListenPort)
	}
	if len(logMessages) != 1 {
		t.Fatalf("expected 1 log message, got %d: %v", len(logMessages), logMessages)
	}
	if !strings.Contains(logMessages[0], "ignoring invalid env") {
		t.Errorf("unexpected log message: %s", logMessages[0])
	}
}

// LoadDotEnv

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}
	if err := LoadDotEnv(""); err != nil {
		t.Fatalf("empty path should be ignored, got %v", err)
	}
}

func TestLoadDotEnv_DoesNotOverrideEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	data := "CFGTEST_DOTENV_NEW=from-file\nCFGTEST_DOTENV_SET=from-file\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CFGTEST_DOTENV_SET", "from-env")
	// t.Setenv restores on cleanup; register the new key too so it is unset after
	t.Setenv("CFGTEST_DOTENV_NEW", "")
	os.Unsetenv("CFGTEST_DOTENV_NEW")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("CFGTEST_DOTENV_NEW"); got != "from-file" {
		t.Errorf("CFGTEST_DOTENV_NEW = %q, want from-file", got)
	}
	if got := os.Getenv("CFGTEST_DOTENV_SET"); got != "from-env" {
		t.Errorf("CFGTEST_DOTENV_SET = %q, want from-env", got)
	}
}

// Validate

func TestValidate_OK(t *testing.T) {
	c := newTestConfig(t, []string{
		"-enable-pyroscope=true",
		"-pyro-server=https://pyro:4040",
		"-pyro-tenant=test-tenant",
		"-enable-tracing=true",
		"-otlp-endpoint=otel:4317",
		"-trace-sample=0.2",
		"-allowed-referer-domains=example.com",
		"-self-domain=https://avatars.example.com/",
	})
	if err := Validate(c); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_InvalidCombined(t *testing.T) {
	c := newTestConfig(t, []string{
		"-listen-port=0",
		"-admin-port=70000",
		"-allowed-referer-domains=example.com,,https://x.com",
		"-self-domain=example.com/path",
		"-log-level=nope",
		"-stacktrace-level=alsonope",
		"-trace-sample=2.0",
		"-enable-pyroscope=true",
		"-pyro-server=not-a-url",
		"-enable-tracing=true",
		"-otlp-endpoint=otel",
		"-include-error-links=true",
		"-max-error-links=0",
		"-rate-limit-rps=0",
		"-rate-limit-burst=0",
		"-landing-ssm-param=/p",
		"-landing-poll-interval=1s",
	})

	err := Validate(c)
	if err == nil {
		t.Fatal("Validate() expected errors, got <nil>")
	}

	wantErrContains(t, err, "invalid LISTEN_PORT")
	wantErrContains(t, err, "invalid ADMIN_PORT")
	wantErrContains(t, err, "invalid ALLOWED_REFERER_DOMAINS")
	wantErrContains(t, err, "SELF_DOMAIN must be")
	wantErrContains(t, err, "invalid LOG_LEVEL")
	wantErrContains(t, err, "invalid STACKTRACE_LEVEL")
	wantErrContains(t, err, "invalid TRACE_SAMPLE")
	wantErrContains(t, err, "PYRO_SERVER must be a URL")
	wantErrContains(t, err, "PYRO_TENANT required")
	wantErrContains(t, err, "OTLP_ENDPOINT must be host:port")
	wantErrContains(t, err, "MAX_ERROR_LINKS")
	wantErrContains(t, err, "RATE_LIMIT_RPS")
	wantErrContains(t, err, "RATE_LIMIT_BURST")
	wantErrContains(t, err, "must be set together")
	wantErrContains(t, err, "LANDING_POLL_INTERVAL")
}

func TestValidate_SamePorts(t *testing.T) {
	c := newTestConfig(t, []string{"-listen-port=9000", "-admin-port=9000"})
	wantErrContains(t, Validate(c), "must differ")
}

// Runtime

func TestRuntime(t *testing.T) {
	c := newTestConfig(t, []string{
		"-allowed-referer-domains=Example.com",
		"-self-domain= avatars.example.com ",
		"-strict-colors",
	})
	rt, err := c.Runtime()
	if err != nil {
		t.Fatalf("Runtime: %v", err)
	}
	if !rt.AllowList.Allows("example.com") || rt.AllowList.Allows("evil.com") {
		t.Fatalf("AllowList = %v", rt.AllowList)
	}
	if rt.SelfDomain != "avatars.example.com" {
		t.Errorf("SelfDomain = %q", rt.SelfDomain)
	}
	if !rt.Params.StrictColors {
		t.Error("Params.StrictColors should be true")
	}
}

func TestRuntime_NoAllowList(t *testing.T) {
	rt, err := newTestConfig(t, nil).Runtime()
	if err != nil {
		t.Fatal(err)
	}
	if rt.AllowList != nil {
		t.Fatalf("AllowList = %v, want nil", rt.AllowList)
	}
}

func TestRuntime_BadAllowList(t *testing.T) {
	c := newTestConfig(t, []string{"-allowed-referer-domains=a.com,,b.com"})
	if _, err := c.Runtime(); err == nil {
		t.Fatal("expected error for empty allow-list entry")
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
