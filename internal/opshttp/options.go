package opshttp

import (
	"net/http"

	"github.com/keithlinneman/avatars-web/internal/health"
)

type Options struct {
	Port        int
	Metrics     http.Handler
	EnablePprof bool
	Health      health.Probe
	Readiness   health.Probe

	// Landing, when set, exposes POST /-/landing/reload and /-/landing/rollback.
	Landing LandingControl

	UseRecoverMW bool
	// OnPanic runs after a recovered panic, e.g. to bump http_panic_total.
	OnPanic func()
}
