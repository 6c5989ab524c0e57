package health

import (
	"context"
	"sync/atomic"

	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

// Probe is checked on every probe request; a nil error means healthy.
type Probe interface{ Check(context.Context) error }

type CheckFunc func(context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// Fixed always passes, or always fails with reason ("unhealthy" if empty).
func Fixed(ok bool, reason string) CheckFunc {
	var err error
	if !ok {
		if reason == "" {
			reason = "unhealthy"
		}
		err = xerrors.New(reason)
	}
	return func(context.Context) error { return err }
}

// All fails with the first failing probe, in order. nil probes are skipped.
func All(ps ...Probe) CheckFunc {
	return func(ctx context.Context) error {
		for _, p := range ps {
			if p == nil {
				continue
			}
			if err := p.Check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// Named prefixes a failure with name so the 503 body says which check failed.
func Named(name string, p Probe) CheckFunc {
	return func(ctx context.Context) error {
		if err := p.Check(ctx); err != nil {
			return xerrors.Wrap(err, name)
		}
		return nil
	}
}

// ShutdownGate fails readiness once Set is called, so the load balancer stops
// routing new requests while in-flight ones drain.
type ShutdownGate struct {
	reason atomic.Pointer[string]
}

func (g *ShutdownGate) Set(reason string) {
	if reason == "" {
		reason = "draining"
	}
	g.reason.Store(&reason)
}

func (g *ShutdownGate) Probe() CheckFunc {
	return func(context.Context) error {
		if r := g.reason.Load(); r != nil {
			return xerrors.New(*r)
		}
		return nil
	}
}
