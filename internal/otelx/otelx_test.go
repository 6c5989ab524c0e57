package otelx

import (
	"context"
	"slices"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Options{Enabled: false, Endpoint: "ignored:4317", Sample: 5})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}

	// ids are still minted so X-Trace-Id and log correlation keep working
	_, span := otel.Tracer("test").Start(context.Background(), "avatar.render")
	defer span.End()
	if !span.SpanContext().IsValid() {
		t.Fatal("disabled tracing produced an invalid span context")
	}
}

func TestInit_Disabled_Propagators(t *testing.T) {
	_, _ = Init(context.Background(), Options{})
	fields := otel.GetTextMapPropagator().Fields()
	for _, want := range []string{"traceparent", "baggage"} {
		if !slices.Contains(fields, want) {
			t.Fatalf("propagator fields %v missing %q", fields, want)
		}
	}
}

func TestInit_Enabled_Bounded(t *testing.T) {
	start := time.Now()
	shutdown, err := Init(context.Background(), Options{
		Enabled:   true,
		Endpoint:  "localhost:1",
		Insecure:  true,
		Sample:    1,
		Service:   "avatars-web",
		Component: "server",
		Version:   "test",
	})
	elapsed := time.Since(start)
	if elapsed > exporterDialTimeout+5*time.Second {
		t.Fatalf("Init took %v", elapsed)
	}
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = shutdown(ctx)
}

func TestServiceName(t *testing.T) {
	if got := serviceName(Options{Service: "avatars-web", Component: "server"}); got != "avatars-web.server" {
		t.Fatalf("serviceName = %q", got)
	}
	if got := serviceName(Options{Service: "avatars-web"}); got != "avatars-web" {
		t.Fatalf("serviceName = %q", got)
	}
}

func TestClampRatio(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0: 0, 0.25: 0.25, 1: 1, 7: 1} {
		if got := clampRatio(in); got != want {
			t.Errorf("clampRatio(%v) = %v, want %v", in, got, want)
		}
	}
}
