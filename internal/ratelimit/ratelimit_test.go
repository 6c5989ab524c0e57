package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/keithlinneman/avatars-web/internal/httpmw"
)

// fakeClock is advanced by hand so refill and eviction are deterministic.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, clock *fakeClock, opts ...Option) *IPLimiter {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	all := append([]Option{WithRate(1, 3), WithTTL(time.Minute), withClock(clock.Now)}, opts...)
	return New(ctx, all...)
}

func TestAllow_BurstThenRefill(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(t, clock)

	for i := 0; i < 3; i++ {
		if !l.allow("203.0.113.1") {
			t.Fatalf("request %d denied inside burst", i)
		}
	}
	if l.allow("203.0.113.1") {
		t.Fatal("request past burst allowed")
	}

	clock.Advance(time.Second)
	if !l.allow("203.0.113.1") {
		t.Fatal("token not refilled after one second")
	}
	if l.allow("203.0.113.1") {
		t.Fatal("refill granted more than one token")
	}
}

func TestAllow_SeparateBuckets(t *testing.T) {
	l := newTestLimiter(t, newFakeClock())
	for i := 0; i < 3; i++ {
		l.allow("203.0.113.1")
	}
	if l.allow("203.0.113.1") {
		t.Fatal("first ip not limited")
	}
	if !l.allow("203.0.113.2") {
		t.Fatal("second ip limited by first ip's bucket")
	}
}

func TestDenyCallbacks(t *testing.T) {
	var first, every atomic.Int32
	l := newTestLimiter(t, newFakeClock(),
		WithOnFirstDenied(func(string) { first.Add(1) }),
		WithOnDenied(func(string) { every.Add(1) }),
	)
	for i := 0; i < 8; i++ {
		l.allow("198.51.100.9")
	}
	if first.Load() != 1 || every.Load() != 5 {
		t.Fatalf("first=%d every=%d, want 1 and 5", first.Load(), every.Load())
	}

	for i := 0; i < 4; i++ {
		l.allow("198.51.100.10")
	}
	if first.Load() != 2 {
		t.Fatalf("first-denied not per ip: %d", first.Load())
	}
}

func TestEvict(t *testing.T) {
	clock := newFakeClock()
	var first atomic.Int32
	l := newTestLimiter(t, clock, WithOnFirstDenied(func(string) { first.Add(1) }))

	for i := 0; i < 4; i++ {
		l.allow("idle")
	}
	clock.Advance(30 * time.Second)
	l.allow("active")

	clock.Advance(45 * time.Second)
	l.evict(clock.Now())

	if l.Len() != 1 {
		t.Fatalf("visitors = %d, want only the active one", l.Len())
	}

	// a re-created entry logs its first denial again
	for i := 0; i < 4; i++ {
		l.allow("idle")
	}
	if first.Load() != 2 {
		t.Fatalf("first-denied count = %d, want 2", first.Load())
	}
}

func TestCleanupStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := New(ctx, WithTTL(10*time.Millisecond))
	l.allow("203.0.113.1")
	cancel()
	time.Sleep(30 * time.Millisecond)
	// the loop has exited; direct calls still work
	l.evict(time.Now().Add(time.Hour))
	if l.Len() != 0 {
		t.Fatalf("visitors = %d", l.Len())
	}
}

func TestDefaults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := New(ctx)
	if l.perSecond != defaultPerSecond || l.burst != defaultBurst || l.ttl != defaultTTL || l.maxVisitors != defaultMaxVisitors {
		t.Fatalf("defaults = %v/%d/%v/%d", l.perSecond, l.burst, l.ttl, l.maxVisitors)
	}
}

func TestMaxVisitors(t *testing.T) {
	clock := newFakeClock()
	var capacity atomic.Int32
	l := newTestLimiter(t, clock, WithMaxVisitors(2), WithOnCapacity(func(int) { capacity.Add(1) }))

	if !l.allow("a") || !l.allow("b") {
		t.Fatal("under capacity denied")
	}
	if l.allow("c") || l.allow("d") {
		t.Fatal("new ip admitted at capacity")
	}
	if !l.allow("a") {
		t.Fatal("known ip refused at capacity")
	}
	if capacity.Load() != 1 {
		t.Fatalf("capacity callbacks = %d, want 1", capacity.Load())
	}

	clock.Advance(2 * time.Minute)
	l.allow("a")
	l.evict(clock.Now())
	if !l.allow("c") {
		t.Fatal("eviction did not free capacity")
	}
	if l.allow("d") {
		t.Fatal("table should be full again")
	}
	if capacity.Load() != 2 {
		t.Fatalf("capacity callbacks = %d, want 2 after refill", capacity.Load())
	}
}

func TestMaxVisitorsZeroIsUnbounded(t *testing.T) {
	l := newTestLimiter(t, newFakeClock(), WithMaxVisitors(0))
	for i := 0; i < 500; i++ {
		if !l.allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256)) {
			t.Fatalf("ip %d denied", i)
		}
	}
}

func serveLimited(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/svg", http.NoBody)
	req = req.WithContext(httpmw.WithClientIP(req.Context(), ip))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware(t *testing.T) {
	var reached atomic.Int32
	l := newTestLimiter(t, newFakeClock())
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached.Add(1)
	}))

	for i := 0; i < 3; i++ {
		if rec := serveLimited(h, "203.0.113.7"); rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, rec.Code)
		}
	}
	rec := serveLimited(h, "203.0.113.7")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != retryAfterSeconds {
		t.Fatalf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	if reached.Load() != 3 {
		t.Fatalf("handler reached %d times, want 3", reached.Load())
	}

	if rec := serveLimited(h, "203.0.113.8"); rec.Code != http.StatusOK {
		t.Fatalf("other ip = %d", rec.Code)
	}
}

func TestMiddleware_EmptyClientIPShareOneBucket(t *testing.T) {
	l := newTestLimiter(t, newFakeClock())
	h := l.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		codes = append(codes, serveLimited(h, "").Code)
	}
	if codes[3] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestAllow_Concurrent(t *testing.T) {
	l := newTestLimiter(t, newFakeClock(), WithRate(1, 100), WithMaxVisitors(50))
	var wg sync.WaitGroup
	var allowed atomic.Int32
	for g := 0; g < 20; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if l.allow(fmt.Sprintf("ip-%d", (g*100+i)%80)) {
					allowed.Add(1)
				}
			}
		}(g)
	}
	wg.Wait()
	if l.Len() > 50 {
		t.Fatalf("visitors = %d over bound", l.Len())
	}
	if allowed.Load() == 0 {
		t.Fatal("nothing allowed")
	}
}
