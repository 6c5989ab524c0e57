package content

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/keithlinneman/avatars-web/internal/cryptoutil"
	"github.com/keithlinneman/avatars-web/internal/log"
	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

const (
	DefaultPollInterval = 30 * time.Second
	maxPollBackoff      = 5 * time.Minute
)

// BundleSource is the part of *Loader the watcher uses.
type BundleSource interface {
	FetchCurrentBundleHash(ctx context.Context) (string, error)
	LoadHash(ctx context.Context, hash string) (*Snapshot, error)
}

type WatcherOptions struct {
	Logger   log.Logger
	Source   BundleSource
	Manager  *Manager
	Interval time.Duration

	// OnSwap runs after a new snapshot becomes active, including rollbacks.
	OnSwap func(Snapshot)
}

// Watcher polls the bundle source and swaps new landing bundles into the
// manager. A hash that failed to load, or that was rolled back, is skipped
// until the source points somewhere else.
type Watcher struct {
	src      BundleSource
	mgr      *Manager
	logger   log.Logger
	interval time.Duration
	onSwap   func(Snapshot)

	mu       sync.Mutex
	rejected string
}

func NewWatcher(opts WatcherOptions) (*Watcher, error) {
	if opts.Source == nil || opts.Manager == nil {
		return nil, xerrors.New("content watcher needs a Source and a Manager")
	}
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	return &Watcher{
		src:      opts.Source,
		mgr:      opts.Manager,
		logger:   opts.Logger,
		interval: opts.Interval,
		onSwap:   opts.OnSwap,
	}, nil
}

// Run polls until ctx is done. Failed polls back off exponentially up to
// five minutes; the first success restores the normal interval.
func (w *Watcher) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * w.interval
	bo.MaxInterval = maxPollBackoff

	w.logger.Info(ctx, "landing watcher started", "interval", w.interval.String())
	timer := time.NewTimer(w.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "landing watcher stopped")
			return ctx.Err()
		case <-timer.C:
		}

		next := w.interval
		if _, err := w.Poll(ctx); err != nil {
			next = bo.NextBackOff()
			w.logger.Warn(ctx, "landing poll failed, backing off", "error", err.Error(), "next_poll_in", next.String())
		} else {
			bo.Reset()
		}
		timer.Reset(next)
	}
}

// Poll checks the source once and reports whether a new snapshot was swapped in.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	hash, err := w.src.FetchCurrentBundleHash(ctx)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if cryptoutil.HashEqual(hash, w.mgr.ContentHash()) || cryptoutil.HashEqual(hash, w.rejected) {
		return false, nil
	}

	snap, err := w.src.LoadHash(ctx, hash)
	if err != nil {
		w.rejected = hash
		w.logger.Error(ctx, err, "landing bundle rejected, keeping current content",
			"hash", shortHash(hash),
			"current_hash", shortHash(w.mgr.ContentHash()),
		)
		return false, nil
	}

	old := w.mgr.ContentHash()
	w.mgr.Set(*snap)
	w.logger.Info(ctx, "landing bundle swapped",
		"old_hash", shortHash(old),
		"new_hash", shortHash(hash),
		"version", snap.Meta.Version,
	)
	w.swapped(ctx)
	return true, nil
}

// Rollback reinstates the previous snapshot and skips the abandoned hash on
// later polls. It reports false when there is nothing to go back to.
func (w *Watcher) Rollback(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	abandoned := w.mgr.ContentHash()
	if !w.mgr.Rollback() {
		return false
	}
	w.rejected = abandoned
	w.logger.Warn(ctx, "landing content rolled back",
		"abandoned_hash", shortHash(abandoned),
		"restored_version", w.mgr.ContentVersion(),
	)
	w.swapped(ctx)
	return true
}

func (w *Watcher) swapped(ctx context.Context) {
	if w.onSwap == nil {
		return
	}
	snap, ok := w.mgr.Get()
	if !ok {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(ctx, xerrors.Newf("OnSwap panic: %v", r), "landing swap callback panicked")
		}
	}()
	w.onSwap(*snap)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
