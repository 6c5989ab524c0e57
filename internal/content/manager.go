package content

import (
	"sync/atomic"
	"time"

	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

// Manager publishes the active landing snapshot to request handlers without
// locking, and remembers one prior snapshot for Rollback.
type Manager struct {
	active   atomic.Pointer[Snapshot]
	previous atomic.Pointer[Snapshot]
}

func NewManager() *Manager { return &Manager{} }

// Set activates a copy of s. A zero LoadedAt is stamped with the current time.
func (m *Manager) Set(s Snapshot) {
	if s.LoadedAt.IsZero() {
		s.LoadedAt = time.Now().UTC()
	}
	if replaced := m.active.Swap(&s); replaced != nil {
		m.previous.Store(replaced)
	}
}

// Get returns the active snapshot; ok stays false until one with an FS is set.
func (m *Manager) Get() (*Snapshot, bool) {
	s := m.active.Load()
	return s, s != nil && s.FS != nil
}

// Rollback reactivates the snapshot replaced by the last Set, once.
func (m *Manager) Rollback() bool {
	prev := m.previous.Swap(nil)
	if prev != nil {
		m.active.Store(prev)
	}
	return prev != nil
}

// ReadyErr is the readiness check for the landing page.
func (m *Manager) ReadyErr() error {
	if _, ok := m.Get(); !ok {
		return xerrors.New("content: no active snapshot")
	}
	return nil
}

func (m *Manager) meta() Meta {
	if s := m.active.Load(); s != nil {
		return s.Meta
	}
	return Meta{Source: SourceUnknown}
}

func (m *Manager) ContentVersion() string { return m.meta().Version }
func (m *Manager) ContentHash() string    { return m.meta().SHA256 }
func (m *Manager) Source() Source         { return m.meta().Source }

func (m *Manager) LoadedAt() time.Time {
	if s := m.active.Load(); s != nil {
		return s.LoadedAt
	}
	return time.Time{}
}
