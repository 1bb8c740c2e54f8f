package exposure

import (
	"bytes"
	"encoding/json"
	"sync"
)

// Session tracks the pending working copy of the document alongside the
// last persisted one, so edits can be previewed and discarded.
//
// Edits run under the session lock and propagation executes inside the
// edit, so the pending copy is always internally consistent before the
// next read. Readers get clones; the session never hands out a document
// another goroutine can mutate.
type Session struct {
	mu        sync.RWMutex
	pending   *Config
	persisted *Config
}

// NewSession starts a session from the persisted document. The pending
// copy begins as a clone of it.
func NewSession(persisted *Config) *Session {
	persisted.ensureMaps()
	return &Session{
		pending:   persisted.Clone(),
		persisted: persisted,
	}
}

// Pending returns a clone of the working copy.
func (s *Session) Pending() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending.Clone()
}

// Persisted returns a clone of the last saved document.
func (s *Session) Persisted() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persisted.Clone()
}

// Edit runs a mutation against the working copy under the session lock.
// Propagation belongs inside fn so the copy is consistent on release.
func (s *Session) Edit(fn func(pending *Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.pending)
}

// ReplacePending swaps in a whole new working copy (the PUT /config
// path). The document must already be normalized.
func (s *Session) ReplacePending(cfg *Config) {
	cfg.ensureMaps()
	s.mu.Lock()
	s.pending = cfg
	s.mu.Unlock()
}

// Reset discards the working copy, reloading it from the persisted
// document.
func (s *Session) Reset() {
	s.mu.Lock()
	s.pending = s.persisted.Clone()
	s.mu.Unlock()
}

// Commit promotes the working copy to persisted after a successful
// save. The pending copy stays as-is (it now equals persisted).
func (s *Session) Commit() {
	s.mu.Lock()
	s.persisted = s.pending.Clone()
	s.mu.Unlock()
}

// Dirty reports whether the working copy differs from persisted.
// Comparison is by normalized JSON encoding.
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !equalConfigs(s.pending, s.persisted)
}

// equalConfigs compares two documents by canonical JSON encoding.
// encoding/json sorts map keys, so the comparison is deterministic.
func equalConfigs(a, b *Config) bool {
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
