package store

import (
	"sync"

	"artisanmarket/internal/domain/entity"
)

// NegotiationStore is an in-memory aggregate of one side of a user's
// negotiations: the list they sent (as customer) or received (as artisan),
// newest first, plus the derived pending badge count.
//
// Every mutation builds a fresh entry slice and swaps it in under the lock;
// entries already handed out via Snapshot are never written again, so a
// local response racing a push event can never be observed half-applied.
type NegotiationStore struct {
	mu      sync.Mutex
	entries []entity.NegotiationSummary
	readIDs map[string]bool
	pending int
	loading bool
	lastErr error
}

// Snapshot is a consistent read of the store at one instant.
type Snapshot struct {
	Entries      []entity.NegotiationSummary
	PendingCount int
	Loading      bool
	Err          error
}

func NewNegotiationStore() *NegotiationStore {
	return &NegotiationStore{
		readIDs: make(map[string]bool),
	}
}

// ReplaceAll swaps the whole list, as on initial load or a full refresh.
// The pending count is recomputed from the new list, never patched.
func (s *NegotiationStore) ReplaceAll(entries []entity.NegotiationSummary) {
	next := make([]entity.NegotiationSummary, len(entries))
	copy(next, entries)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = next
	s.pruneReadIDs()
	s.pending = s.derivePending()
	s.loading = false
	s.lastErr = nil
}

// PrependOne inserts a newly discovered negotiation at the head. If the id
// is already present — a local create racing its own push echo — the call
// degrades to an in-place update instead of duplicating.
func (s *NegotiationStore) PrependOne(summary entity.NegotiationSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(summary.ID) >= 0 {
		s.replaceLocked(summary)
		return
	}

	next := make([]entity.NegotiationSummary, 0, len(s.entries)+1)
	next = append(next, summary)
	next = append(next, s.entries...)
	s.entries = next
	s.pending = s.derivePending()
}

// UpdateOne replaces the entry with the same id in place, preserving list
// order. Unknown ids are ignored. Idempotent under repeated payloads.
func (s *NegotiationStore) UpdateOne(summary entity.NegotiationSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(summary)
}

// MarkAsRead drops a pending entry's contribution to the badge count
// without removing it from the list. Marking twice has no further effect.
func (s *NegotiationStore) MarkAsRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 || s.entries[i].Status != entity.NegotiationPending || s.readIDs[id] {
		return
	}
	s.readIDs[id] = true
	s.pending = s.derivePending()
}

// SetLoading flags an in-flight refresh.
func (s *NegotiationStore) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records a failed refresh. The previous entries stay intact.
func (s *NegotiationStore) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	s.loading = false
}

// Clear resets the store to empty.
func (s *NegotiationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.readIDs = make(map[string]bool)
	s.pending = 0
	s.loading = false
	s.lastErr = nil
}

// Snapshot returns the current state. The returned slice is not written to
// by subsequent mutations.
func (s *NegotiationStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Entries:      s.entries,
		PendingCount: s.pending,
		Loading:      s.loading,
		Err:          s.lastErr,
	}
}

// PendingCount is the badge number for this side.
func (s *NegotiationStore) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *NegotiationStore) indexOf(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *NegotiationStore) replaceLocked(summary entity.NegotiationSummary) {
	i := s.indexOf(summary.ID)
	if i < 0 {
		return
	}

	next := make([]entity.NegotiationSummary, len(s.entries))
	copy(next, s.entries)
	next[i] = summary
	s.entries = next

	// A read mark only makes sense while the entry is pending
	if summary.Status != entity.NegotiationPending {
		delete(s.readIDs, summary.ID)
	}
	s.pending = s.derivePending()
}

func (s *NegotiationStore) derivePending() int {
	count := 0
	for i := range s.entries {
		if s.entries[i].Status == entity.NegotiationPending && !s.readIDs[s.entries[i].ID] {
			count++
		}
	}
	return count
}

func (s *NegotiationStore) pruneReadIDs() {
	present := make(map[string]bool, len(s.entries))
	for i := range s.entries {
		present[s.entries[i].ID] = true
	}
	for id := range s.readIDs {
		if !present[id] {
			delete(s.readIDs, id)
		}
	}
}

// SessionStores are the two per-user aggregates: negotiations the user sent
// as a customer and those they received as an artisan.
type SessionStores struct {
	Sent     *NegotiationStore
	Received *NegotiationStore
}

func NewSessionStores() *SessionStores {
	return &SessionStores{
		Sent:     NewNegotiationStore(),
		Received: NewNegotiationStore(),
	}
}

// ClearAll empties both sides. Must run before another user's data is
// loaded into the same session slot.
func (s *SessionStores) ClearAll() {
	s.Sent.Clear()
	s.Received.Clear()
}

// Registry tracks the live session stores by user id so the REST surface
// (badge counts, mark-read) can reach the same state the bridge maintains.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*SessionStores
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*SessionStores),
	}
}

// Attach installs fresh session stores for the user, replacing any previous
// session's slot. The replaced session keeps its own stores and tears them
// down through its bridge; a reconnect never shares state with the
// connection it displaced.
func (r *Registry) Attach(userID string) *SessionStores {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := NewSessionStores()
	r.sessions[userID] = s
	return s
}

// Get returns the user's session stores if a session is live.
func (r *Registry) Get(userID string) (*SessionStores, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Detach releases the user's slot, but only when it still belongs to the
// given session. A stale teardown arriving after a reconnect has already
// replaced the slot is a no-op.
func (r *Registry) Detach(userID string, stores *SessionStores) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[userID]; ok && current == stores {
		delete(r.sessions, userID)
	}
}
