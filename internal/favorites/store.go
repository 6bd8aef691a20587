// Package favorites keeps the set of favorited cocktail ids for one session:
// persisted locally on every change, and pushed to a server copy (when a sync
// target is configured) with a debounce so rapid toggles coalesce into one
// request.
package favorites

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"
)

// DefaultDebounce is the coalescing window for server pushes.
const DefaultDebounce = 1000 * time.Millisecond

// Persister stores the favorite set locally.
type Persister interface {
	Load() ([]int64, error)
	Save(ids []int64) error
}

// SyncPort pushes the favorite set to a server-held copy. A nil port means
// the session is unauthenticated and nothing is synced.
type SyncPort interface {
	PushFavorites(ctx context.Context, ids []int64) error
}

// Store is safe for use from one logical writer; the debounce timer is the
// only other actor and is always cancelled before rescheduling, so at most
// one pending push exists at a time.
type Store struct {
	log     *slog.Logger
	persist Persister
	window  time.Duration

	mu    sync.Mutex
	set   map[int64]struct{}
	sync  SyncPort
	timer *time.Timer
}

func NewStore(p Persister, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ids, err := p.Load()
	if err != nil {
		return nil, err
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &Store{
		log:     logger,
		persist: p,
		window:  DefaultDebounce,
		set:     set,
	}, nil
}

// SetSync configures (or clears) the server sync target.
func (s *Store) SetSync(port SyncPort) {
	s.mu.Lock()
	s.sync = port
	s.mu.Unlock()
}

func (s *Store) IsFavorite(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.set[id]
	return ok
}

// IDs returns the current set, sorted.
func (s *Store) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idsLocked()
}

func (s *Store) idsLocked() []int64 {
	out := make([]int64, 0, len(s.set))
	for id := range s.set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Toggle flips membership of id, persists the new set immediately, and
// schedules a debounced push to the sync target. The local toggle is never
// rolled back: a failed push is logged and forgotten.
func (s *Store) Toggle(id int64) []int64 {
	s.mu.Lock()
	if _, ok := s.set[id]; ok {
		delete(s.set, id)
	} else {
		s.set[id] = struct{}{}
	}
	ids := s.idsLocked()
	s.schedulePushLocked()
	s.mu.Unlock()

	if err := s.persist.Save(ids); err != nil {
		s.log.Warn("favorites: local save failed", "err", err)
	}
	return ids
}

// schedulePushLocked arms (or re-arms) the debounce timer. The previous timer
// is stopped first, so only the latest set within the window is sent.
func (s *Store) schedulePushLocked() {
	if s.sync == nil {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.window, s.firePush)
}

func (s *Store) firePush() {
	s.mu.Lock()
	port := s.sync
	ids := s.idsLocked()
	s.timer = nil
	s.mu.Unlock()

	if port == nil {
		return
	}
	if err := port.PushFavorites(context.Background(), ids); err != nil {
		s.log.Warn("favorites: sync push failed", "err", err)
	}
}

// MergeWithServer unions the local set with the server's copy (called after a
// successful login), persists the result, and — when the union added anything
// the server didn't have — pushes it back once, best-effort.
func (s *Store) MergeWithServer(serverIDs []int64) []int64 {
	s.mu.Lock()
	for _, id := range serverIDs {
		s.set[id] = struct{}{}
	}
	merged := s.idsLocked()
	port := s.sync
	s.mu.Unlock()

	if err := s.persist.Save(merged); err != nil {
		s.log.Warn("favorites: local save failed", "err", err)
	}
	if port != nil && len(merged) != len(dedupe(serverIDs)) {
		if err := port.PushFavorites(context.Background(), merged); err != nil {
			s.log.Warn("favorites: merge push failed", "err", err)
		}
	}
	return merged
}

// Logout cancels any pending push and stops syncing. The local set stays
// usable offline.
func (s *Store) Logout() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.sync = nil
	s.mu.Unlock()
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

/* ---------- persisters ---------- */

// MemoryPersister keeps the set in process memory, for sessions with no
// writable disk. The zero value is ready to use.
type MemoryPersister struct {
	mu  sync.Mutex
	ids []int64
}

func (m *MemoryPersister) Load() ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.ids...), nil
}

func (m *MemoryPersister) Save(ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append([]int64(nil), ids...)
	return nil
}

// FilePersister stores the set as a JSON array, the same shape the web client
// keeps in localStorage.
type FilePersister struct {
	Path string
}

func (f FilePersister) Load() ([]int64, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(b, &ids); err != nil {
		// Corrupt favorites are not worth failing a session over.
		return nil, nil
	}
	return ids, nil
}

func (f FilePersister) Save(ids []int64) error {
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, b, 0o644)
}
