package favorites

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPersister struct {
	mu      sync.Mutex
	ids     []int64
	saves   int
	saveErr error
	loadErr error
}

func (m *memPersister) Load() ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.ids...), m.loadErr
}

func (m *memPersister) Save(ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.ids = append([]int64(nil), ids...)
	m.saves++
	return nil
}

type recordingSync struct {
	mu     sync.Mutex
	pushes [][]int64
	err    error
}

func (r *recordingSync) PushFavorites(_ context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.pushes = append(r.pushes, append([]int64(nil), ids...))
	return nil
}

func (r *recordingSync) pushCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pushes)
}

func (r *recordingSync) lastPush() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pushes) == 0 {
		return nil
	}
	return r.pushes[len(r.pushes)-1]
}

func newTestStore(t *testing.T, p *memPersister) *Store {
	t.Helper()
	s, err := NewStore(p, nil)
	require.NoError(t, err)
	s.window = 20 * time.Millisecond
	return s
}

func TestToggleAddsAndRemoves(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, p)

	s.Toggle(7)
	assert.True(t, s.IsFavorite(7))
	assert.Equal(t, []int64{7}, s.IDs())

	s.Toggle(7)
	assert.False(t, s.IsFavorite(7))
	assert.Empty(t, s.IDs())
}

func TestTogglePersistsEveryChange(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, p)

	s.Toggle(1)
	s.Toggle(2)
	s.Toggle(1)

	assert.Equal(t, 3, p.saves)
	assert.Equal(t, []int64{2}, p.ids)
}

func TestLoadRestoresPersistedSet(t *testing.T) {
	p := &memPersister{ids: []int64{3, 5}}
	s := newTestStore(t, p)

	assert.True(t, s.IsFavorite(3))
	assert.True(t, s.IsFavorite(5))
	assert.False(t, s.IsFavorite(4))
}

func TestDebounceCoalescesRapidToggles(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, p)
	port := &recordingSync{}
	s.SetSync(port)

	s.Toggle(1)
	s.Toggle(2)
	s.Toggle(3)

	// nothing yet: all three landed inside the window
	assert.Equal(t, 0, port.pushCount())

	require.Eventually(t, func() bool { return port.pushCount() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, []int64{1, 2, 3}, port.lastPush())
}

func TestDebounceSendsLatestSnapshot(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, p)
	port := &recordingSync{}
	s.SetSync(port)

	s.Toggle(1)
	s.Toggle(1) // net no-op before the window elapses

	require.Eventually(t, func() bool { return port.pushCount() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Empty(t, port.lastPush())
}

func TestNoPushWithoutSyncTarget(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, p)

	s.Toggle(1)
	time.Sleep(3 * s.window)

	// no panic, local state intact
	assert.Equal(t, []int64{1}, s.IDs())
}

func TestPushFailureKeepsLocalState(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, p)
	port := &recordingSync{err: errors.New("server down")}
	s.SetSync(port)

	s.Toggle(9)
	time.Sleep(3 * s.window)

	assert.True(t, s.IsFavorite(9))
	assert.Equal(t, []int64{9}, p.ids)
}

func TestMergeWithServerUnions(t *testing.T) {
	p := &memPersister{ids: []int64{1, 2}}
	s := newTestStore(t, p)
	port := &recordingSync{}
	s.SetSync(port)

	merged := s.MergeWithServer([]int64{2, 3})

	assert.Equal(t, []int64{1, 2, 3}, merged)
	assert.Equal(t, []int64{1, 2, 3}, p.ids)
	// local had an id the server lacked, so the union goes back up once
	assert.Equal(t, 1, port.pushCount())
	assert.Equal(t, []int64{1, 2, 3}, port.lastPush())
}

func TestMergeWithServerNoPushWhenServerIsSuperset(t *testing.T) {
	p := &memPersister{ids: []int64{2}}
	s := newTestStore(t, p)
	port := &recordingSync{}
	s.SetSync(port)

	merged := s.MergeWithServer([]int64{1, 2, 3})

	assert.Equal(t, []int64{1, 2, 3}, merged)
	assert.Equal(t, 0, port.pushCount())
}

func TestLogoutCancelsPendingPush(t *testing.T) {
	p := &memPersister{}
	s := newTestStore(t, p)
	port := &recordingSync{}
	s.SetSync(port)

	s.Toggle(4)
	s.Logout()
	time.Sleep(3 * s.window)

	assert.Equal(t, 0, port.pushCount())
	// favorites survive logout for offline use
	assert.True(t, s.IsFavorite(4))
}

func TestMemoryPersisterRoundTrip(t *testing.T) {
	var mp MemoryPersister
	require.NoError(t, mp.Save([]int64{1, 4}))

	s, err := NewStore(&mp, nil)
	require.NoError(t, err)
	assert.True(t, s.IsFavorite(1))
	assert.True(t, s.IsFavorite(4))
}

func TestFilePersisterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	fp := FilePersister{Path: path}

	require.NoError(t, fp.Save([]int64{5, 8}))
	ids, err := fp.Load()
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 8}, ids)
}

func TestFilePersisterMissingFile(t *testing.T) {
	fp := FilePersister{Path: filepath.Join(t.TempDir(), "nope.json")}
	ids, err := fp.Load()
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestFilePersisterCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	fp := FilePersister{Path: path}
	ids, err := fp.Load()
	require.NoError(t, err)
	assert.Nil(t, ids)
}
