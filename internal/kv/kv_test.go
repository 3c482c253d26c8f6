package kv

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "state", "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// =============================================================================
// STORE CONTRACT
// =============================================================================

func TestStores(t *testing.T) {
	impls := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"sqlite": func(t *testing.T) Store { return openTestSQLite(t) },
	}

	for name, open := range impls {
		t.Run(name, func(t *testing.T) {
			s := open(t)

			_, ok, err := s.Get(KeyCart)
			require.NoError(t, err)
			assert.False(t, ok, "fresh store should be empty")

			require.NoError(t, s.Set(KeyCart, "[]"))
			require.NoError(t, s.Set(KeyCart, `[{"id":1}]`))
			v, ok, err := s.Get(KeyCart)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":1}]`, v, "last write wins")

			require.NoError(t, s.Set(KeyUsers, "[]"))
			keys, err := s.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{KeyCart, KeyUsers}, keys)

			require.NoError(t, s.Delete(KeyCart))
			require.NoError(t, s.Delete("never-set"))
			_, ok, err = s.Get(KeyCart)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyCurrentUser, `{"id":1}`))
	require.NoError(t, s.Close())

	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err := s2.Get(KeyCurrentUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":1}`, v)
	assert.Equal(t, path, s2.Path())
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemory()

	type rec struct {
		ID  int    `json:"id"`
		Tag string `json:"tag"`
	}

	var out rec
	ok, err := GetJSON(s, "missing", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(s, "rec", rec{ID: 7, Tag: "x"}))
	ok, err = GetJSON(s, "rec", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, rec{ID: 7, Tag: "x"}, out)

	require.NoError(t, s.Set("rec", "{not json"))
	ok, err = GetJSON(s, "rec", &out)
	assert.True(t, ok)
	assert.Error(t, err)
	assert.Equal(t, rec{ID: 7, Tag: "x"}, out, "decode failure leaves target untouched")
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatcher_ReportsWritesFromAnotherHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.db")

	owner, err := OpenSQLite(path)
	require.NoError(t, err)
	defer owner.Close()

	w, err := NewWatcher(path, 50*time.Millisecond)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Close()

	other, err := OpenSQLite(path)
	require.NoError(t, err)
	defer other.Close()
	require.NoError(t, other.Set(KeyCart, `[{"id":2,"qty":1}]`))

	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestWatcher_CloseWithoutStart(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "x.db"), 0)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}

func TestWatcher_StartIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, "x.db"), 20*time.Millisecond)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Close())
}
