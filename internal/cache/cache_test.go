package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknexus/tasknexus/pkg/models"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	c, err := New(filepath.Join(tmpDir, "nested", "cache"), 24, true)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if !c.Enabled() {
		t.Error("cache should be enabled")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "nested", "cache")); os.IsNotExist(err) {
		t.Error("New() should create cache directory")
	}

	c, err = New("", 0, false)
	if err != nil {
		t.Fatalf("New() error for disabled cache: %v", err)
	}
	if c.Enabled() {
		t.Error("cache should be disabled")
	}
}

func TestSetAndGet(t *testing.T) {
	c, err := New(t.TempDir(), 24, true)
	require.NoError(t, err)

	require.NoError(t, c.Set("k", []byte(`{"a":1}`)))

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(got))

	_, ok = c.Get("other")
	assert.False(t, ok)

	assert.Error(t, c.Set("bad", []byte("not json")))
}

func TestTasksRoundTrip(t *testing.T) {
	c, err := New(t.TempDir(), 24, true)
	require.NoError(t, err)

	key := NormalizedKey(HashBytes([]byte("export")), "abcd")
	tasks := []models.NormalizedTask{
		{ID: "a", Categories: []string{"Feature"}, BurnedPoints: 1.5, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, c.SetTasks(key, tasks))

	got, ok := c.GetTasks(key)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 1.5, got[0].BurnedPoints)
	assert.True(t, tasks[0].CreatedAt.Equal(got[0].CreatedAt))

	_, ok = c.GetTasks(NormalizedKey(HashBytes([]byte("export")), "other-fingerprint"))
	assert.False(t, ok)
}

func TestTTLExpiration(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, 1, true)
	require.NoError(t, err)

	stale, err := json.Marshal(Entry{Key: "old", Timestamp: time.Now().Add(-2 * time.Hour), Data: json.RawMessage(`1`)})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(c.keyPath("old"), stale, 0o600))

	_, ok := c.Get("old")
	assert.False(t, ok)
	_, err = os.Stat(c.keyPath("old"))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed")
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c, err := New(t.TempDir(), 0, true)
	require.NoError(t, err)

	old, err := json.Marshal(Entry{Key: "k", Timestamp: time.Now().Add(-1000 * time.Hour), Data: json.RawMessage(`2`)})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(c.keyPath("k"), old, 0o600))

	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestInvalidateAndClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := New(dir, 24, true)
	require.NoError(t, err)

	require.NoError(t, c.Set("a", []byte(`1`)))
	require.NoError(t, c.Set("b", []byte(`2`)))

	require.NoError(t, c.Invalidate("a"))
	require.NoError(t, c.Invalidate("a"), "second invalidate is a no-op")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	require.NoError(t, c.Clear())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestDisabledCache(t *testing.T) {
	c, err := New("", 0, false)
	require.NoError(t, err)

	assert.NoError(t, c.Set("k", []byte(`1`)))
	assert.NoError(t, c.SetTasks("k", nil))
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate("k"))
	assert.NoError(t, c.Clear())

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
}

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("hello"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashBytes([]byte("hello")))
	assert.NotEqual(t, a, HashBytes([]byte("hello!")))
}

func TestGetStats(t *testing.T) {
	c, err := New(t.TempDir(), 24, true)
	require.NoError(t, err)

	require.NoError(t, c.Set("a", []byte(`[1,2,3]`)))
	require.NoError(t, c.Set("b", []byte(`{}`)))

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Positive(t, stats.TotalSize)
}

func TestKeyPath(t *testing.T) {
	c, err := New(t.TempDir(), 24, true)
	require.NoError(t, err)

	p := c.keyPath("normalized:../../etc/passwd:ff")
	assert.Equal(t, c.dir, filepath.Dir(p))
	assert.True(t, strings.HasSuffix(p, ".json"))
	assert.NotEqual(t, p, c.keyPath("other"))
}
