package app

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resp.csv")
	other := filepath.Join(dir, "other.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,0,0\n"), 0o644))

	w, err := NewDataWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)
	var calls atomic.Int32
	w.OnChange(func(p string) {
		assert.Equal(t, w.Path(), p)
		calls.Add(1)
	})
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, calls.Load())

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("1,0,0\n2,1,1\n"), 0o644))
	}
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestDataWatcherMissingDir(t *testing.T) {
	_, err := NewDataWatcher(filepath.Join(t.TempDir(), "nope", "resp.csv"), time.Millisecond)
	assert.Error(t, err)
}
