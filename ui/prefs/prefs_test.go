package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", prefsFile)
	p := LoadFrom(path)
	w, h := p.WindowSize(800, 600)
	assert.Equal(t, 800.0, w)
	assert.Equal(t, 600.0, h)
	assert.Empty(t, p.LastResponse())

	p.SetWindowSize(1024, 700)
	p.AddRecent("/data/loop.csv")
	p.SetWatch(true)
	p.SetLastDir("/data/loop.csv")
	require.NoError(t, p.Save())

	q := LoadFrom(path)
	w, h = q.WindowSize(800, 600)
	assert.Equal(t, 1024.0, w)
	assert.Equal(t, 700.0, h)
	assert.Equal(t, "/data/loop.csv", q.LastResponse())
	assert.True(t, q.Watch())
	assert.Equal(t, "/data", q.LastDir())
}

func TestPrefsIgnoresEmptyWindowSize(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), prefsFile))
	p.SetWindowSize(1024, 700)
	p.SetWindowSize(0, 0)
	w, h := p.WindowSize(1, 1)
	assert.Equal(t, 1024.0, w)
	assert.Equal(t, 700.0, h)
}

func TestPrefsRecentList(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), prefsFile))
	p.AddRecent("a.csv")
	p.AddRecent("b.csv")
	p.AddRecent("a.csv")
	assert.Equal(t, []string{"a.csv", "b.csv"}, p.Recent())

	for i := 0; i < 2*maxRecent; i++ {
		p.AddRecent(fmt.Sprintf("r%d.csv", i))
	}
	recent := p.Recent()
	assert.Len(t, recent, maxRecent)
	assert.Equal(t, fmt.Sprintf("r%d.csv", 2*maxRecent-1), recent[0])

	p.RemoveRecent(recent[0])
	assert.Equal(t, recent[1], p.LastResponse())
}

func TestPrefsIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	p := LoadFrom(path)
	w, _ := p.WindowSize(1.5, 1)
	assert.Equal(t, 1.5, w)
	assert.False(t, p.Watch())
}
