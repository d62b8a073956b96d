// Package prefs keeps the viewer's UI state between runs: window size, the
// recently opened responses, the watch toggle and the last file directory.
package prefs

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	prefsFile = "preferences.json"
	maxRecent = 8
)

type values struct {
	Width   float64  `json:"windowWidth,omitempty"`
	Height  float64  `json:"windowHeight,omitempty"`
	Recent  []string `json:"recentResponses,omitempty"`
	Watch   bool     `json:"watchResponse"`
	LastDir string   `json:"lastDirectory,omitempty"`
}

// Prefs is safe for use from the UI and the watcher goroutine.
type Prefs struct {
	mu   sync.RWMutex
	path string
	v    values
}

// Load reads ~/.config/smart-chart/preferences.json.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "smart-chart", prefsFile))
}

// LoadFrom reads preferences from path. A missing or unreadable file gives
// empty preferences.
func LoadFrom(path string) *Prefs {
	p := &Prefs{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, &p.v); err != nil {
		log.Printf("preferences %s: %v", path, err)
		p.v = values{}
	}
	return p
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.v, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// WindowSize returns the stored window size, or the fallback when none was
// stored.
func (p *Prefs) WindowSize(fallbackW, fallbackH float64) (w, h float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.v.Width <= 0 || p.v.Height <= 0 {
		return fallbackW, fallbackH
	}
	return p.v.Width, p.v.Height
}

// SetWindowSize records the window size. Empty sizes, as reported before
// the window is shown, are ignored.
func (p *Prefs) SetWindowSize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	p.mu.Lock()
	p.v.Width, p.v.Height = w, h
	p.mu.Unlock()
}

// Recent returns the recently opened responses, newest first.
func (p *Prefs) Recent() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.v.Recent...)
}

// LastResponse returns the newest recent response, or "".
func (p *Prefs) LastResponse() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.v.Recent) == 0 {
		return ""
	}
	return p.v.Recent[0]
}

// AddRecent moves path to the front of the recent list.
func (p *Prefs) AddRecent(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	list := []string{path}
	for _, r := range p.v.Recent {
		if r != path && len(list) < maxRecent {
			list = append(list, r)
		}
	}
	p.v.Recent = list
}

// RemoveRecent drops path from the recent list.
func (p *Prefs) RemoveRecent(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.v.Recent[:0]
	for _, r := range p.v.Recent {
		if r != path {
			kept = append(kept, r)
		}
	}
	p.v.Recent = kept
}

// Watch reports whether the loaded response should be watched for changes.
func (p *Prefs) Watch() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.v.Watch
}

// SetWatch stores the watch toggle.
func (p *Prefs) SetWatch(on bool) {
	p.mu.Lock()
	p.v.Watch = on
	p.mu.Unlock()
}

// LastDir returns the directory of the last opened or saved file.
func (p *Prefs) LastDir() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.v.LastDir
}

// SetLastDir stores the directory of path.
func (p *Prefs) SetLastDir(path string) {
	p.mu.Lock()
	p.v.LastDir = filepath.Dir(path)
	p.mu.Unlock()
}
