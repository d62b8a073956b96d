package app

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DataWatcher watches a response file and triggers a callback when it is
// rewritten. The parent directory is watched because editors and export
// scripts usually replace the file rather than write it in place.
type DataWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	onChange func(path string) // Called from the watcher goroutine
}

// NewDataWatcher creates a watcher for path. Bursts of events closer than
// debounce are reported once.
func NewDataWatcher(path string, debounce time.Duration) (*DataWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	// Resolve symlinks so events name the real file.
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return &DataWatcher{
		path:     abs,
		watcher:  w,
		debounce: debounce,
	}, nil
}

// OnChange sets the callback to invoke when the file changes.
// The callback runs on a background goroutine.
func (d *DataWatcher) OnChange(callback func(path string)) {
	d.onChange = callback
}

// Path returns the watched file.
func (d *DataWatcher) Path() string {
	return d.path
}

// Start begins watching in a background goroutine.
func (d *DataWatcher) Start() {
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	go d.watchLoop()
}

// Stop ends the watch loop and releases the underlying watcher.
func (d *DataWatcher) Stop() error {
	if d.stopCh != nil {
		close(d.stopCh)
		<-d.doneCh
		d.stopCh = nil
	}
	return d.watcher.Close()
}

func (d *DataWatcher) watchLoop() {
	defer close(d.doneCh)
	var fire <-chan time.Time
	for {
		select {
		case <-d.stopCh:
			return
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != d.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				fire = time.After(d.debounce)
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch %s: %v", d.path, err)
		case <-fire:
			fire = nil
			if d.onChange != nil {
				d.onChange(d.path)
			}
		}
	}
}
