package app

import (
	"fmt"
	"sync"
	"time"
)

// Status holds the transient status-bar message. Each message clears
// itself after the TTL unless a newer one replaced it.
type Status struct {
	mu       sync.Mutex
	ttl      time.Duration
	text     string
	seq      int
	timer    *time.Timer
	onChange func(text string)
}

// NewStatus creates a status line whose messages live for ttl. A zero ttl
// keeps messages until replaced.
func NewStatus(ttl time.Duration) *Status {
	return &Status{ttl: ttl}
}

// OnChange sets the callback invoked with every new text, including the
// empty string when a message expires. Expiry runs on a timer goroutine.
func (s *Status) OnChange(callback func(text string)) {
	s.mu.Lock()
	s.onChange = callback
	s.mu.Unlock()
}

// Show replaces the current message.
func (s *Status) Show(format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.text = text
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.ttl > 0 {
		s.timer = time.AfterFunc(s.ttl, func() { s.expire(seq) })
	}
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb(text)
	}
}

func (s *Status) expire(seq int) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.text = ""
	s.timer = nil
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb("")
	}
}

// Text returns the current message.
func (s *Status) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Clear removes the message immediately.
func (s *Status) Clear() {
	s.mu.Lock()
	s.seq++
	s.text = ""
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb("")
	}
}
