package cache

import (
	"sync"
	"time"
)

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}

// PassInfo describes the outcome of one selection pass.
type PassInfo struct {
	At       time.Time
	Duration time.Duration
	Placed   int
	Err      string
}

// PassStats records the most recent selection pass for status reporting.
// Latency here matters; the dispatcher updates it on every pass.
type PassStats struct {
	mu   sync.RWMutex
	last PassInfo
}

func NewPassStats() *PassStats {
	return &PassStats{}
}

// Record stores the outcome of the latest pass.
func (s *PassStats) Record(info PassInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = info
}

// Last returns the most recent pass outcome and whether any pass ran yet.
func (s *PassStats) Last() (PassInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, !s.last.At.IsZero()
}

// Reset clears the recorded pass.
func (s *PassStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = PassInfo{}
}
