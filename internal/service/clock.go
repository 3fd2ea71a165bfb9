package service

import (
	"sync"
	"time"
)

// MonotonicClock hands out strictly increasing UTC timestamps at microsecond
// resolution, the finest precision both storage backends keep. Tasks are
// listed by created_at alone, so two inserts must never share a timestamp.
type MonotonicClock struct {
	mu   sync.Mutex
	last time.Time
	wall func() time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{wall: time.Now}
}

func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.wall().UTC().Truncate(time.Microsecond)
	if !now.After(c.last) {
		now = c.last.Add(time.Microsecond)
	}
	c.last = now
	return now
}
