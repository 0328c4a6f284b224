package bot

import (
	"fmt"
	"sync"
	"time"
)

type turn struct {
	role string
	text string
	at   time.Time
}

// DialogCache keeps a short per-user conversation memory for the persona
// replies. Capacity bounds the turns kept per user; entries older than the
// TTL are dropped on read. No global state: the instance is created at
// startup and passed to the handler.
type DialogCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	m        map[int64][]turn
	now      func() time.Time
}

func NewDialogCache(capacity int, ttl time.Duration) *DialogCache {
	if capacity <= 0 {
		capacity = 20
	}
	return &DialogCache{
		capacity: capacity,
		ttl:      ttl,
		m:        make(map[int64][]turn),
		now:      time.Now,
	}
}

func (c *DialogCache) Append(userID int64, role, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	turns := append(c.m[userID], turn{role: role, text: text, at: c.now()})
	if len(turns) > c.capacity {
		turns = turns[len(turns)-c.capacity:]
	}
	c.m[userID] = turns
}

// History returns the remembered turns as "role: text" lines, oldest first.
func (c *DialogCache) History(userID int64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	turns := c.prune(userID)
	out := make([]string, 0, len(turns))
	for _, t := range turns {
		out = append(out, fmt.Sprintf("%s: %s", t.role, t.text))
	}
	return out
}

func (c *DialogCache) Len(userID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prune(userID))
}

func (c *DialogCache) Clear(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, userID)
}

// prune drops expired turns. Caller holds the lock.
func (c *DialogCache) prune(userID int64) []turn {
	turns := c.m[userID]
	if c.ttl <= 0 || len(turns) == 0 {
		return turns
	}
	cutoff := c.now().Add(-c.ttl)
	keep := turns[:0]
	for _, t := range turns {
		if t.at.After(cutoff) {
			keep = append(keep, t)
		}
	}
	if len(keep) == 0 {
		delete(c.m, userID)
		return nil
	}
	c.m[userID] = keep
	return keep
}
