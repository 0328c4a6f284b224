package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_cache_capacity_bound(t *testing.T) {
	c := NewDialogCache(3, 0)

	c.Append(1, "user", "раз")
	c.Append(1, "user", "два")
	c.Append(1, "bot", "три")
	c.Append(1, "user", "четыре")

	h := c.History(1)
	assert.Equal(t, []string{"user: два", "bot: три", "user: четыре"}, h)
	assert.Equal(t, 3, c.Len(1))
}

func Test_cache_ttl_expiry(t *testing.T) {
	c := NewDialogCache(10, time.Hour)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Append(7, "user", "старое")
	now = now.Add(2 * time.Hour)
	c.Append(7, "user", "свежее")

	assert.Equal(t, []string{"user: свежее"}, c.History(7))
}

func Test_cache_isolated_users(t *testing.T) {
	c := NewDialogCache(5, 0)
	c.Append(1, "user", "a")
	c.Append(2, "user", "b")

	assert.Equal(t, 1, c.Len(1))
	assert.Equal(t, 1, c.Len(2))

	c.Clear(1)
	assert.Equal(t, 0, c.Len(1))
	assert.Equal(t, 1, c.Len(2))
}
