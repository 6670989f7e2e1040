package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/Meet/internal/domain"
)

func TestJoinRateLimiter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl := NewJoinRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("alice"))
	assert.True(t, rl.Allow("alice"))
	assert.False(t, rl.Allow("alice"), "third join inside the window")
	assert.True(t, rl.Allow("bob"), "users are limited independently")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("alice"), "window slid past the old attempts")

	now = now.Add(2 * time.Minute)
	rl.Prune()
	assert.Empty(t, rl.history)
}

func TestJoinRateLimiterDisabled(t *testing.T) {
	rl := NewJoinRateLimiter(0, time.Minute)
	for range 100 {
		assert.True(t, rl.Allow(domain.UserID("u")))
	}
}
