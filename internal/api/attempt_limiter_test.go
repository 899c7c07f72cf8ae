package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttemptLimiterWindowAndReset(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(1, time.Hour)
	key := "127.0.0.1|someone@example.com"
	now := time.Now().UTC()

	limiter.fail(key, now.Add(-2*time.Hour))
	assert.False(t, limiter.blocked(key, now), "old attempt must be pruned from the window")

	limiter.fail(key, now.Add(-30*time.Minute))
	assert.True(t, limiter.blocked(key, now), "one recent attempt hits limit 1")

	limiter.reset(key)
	assert.False(t, limiter.blocked(key, now), "reset clears attempts")
}

func TestAttemptLimiterKeysAreIndependent(t *testing.T) {
	t.Parallel()

	limiter := newAttemptLimiter(2, time.Minute)
	now := time.Now().UTC()

	limiter.fail("a", now)
	limiter.fail("a", now)
	assert.True(t, limiter.blocked("a", now))
	assert.False(t, limiter.blocked("b", now))
	assert.False(t, limiter.blocked("a", now.Add(2*time.Minute)), "key recovers after the window")
}
