package rate_limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestRateLimiter(t *testing.T) {
	defer goleak.VerifyNone(t)

	current := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()
	rl.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.IsAllowed("10.0.0.1"))
	}
	assert.False(t, rl.IsAllowed("10.0.0.1"))
	assert.Equal(t, 0, rl.GetRemainingRequests("10.0.0.1"))
	assert.True(t, rl.IsAllowed("10.0.0.2"), "keys are independent")
	assert.Equal(t, 2, rl.GetRemainingRequests("10.0.0.2"))

	current = current.Add(61 * time.Second)
	assert.Equal(t, 3, rl.GetRemainingRequests("10.0.0.1"))
	assert.True(t, rl.IsAllowed("10.0.0.1"))
}

func TestStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}
