package ratelimiter

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, rate, burst int) (Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	limiter := New(Options{
		MaxRatePerSecond: rate,
		MaxBurst:         burst,
		CacheTTL:         time.Hour,
		Now:              clock.Now,
	})
	t.Cleanup(func() { _ = limiter.Close() })
	return limiter, clock
}

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	req := require.New(t)

	// Given
	limiter, _ := newTestLimiter(t, 1, 3)

	// When / Then
	req.True(limiter.Allow("a"))
	req.True(limiter.Allow("a"))
	req.True(limiter.Allow("a"))
	req.False(limiter.Allow("a"))
	req.Equal(0, limiter.Remaining("a"))

	// Other keys have their own bucket
	req.True(limiter.Allow("b"))
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	req := require.New(t)

	// Given an exhausted bucket refilling at 10 tokens per second
	limiter, clock := newTestLimiter(t, 10, 2)
	req.True(limiter.Allow("a"))
	req.True(limiter.Allow("a"))
	req.False(limiter.Allow("a"))

	// When 150ms pass
	clock.Advance(150 * time.Millisecond)

	// Then one whole token is available
	req.True(limiter.Allow("a"))
	req.False(limiter.Allow("a"))
}

func TestRateLimiter_CarriesFractionalRefill(t *testing.T) {
	req := require.New(t)

	// Given an exhausted bucket refilling at 10 tokens per second
	limiter, clock := newTestLimiter(t, 10, 1)
	req.True(limiter.Allow("a"))

	// When polled every 40ms, each poll earns less than one token
	clock.Advance(40 * time.Millisecond)
	req.False(limiter.Allow("a"))
	clock.Advance(40 * time.Millisecond)
	req.False(limiter.Allow("a"))
	clock.Advance(40 * time.Millisecond)

	// Then the partial progress adds up to a token
	req.True(limiter.Allow("a"))
}

func TestRateLimiter_NeverExceedsBurst(t *testing.T) {
	req := require.New(t)

	limiter, clock := newTestLimiter(t, 100, 5)
	clock.Advance(time.Hour)

	req.Equal(5, limiter.Remaining("a"))
	req.Equal(5, limiter.GetMaxBurst())
}

func TestRateLimiter_GetSourceKey(t *testing.T) {
	req := require.New(t)

	limiter := New(Options{MaxRatePerSecond: 1, SourceHeaderKey: "X-Forwarded-For"})
	t.Cleanup(func() { _ = limiter.Close() })

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	req.Equal("10.0.0.1:1234", limiter.GetSourceKey(r))

	r.Header.Set("X-Forwarded-For", "192.168.1.1")
	req.Equal("192.168.1.1", limiter.GetSourceKey(r))
}

func TestInMemory_Expiration(t *testing.T) {
	req := require.New(t)

	store := NewInMemoryWithSweep(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	req.NoError(store.SetWithExpiration("k", 7, time.Hour))
	v, err := store.Get("k")
	req.NoError(err)
	req.Equal(int64(7), v)

	req.NoError(store.SetWithExpiration("gone", 1, time.Nanosecond))
	time.Sleep(time.Millisecond)
	_, err = store.Get("gone")
	req.ErrorIs(err, ErrCacheMiss)

	store.removeExpired()
	req.Equal(1, store.Len())
}
