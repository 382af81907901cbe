package ratelimiter

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 3})
	defer rl.Close()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("client-a"), "request %d should pass", i)
	}
	assert.False(t, rl.Allow("client-a"))
}

func TestAllow_IndependentSources(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 1})
	defer rl.Close()

	require.True(t, rl.Allow("client-a"))
	require.False(t, rl.Allow("client-a"))
	assert.True(t, rl.Allow("client-b"))
}

func TestRemaining(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 5})
	defer rl.Close()

	assert.Equal(t, 5, rl.Remaining("client-a"))
	rl.Allow("client-a")
	rl.Allow("client-a")
	assert.Equal(t, 3, rl.Remaining("client-a"))
}

func TestGetSourceKey(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, SourceHeaderKey: "X-Forwarded-For"})
	defer rl.Close()

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", rl.GetSourceKey(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", rl.GetSourceKey(r))
}

func TestDefaults(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 4})
	defer rl.Close()

	assert.Equal(t, 4, rl.GetMaxBurst())
}
