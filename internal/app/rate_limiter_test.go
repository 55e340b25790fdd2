package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Sliding_Window(t *testing.T) {
	req := require.New(t)
	rl := NewRateLimiter(2, time.Second)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	req.True(rl.Allow("alice"))
	req.True(rl.Allow("alice"))
	req.False(rl.Allow("alice"))
	// other sessions have their own window
	req.True(rl.Allow("bob"))

	now = now.Add(1001 * time.Millisecond)
	req.True(rl.Allow("alice"))
}

func TestRateLimiter_Forget(t *testing.T) {
	req := require.New(t)
	rl := NewRateLimiter(1, time.Minute)

	req.True(rl.Allow("alice"))
	req.False(rl.Allow("alice"))
	rl.Forget("alice")
	req.True(rl.Allow("alice"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	req := require.New(t)
	rl := NewRateLimiter(0, time.Second)

	req.Nil(rl)
	for range 100 {
		req.True(rl.Allow("alice"))
	}
	rl.Forget("alice")
}

func TestPolicyFromName(t *testing.T) {
	req := require.New(t)

	req.Equal(KickMember, PolicyFromName("kick").OnBackPressure("x"))
	req.Equal(NoAction, PolicyFromName("drop").OnBackPressure("x"))
}
