package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNoopEmitterIsSafe(t *testing.T) {
	e := NewNoop()
	require.NotNil(t, e)

	e.Count("api.create_user")
	e.Timing("api.create_user", 5*time.Millisecond)
	Since(e, "db.find_user", time.Now())
}

func TestNewStatsdFallsBackOnBadAddress(t *testing.T) {
	// port out of range, client construction fails
	e := NewStatsd("localhost:99999", "webapp")
	require.NotNil(t, e)

	e.Count("api.healthz")
	e.Timing("api.healthz", time.Millisecond)
}

func TestNewStatsdEmitsWithoutAgent(t *testing.T) {
	// UDP writes to a dead port must not error or block
	e := NewStatsd("localhost:8125", "webapp")
	require.NotNil(t, e)

	e.Count("api.healthz")
	e.Timing("api.healthz", time.Millisecond)
}
