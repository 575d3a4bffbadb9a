package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdout(t *testing.T) {
	r := New(Config{})

	res, err := r.Run(context.Background(), []string{"echo", "hello"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Ok())
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestRunNonZeroExitIsNotError(t *testing.T) {
	r := New(Config{})

	res, err := r.Run(context.Background(), []string{"sh", "-c", "echo oops >&2; exit 3"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.Ok())
	assert.Equal(t, "oops\n", res.Stderr)
}

func TestRunMissingBinary(t *testing.T) {
	r := New(Config{})

	res, err := r.Run(context.Background(), []string{"imgtriage-no-such-binary"}, time.Second)
	assert.Error(t, err)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRunEmptyArgv(t *testing.T) {
	r := New(Config{})

	_, err := r.Run(context.Background(), nil, time.Second)
	assert.Error(t, err)
}

func TestRunTimeout(t *testing.T) {
	r := New(Config{})

	start := time.Now()
	_, err := r.Run(context.Background(), []string{"sleep", "10"}, 100*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunCancelledContext(t *testing.T) {
	r := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, []string{"echo", "hi"}, time.Second)
	assert.Error(t, err)
}

func TestRunThrottleAllowsBurst(t *testing.T) {
	r := New(Config{CommandsPerSecond: 1000, BurstSize: 50})

	start := time.Now()
	for i := 0; i < 10; i++ {
		res, err := r.Run(context.Background(), []string{"true"}, time.Second)
		require.NoError(t, err)
		assert.True(t, res.Ok())
	}
	assert.Less(t, time.Since(start), 5*time.Second)
}
