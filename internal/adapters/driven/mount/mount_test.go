package mount

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
	"github.com/halcyon-forensics/imgtriage/internal/core/ports/driven"
)

// scriptedRunner replies to each command key with a queue of results.
type scriptedRunner struct {
	replies map[string][]driven.RunResult
	calls   []string
}

func (m *scriptedRunner) Run(_ context.Context, argv []string, _ time.Duration) (driven.RunResult, error) {
	key := strings.Join(argv, " ")
	m.calls = append(m.calls, key)
	queue := m.replies[key]
	if len(queue) == 0 {
		return driven.RunResult{ExitCode: 1, Stderr: "unexpected command"}, nil
	}
	m.replies[key] = queue[1:]
	return queue[0], nil
}

func testImage(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	image := filepath.Join(dir, "userdata.img")
	require.NoError(t, os.WriteFile(image, []byte("img"), 0o600))
	return image, filepath.Join(dir, "mnt")
}

func TestMountFirstOptionSet(t *testing.T) {
	image, point := testImage(t)
	runner := &scriptedRunner{replies: map[string][]driven.RunResult{
		"umount " + point: {{ExitCode: 1, Stderr: "umount: " + point + ": not mounted"}},
		"mount -o loop,ro,noload " + image + " " + point: {{ExitCode: 0}},
	}}

	err := New(runner, time.Second).Mount(context.Background(), image, point)
	require.NoError(t, err)

	// Stale-mount cleanup runs first, then the first option set sticks.
	assert.Equal(t, []string{
		"umount " + point,
		"mount -o loop,ro,noload " + image + " " + point,
	}, runner.calls)
}

func TestMountFallsThroughOptionSets(t *testing.T) {
	image, point := testImage(t)
	runner := &scriptedRunner{replies: map[string][]driven.RunResult{
		"umount " + point: {{ExitCode: 1, Stderr: "not mounted"}},
		"mount -o loop,ro,noload " + image + " " + point: {{ExitCode: 32, Stderr: "wrong fs type"}},
		"mount -o loop,ro " + image + " " + point:        {{ExitCode: 32, Stderr: "wrong fs type"}},
		"mount -o ro,noload " + image + " " + point:      {{ExitCode: 0}},
	}}

	err := New(runner, time.Second).Mount(context.Background(), image, point)
	require.NoError(t, err)
	assert.Len(t, runner.calls, 4)
}

func TestMountAllOptionsExhausted(t *testing.T) {
	image, point := testImage(t)
	runner := &scriptedRunner{replies: map[string][]driven.RunResult{
		"umount " + point: {{ExitCode: 1, Stderr: "not mounted"}},
	}}

	err := New(runner, time.Second).Mount(context.Background(), image, point)
	assert.ErrorIs(t, err, domain.ErrMountFailed)
}

func TestMountMissingImage(t *testing.T) {
	runner := &scriptedRunner{replies: map[string][]driven.RunResult{}}

	err := New(runner, time.Second).Mount(context.Background(), "/no/such.img", t.TempDir())
	assert.ErrorIs(t, err, domain.ErrMountFailed)
	assert.Empty(t, runner.calls)
}

func TestUnmountIdempotent(t *testing.T) {
	point := "/mnt/imgtriage"
	runner := &scriptedRunner{replies: map[string][]driven.RunResult{
		"umount " + point: {
			{ExitCode: 0},
			{ExitCode: 1, Stderr: "umount: " + point + ": not mounted."},
		},
	}}
	m := New(runner, time.Second)

	assert.NoError(t, m.Unmount(context.Background(), point))
	assert.NoError(t, m.Unmount(context.Background(), point))
}
