package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(bytes.NewBuffer(nil))
	})
	return &buf
}

func TestQuietByDefault(t *testing.T) {
	buf := reset(t)
	SetVerbose(false)

	Debug("hidden %d", 1)
	Info("hidden")
	Warn("hidden")
	Section("hidden")

	assert.Empty(t, buf.String())
}

func TestVerboseOutput(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Debug("staged %s", "msgstore.db")
	Info("found %d candidates", 3)
	Warn("probe failed")
	Section("database discovery")

	out := buf.String()
	assert.Contains(t, out, "staged msgstore.db")
	assert.Contains(t, out, "found 3 candidates")
	assert.Contains(t, out, "probe failed")
	assert.Contains(t, out, "=== database discovery ===")
}

func TestIsVerbose(t *testing.T) {
	reset(t)

	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}
