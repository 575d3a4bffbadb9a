package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *ConfigStore {
	t.Helper()
	s, err := NewConfigStore(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	return s
}

func TestMissingFileStartsEmpty(t *testing.T) {
	s := testStore(t)

	_, ok := s.Get("triage.row_limit")
	assert.False(t, ok)
	assert.Equal(t, 0, s.GetInt("triage.row_limit"))
	assert.Equal(t, "", s.GetString("catalog.rules_file"))
	assert.Nil(t, s.GetStringSlice("classifier.denylist"))
}

func TestSetGetRoundTrip(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Set("triage.row_limit", 25))
	require.NoError(t, s.Set("triage.workers", 4))
	require.NoError(t, s.Set("catalog.rules_file", "/etc/imgtriage/rules.yaml"))
	require.NoError(t, s.Set("triage.verbose", true))

	assert.Equal(t, 25, s.GetInt("triage.row_limit"))
	assert.Equal(t, 4, s.GetInt("triage.workers"))
	assert.Equal(t, "/etc/imgtriage/rules.yaml", s.GetString("catalog.rules_file"))
	assert.True(t, s.GetBool("triage.verbose"))
}

func TestPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	first, err := NewConfigStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("triage.min_rows", 100))
	require.NoError(t, first.Set("classifier.denylist", []string{"noreply", "bounce"}))

	second, err := NewConfigStore(path)
	require.NoError(t, err)
	assert.Equal(t, 100, second.GetInt("triage.min_rows"))
	assert.Equal(t, []string{"noreply", "bounce"}, second.GetStringSlice("classifier.denylist"))
}

func TestLoadParsesTOMLTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[triage]
row_limit = 20
workers = 2

[classifier]
script_lo = 43_032
denylist = ["noreply", "support"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := NewConfigStore(path)
	require.NoError(t, err)
	assert.Equal(t, 20, s.GetInt("triage.row_limit"))
	assert.Equal(t, 2, s.GetInt("triage.workers"))
	assert.Equal(t, 43032, s.GetInt("classifier.script_lo"))
	assert.Equal(t, []string{"noreply", "support"}, s.GetStringSlice("classifier.denylist"))
}

func TestMistypedValues(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Set("triage.row_limit", "ten"))

	assert.Equal(t, 0, s.GetInt("triage.row_limit"))
	assert.False(t, s.GetBool("triage.row_limit"))
	assert.Nil(t, s.GetStringSlice("triage.row_limit"))
}

func TestSavePermissions(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Set("triage.workers", 1))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCorruptFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [ valid toml"), 0o600))

	_, err := NewConfigStore(path)
	assert.Error(t, err)
}
