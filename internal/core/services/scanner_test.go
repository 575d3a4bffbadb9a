package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
	"github.com/halcyon-forensics/imgtriage/internal/core/ports/driven"
)

// mockRunner resolves argv (joined with spaces) against canned responses.
// Unknown commands fail with exit 1, matching a missing file or directory.
type mockRunner struct {
	responses map[string]driven.RunResult
	errs      map[string]error
	calls     []string
}

func (m *mockRunner) Run(_ context.Context, argv []string, _ time.Duration) (driven.RunResult, error) {
	key := strings.Join(argv, " ")
	m.calls = append(m.calls, key)
	if err, ok := m.errs[key]; ok {
		return driven.RunResult{ExitCode: -1}, err
	}
	if res, ok := m.responses[key]; ok {
		return res, nil
	}
	return driven.RunResult{ExitCode: 1, Stderr: "No such file or directory"}, nil
}

func ok(stdout string) driven.RunResult {
	return driven.RunResult{ExitCode: 0, Stdout: stdout}
}

const testRoot = "/mnt/image/data/data"

func discoveryRunner() *mockRunner {
	rootListing := `total 24
drwx------  4 u0_a101 u0_a101 4096 Jan  1 00:00 com.whatsapp
drwx------  4 u0_a102 u0_a102 4096 Jan  1 00:00 com.kakao.talk
drwx------  2 u0_a103 u0_a103 4096 Jan  1 00:00 org.example.obscure
drwx------  2 u0_a104 u0_a104 4096 Jan  1 00:00 nodots
-rw-------  1 u0_a104 u0_a104  123 Jan  1 00:00 some.file`

	whatsappListing := `total 6160
-rw-rw----  1 u0_a101 u0_a101 5242880 Jan  1 00:00 msgstore.db
-rw-rw----  1 u0_a101 u0_a101 1048576 Jan  1 00:00 wa.db
-rw-rw----  1 u0_a101 u0_a101   32768 Jan  1 00:00 msgstore.db-journal`

	findListing := testRoot + `/com.whatsapp/databases/msgstore.db
` + testRoot + `/com.kakao.talk/databases/talk.db
` + testRoot + `/org.example.obscure/files/cache.db`

	return &mockRunner{
		responses: map[string]driven.RunResult{
			"test -d " + testRoot:                                            ok(""),
			"ls -la " + testRoot:                                             ok(rootListing),
			"ls -la " + testRoot + "/com.whatsapp/databases":                 ok(whatsappListing),
			"find " + testRoot + " -maxdepth 4 -type f -name *.db":           ok(findListing),
			"stat -c %s " + testRoot + "/com.whatsapp/databases/msgstore.db": ok("5242880\n"),
			"stat -c %s " + testRoot + "/com.whatsapp/databases/wa.db":       ok("1048576\n"),
			"stat -c %s " + testRoot + "/com.kakao.talk/databases/talk.db":   ok("8388608\n"),
			"stat -c %s " + testRoot + "/org.example.obscure/files/cache.db": ok("4096\n"),
		},
	}
}

func TestScanMergesStrategies(t *testing.T) {
	runner := discoveryRunner()
	scanner := NewScanner(runner, domain.DefaultCatalog(), time.Second)

	candidates, err := scanner.Scan(context.Background(), testRoot)
	require.NoError(t, err)
	require.Len(t, candidates, 4)

	// Priority ascending, size descending within a priority band. The
	// duplicate msgstore.db path from the recursive find is dropped.
	assert.Equal(t, testRoot+"/com.kakao.talk/databases/talk.db", candidates[0].Path)
	assert.Equal(t, testRoot+"/com.whatsapp/databases/msgstore.db", candidates[1].Path)
	assert.Equal(t, testRoot+"/com.whatsapp/databases/wa.db", candidates[2].Path)
	assert.Equal(t, testRoot+"/org.example.obscure/files/cache.db", candidates[3].Path)
}

func TestScanCandidateMetadata(t *testing.T) {
	runner := discoveryRunner()
	scanner := NewScanner(runner, domain.DefaultCatalog(), time.Second)

	candidates, err := scanner.Scan(context.Background(), testRoot)
	require.NoError(t, err)
	require.Len(t, candidates, 4)

	talk := candidates[0]
	assert.Equal(t, "com.kakao.talk", talk.AppID)
	assert.Equal(t, "talk.db", talk.Name)
	assert.Equal(t, "messaging", talk.Category)
	assert.Equal(t, domain.PriorityCritical, talk.Priority)
	assert.Equal(t, int64(8388608), talk.SizeBytes)

	// The uncatalogued app still surfaces, at the lowest rank.
	obscure := candidates[3]
	assert.Equal(t, "org.example.obscure", obscure.AppID)
	assert.Equal(t, "uncategorised", obscure.Category)
	assert.Equal(t, domain.PriorityUnknown, obscure.Priority)
}

func TestScanSkipsJournalsAndNonDatabases(t *testing.T) {
	runner := discoveryRunner()
	scanner := NewScanner(runner, domain.DefaultCatalog(), time.Second)

	candidates, err := scanner.Scan(context.Background(), testRoot)
	require.NoError(t, err)

	for _, c := range candidates {
		assert.True(t, strings.HasSuffix(c.Path, ".db"), c.Path)
	}
}

func TestScanMissingRoot(t *testing.T) {
	runner := &mockRunner{}
	scanner := NewScanner(runner, domain.DefaultCatalog(), time.Second)

	candidates, err := scanner.Scan(context.Background(), "/does/not/exist")
	assert.NoError(t, err)
	assert.Empty(t, candidates)
	// Only the root check ran; no strategy was attempted.
	assert.Equal(t, []string{"test -d /does/not/exist"}, runner.calls)
}

func TestScanRootCheckError(t *testing.T) {
	boom := errors.New("sudo: a password is required")
	runner := &mockRunner{errs: map[string]error{"test -d " + testRoot: boom}}
	scanner := NewScanner(runner, domain.DefaultCatalog(), time.Second)

	_, err := scanner.Scan(context.Background(), testRoot)
	assert.ErrorIs(t, err, domain.ErrDiscovery)
	assert.ErrorIs(t, err, boom)
}

func TestScanSurvivesStrategyFailures(t *testing.T) {
	// Folder listing and probes all fail; the recursive find still
	// produces candidates on its own.
	runner := &mockRunner{
		responses: map[string]driven.RunResult{
			"test -d " + testRoot: ok(""),
			"find " + testRoot + " -maxdepth 4 -type f -name *.db": ok(
				testRoot + "/com.whatsapp/databases/msgstore.db\n"),
			"stat -c %s " + testRoot + "/com.whatsapp/databases/msgstore.db": ok("1024"),
		},
	}
	scanner := NewScanner(runner, domain.DefaultCatalog(), time.Second)

	candidates, err := scanner.Scan(context.Background(), testRoot)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "com.whatsapp", candidates[0].AppID)
}

func TestScanStatFailureKeepsCandidate(t *testing.T) {
	runner := discoveryRunner()
	delete(runner.responses, "stat -c %s "+testRoot+"/com.kakao.talk/databases/talk.db")
	scanner := NewScanner(runner, domain.DefaultCatalog(), time.Second)

	candidates, err := scanner.Scan(context.Background(), testRoot)
	require.NoError(t, err)

	var talk *domain.DatabaseCandidate
	for i := range candidates {
		if candidates[i].Name == "talk.db" {
			talk = &candidates[i]
		}
	}
	require.NotNil(t, talk)
	assert.Equal(t, int64(0), talk.SizeBytes)
}
