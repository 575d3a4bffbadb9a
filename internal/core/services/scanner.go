package services

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
	"github.com/halcyon-forensics/imgtriage/internal/core/ports/driven"
	"github.com/halcyon-forensics/imgtriage/internal/logger"
)

// Scanner discovers candidate database files under the image's per-app
// data root. Because any single listing strategy can silently return
// nothing (permission quirks, partial corruption, depth limits), it runs
// three independent strategies and merges results:
//
//  1. direct per-app-directory listing to enumerate app folders
//  2. targeted probe of each catalog-matched app's databases/ subdirectory
//  3. a broad recursive find as a catch-all for everything else
//
// Later strategies skip apps already resolved by an earlier one; the
// merged list is deduplicated on absolute path.
type Scanner struct {
	runner      driven.PrivilegedRunner
	catalog     *domain.Catalog
	listTimeout time.Duration
}

// NewScanner creates a scanner using the given runner and catalog.
// listTimeout bounds every external listing call; zero means 30s.
func NewScanner(runner driven.PrivilegedRunner, catalog *domain.Catalog, listTimeout time.Duration) *Scanner {
	if listTimeout <= 0 {
		listTimeout = 30 * time.Second
	}
	return &Scanner{runner: runner, catalog: catalog, listTimeout: listTimeout}
}

// Scan returns the deduplicated candidate list sorted by priority
// ascending, then size descending. An absent root is the single
// scan-terminating condition and yields an empty list with a nil error.
func (s *Scanner) Scan(ctx context.Context, root string) ([]domain.DatabaseCandidate, error) {
	res, err := s.runner.Run(ctx, []string{"test", "-d", root}, s.listTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: checking data root: %w", domain.ErrDiscovery, err)
	}
	if !res.Ok() {
		logger.Warn("data root %s does not exist, nothing to scan", root)
		return nil, nil
	}

	logger.Section("database discovery")

	// Strategy 1: enumerate app folders.
	folders := s.listAppFolders(ctx, root)
	logger.Info("found %d app folders under %s", len(folders), root)

	var candidates []domain.DatabaseCandidate
	seen := make(map[string]bool)     // absolute path dedup
	resolved := make(map[string]bool) // apps resolved by an earlier strategy

	// Strategy 2: probe databases/ for every catalog-matched app folder.
	for _, app := range folders {
		category, priority, ok := s.catalog.Match(app)
		if !ok {
			continue
		}
		found := s.probeDatabasesDir(ctx, root, app, category, priority)
		for _, cand := range found {
			if seen[cand.Path] {
				continue
			}
			seen[cand.Path] = true
			candidates = append(candidates, cand)
		}
		if len(found) > 0 {
			resolved[app] = true
		}
	}

	// Strategy 3: recursive catch-all for apps the probes did not resolve.
	for _, p := range s.findDatabases(ctx, root) {
		rel := strings.TrimPrefix(p, root+"/")
		app := rel
		if i := strings.IndexByte(rel, '/'); i >= 0 {
			app = rel[:i]
		}
		if resolved[app] || seen[p] {
			continue
		}
		seen[p] = true
		category, priority, _ := s.catalog.Match(app)
		candidates = append(candidates, domain.DatabaseCandidate{
			Path:      p,
			AppID:     app,
			Name:      path.Base(p),
			SizeBytes: s.statSize(ctx, p),
			Category:  category,
			Priority:  priority,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		return candidates[i].SizeBytes > candidates[j].SizeBytes
	})

	logger.Info("discovery merged %d candidate databases", len(candidates))
	return candidates, nil
}

// listAppFolders runs strategy 1. Errors and timeouts contribute an
// empty result, never a failure.
func (s *Scanner) listAppFolders(ctx context.Context, root string) []string {
	res, err := s.runner.Run(ctx, []string{"ls", "-la", root}, s.listTimeout)
	if err != nil || !res.Ok() {
		logger.Warn("app folder listing failed: %v (stderr: %s)", err, strings.TrimSpace(res.Stderr))
		return nil
	}

	var folders []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		parts := strings.Fields(line)
		if len(parts) < 9 || !strings.HasPrefix(parts[0], "d") {
			continue
		}
		name := parts[len(parts)-1]
		// Package names are dotted; this also drops "." and "..".
		if strings.Contains(name, ".") && name != "." && name != ".." {
			folders = append(folders, name)
		}
	}
	return folders
}

// probeDatabasesDir runs strategy 2 for one app.
func (s *Scanner) probeDatabasesDir(ctx context.Context, root, app, category string, priority int) []domain.DatabaseCandidate {
	dir := path.Join(root, app, "databases")
	res, err := s.runner.Run(ctx, []string{"ls", "-la", dir}, s.listTimeout)
	if err != nil || !res.Ok() {
		logger.Debug("no databases dir for %s", app)
		return nil
	}

	var found []domain.DatabaseCandidate
	for _, line := range strings.Split(res.Stdout, "\n") {
		parts := strings.Fields(line)
		if len(parts) < 9 || strings.HasPrefix(parts[0], "d") {
			continue
		}
		name := parts[len(parts)-1]
		if !strings.HasSuffix(name, ".db") {
			continue
		}
		p := path.Join(dir, name)
		found = append(found, domain.DatabaseCandidate{
			Path:      p,
			AppID:     app,
			Name:      name,
			SizeBytes: s.statSize(ctx, p),
			Category:  category,
			Priority:  priority,
		})
	}
	logger.Debug("probe %s: %d databases", app, len(found))
	return found
}

// findDatabases runs strategy 3, the broad recursive search.
func (s *Scanner) findDatabases(ctx context.Context, root string) []string {
	res, err := s.runner.Run(ctx,
		[]string{"find", root, "-maxdepth", "4", "-type", "f", "-name", "*.db"},
		s.listTimeout)
	if err != nil || !res.Ok() {
		logger.Warn("recursive database search failed: %v (stderr: %s)", err, strings.TrimSpace(res.Stderr))
		return nil
	}

	var paths []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

// statSize fetches a file size through the runner. Failures report zero;
// a candidate with unknown size still gets analysed.
func (s *Scanner) statSize(ctx context.Context, p string) int64 {
	res, err := s.runner.Run(ctx, []string{"stat", "-c", "%s", p}, s.listTimeout)
	if err != nil || !res.Ok() {
		return 0
	}
	size, err := strconv.ParseInt(strings.TrimSpace(res.Stdout), 10, 64)
	if err != nil {
		return 0
	}
	return size
}
