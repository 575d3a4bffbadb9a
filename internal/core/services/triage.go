package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
	"github.com/halcyon-forensics/imgtriage/internal/core/ports/driven"
	"github.com/halcyon-forensics/imgtriage/internal/core/ports/driving"
	"github.com/halcyon-forensics/imgtriage/internal/logger"
)

// SentinelCopyError is the table name of the whole-database sentinel
// emitted when sandbox staging fails.
const SentinelCopyError = "COPY_ERROR"

// Ensure TriageOrchestrator implements the interface.
var _ driving.TriageOrchestrator = (*TriageOrchestrator)(nil)

// TriageOptions tunes the pipeline. Zero values select the defaults the
// reference behaviour uses.
type TriageOptions struct {
	// RowLimit bounds the sample rows fetched per table. Default 10.
	RowLimit int

	// Workers is the number of concurrent per-database analyses.
	// Default 1, the reference sequential behaviour.
	Workers int
}

// TriageOrchestrator coordinates the discovery → introspection →
// classification → scoring pipeline. Per-database analyses share no
// mutable state beyond the read-only catalog; results are collected
// append-only under a lock and ranked once all workers finish.
type TriageOrchestrator struct {
	catalog      *domain.Catalog
	scanner      *Scanner
	classifier   *Classifier
	scorer       *Scorer
	sandbox      driven.Sandbox
	introspector driven.Introspector
	opts         TriageOptions

	mu     sync.RWMutex
	status driving.TriageStatus
}

// NewTriageOrchestrator creates the pipeline orchestrator.
func NewTriageOrchestrator(
	catalog *domain.Catalog,
	scanner *Scanner,
	classifier *Classifier,
	scorer *Scorer,
	sandbox driven.Sandbox,
	introspector driven.Introspector,
	opts TriageOptions,
) *TriageOrchestrator {
	if opts.RowLimit <= 0 {
		opts.RowLimit = 10
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &TriageOrchestrator{
		catalog:      catalog,
		scanner:      scanner,
		classifier:   classifier,
		scorer:       scorer,
		sandbox:      sandbox,
		introspector: introspector,
		opts:         opts,
	}
}

// dbAnalysis is one candidate's outcome, indexed by discovery order so
// concurrent workers cannot perturb the final ordering.
type dbAnalysis struct {
	relPath  string
	samples  []domain.TableSample
	evidence *domain.EvidenceItem
	failed   bool
}

// Run executes the full pipeline. Partial success is the designed common
// case: per-database failures are folded in as sentinel samples and the
// run carries on. Only cancellation aborts the run, and cleanup still
// happens on that path.
func (o *TriageOrchestrator) Run(ctx context.Context, root string) (*domain.TriageResult, error) {
	defer func() {
		if err := o.sandbox.Close(); err != nil {
			logger.Warn("sandbox cleanup: %v", err)
		}
	}()

	o.setStatus(func(s *driving.TriageStatus) { *s = driving.TriageStatus{Running: true} })
	defer o.setStatus(func(s *driving.TriageStatus) { s.Running = false })

	candidates, err := o.scanner.Scan(ctx, root)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrAborted, ctx.Err())
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	o.setStatus(func(s *driving.TriageStatus) { s.CandidatesFound = len(candidates) })

	result := &domain.TriageResult{
		Root:      root,
		Databases: make(map[string][]domain.TableSample, len(candidates)),
	}
	if len(candidates) == 0 {
		return result, nil
	}

	analyses := make([]dbAnalysis, len(candidates))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				analyses[i] = o.analyzeOne(ctx, root, candidates[i])
				o.setStatus(func(s *driving.TriageStatus) {
					s.DatabasesProcessed++
					if analyses[i].failed {
						s.FailureCount++
					}
				})
			}
		}()
	}

	// Stop issuing new work on cancellation; in-flight analyses drain to
	// their next checkpoint inside analyzeOne.
	aborted := false
dispatch:
	for i := range candidates {
		select {
		case <-ctx.Done():
			aborted = true
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if aborted {
		return nil, fmt.Errorf("%w: %w", domain.ErrAborted, ctx.Err())
	}

	var evidence []domain.EvidenceItem
	for _, a := range analyses {
		if a.relPath == "" {
			continue
		}
		result.Databases[a.relPath] = a.samples
		result.DatabaseOrder = append(result.DatabaseOrder, a.relPath)
		if a.evidence != nil {
			evidence = append(evidence, *a.evidence)
			if result.Principal == "" && a.evidence.Principal != "" {
				result.Principal = a.evidence.Principal
			}
		}
	}

	o.scorer.Rank(evidence)
	result.Evidence = evidence

	logger.Info("triage complete: %d databases, %d evidence items", len(result.DatabaseOrder), len(evidence))
	return result, nil
}

// Status returns a snapshot of pipeline progress.
func (o *TriageOrchestrator) Status() driving.TriageStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// analyzeOne runs the sandbox → introspect → classify → score pipeline
// for a single candidate. Never returns an error: failures become
// sentinel samples so one database cannot invalidate its siblings.
func (o *TriageOrchestrator) analyzeOne(ctx context.Context, root string, cand domain.DatabaseCandidate) dbAnalysis {
	relPath := strings.TrimPrefix(cand.Path, root+"/")
	logger.Debug("analysing %s", relPath)

	staged, err := o.sandbox.Stage(ctx, cand)
	if err != nil {
		logger.Warn("staging %s: %v", relPath, err)
		samples := []domain.TableSample{{
			Table:    SentinelCopyError,
			RowCount: 0,
			Err:      fmt.Sprintf("staging failed: %v", err),
		}}
		return dbAnalysis{relPath: relPath, samples: samples, failed: true}
	}
	defer staged.Release()

	patterns := o.catalog.ImportantPatterns(cand.AppID)
	samples, err := o.introspector.Introspect(ctx, staged.Path, patterns, o.opts.RowLimit)
	if err != nil {
		// The introspector already returned a whole-database sentinel.
		logger.Warn("open %s: %v", relPath, err)
		return dbAnalysis{relPath: relPath, samples: samples, failed: true}
	}

	for i := range samples {
		samples[i].Important = o.catalog.IsImportantTable(cand.AppID, samples[i].Table)
		if samples[i].Failed() {
			continue
		}
		samples[i].Classification = o.classifier.ClassifyRows(samples[i].Rows)
	}

	return dbAnalysis{
		relPath:  relPath,
		samples:  samples,
		evidence: o.scorer.Score(cand, relPath, samples),
	}
}

func (o *TriageOrchestrator) setStatus(mutate func(*driving.TriageStatus)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	mutate(&o.status)
}
