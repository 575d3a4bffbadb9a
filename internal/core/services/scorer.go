package services

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
)

// DefaultMinRows is the aggregate-row threshold for including a
// high-priority database with no content signal.
const DefaultMinRows = 50

// defaultDenylist filters generic sender addresses out of principal
// identity selection.
var defaultDenylist = []string{"noreply", "no-reply", "support"}

// Scorer combines app priority, table-name importance and content
// classification into inclusion decisions and the final evidence ranking.
type Scorer struct {
	minRows  int64
	denylist []string
}

// NewScorer creates a scorer. minRows <= 0 selects DefaultMinRows;
// a nil denylist selects the built-in generic-address list.
func NewScorer(minRows int64, denylist []string) *Scorer {
	if minRows <= 0 {
		minRows = DefaultMinRows
	}
	if denylist == nil {
		denylist = defaultDenylist
	}
	return &Scorer{minRows: minRows, denylist: denylist}
}

// Score folds one database's table samples into zero or one evidence item.
//
// A database is included iff at least one table carries a content signal,
// or the owning app's priority is <= PriorityImportant and the aggregate
// row count reaches the configured minimum. Databases meeting neither
// condition return nil and are dropped silently.
func (s *Scorer) Score(cand domain.DatabaseCandidate, relPath string, samples []domain.TableSample) *domain.EvidenceItem {
	item := domain.EvidenceItem{
		AppID:    cand.AppID,
		DBPath:   relPath,
		Category: cand.Category,
		Priority: cand.Priority,
	}

	hasSignal := false
	for _, t := range samples {
		if t.Failed() {
			continue
		}
		item.TotalRows += t.RowCount

		if t.Classification.HasTargetScript {
			item.ScriptTables = append(item.ScriptTables, t.Table)
		}
		if t.Classification.HasEmail {
			item.EmailTables = append(item.EmailTables, t.Table)
		}

		signal := t.Classification.HasTargetScript || t.Classification.HasEmail
		hasSignal = hasSignal || signal

		if t.Important || signal {
			item.ImportantTables = append(item.ImportantTables, t)
		} else {
			item.OtherTables = append(item.OtherTables, t)
		}
	}

	included := hasSignal ||
		(cand.Priority <= domain.PriorityImportant && item.TotalRows >= s.minRows)
	if !included {
		return nil
	}

	item.ID = uuid.New().String()
	item.Principal = s.SelectPrincipal(samples)
	return &item
}

// SelectPrincipal scans classified tables in encounter order and returns
// the first extracted address not matching the denylist. The search stops
// at the first acceptable match; later, even more specific, matches are
// ignored. Empty string when nothing qualifies.
func (s *Scorer) SelectPrincipal(samples []domain.TableSample) string {
	for _, t := range samples {
		for _, addr := range t.Classification.Emails {
			if !s.denied(addr) {
				return addr
			}
		}
	}
	return ""
}

func (s *Scorer) denied(addr string) bool {
	lower := strings.ToLower(addr)
	for _, d := range s.denylist {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

// Rank orders evidence items ascending by priority, then descending by
// aggregate row count. The sort is stable so ties preserve discovery
// order and identical input reproduces identical output.
func (s *Scorer) Rank(items []domain.EvidenceItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority < items[j].Priority
		}
		return items[i].TotalRows > items[j].TotalRows
	})
}
