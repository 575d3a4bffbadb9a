package services

import (
	"regexp"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
)

// Hangul syllables block, the default target script.
const (
	DefaultScriptLo = 0xAC00
	DefaultScriptHi = 0xD7A3
)

// emailPattern is the fixed lexical shape local-part@domain.tld.
// Matching is purely lexical; no deduplication or validation beyond it.
var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// Classifier scans sampled cell values for target-script text and
// email-address patterns. It is stateless and safe for concurrent use.
type Classifier struct {
	scriptLo rune
	scriptHi rune
}

// NewClassifier creates a classifier for the given script range.
// A zero or inverted range falls back to the Hangul default.
func NewClassifier(scriptLo, scriptHi rune) *Classifier {
	if scriptLo <= 0 || scriptHi < scriptLo {
		scriptLo, scriptHi = DefaultScriptLo, DefaultScriptHi
	}
	return &Classifier{scriptLo: scriptLo, scriptHi: scriptHi}
}

// ClassifyCell classifies a single cell value.
func (c *Classifier) ClassifyCell(cell string) domain.ClassificationResult {
	var result domain.ClassificationResult

	for _, r := range cell {
		if r >= c.scriptLo && r <= c.scriptHi {
			result.TargetScriptChars++
		}
	}
	result.HasTargetScript = result.TargetScriptChars > 0

	if emails := emailPattern.FindAllString(cell, -1); len(emails) > 0 {
		result.HasEmail = true
		result.EmailCount = len(emails)
		result.Emails = emails
	}

	return result
}

// ClassifyRows classifies all cells of a table sample and returns the
// merged result. Counting is additive: flags OR, counts sum, addresses
// append in encounter order.
func (c *Classifier) ClassifyRows(rows [][]string) domain.ClassificationResult {
	var result domain.ClassificationResult
	for _, row := range rows {
		for _, cell := range row {
			result.Merge(c.ClassifyCell(cell))
		}
	}
	return result
}
