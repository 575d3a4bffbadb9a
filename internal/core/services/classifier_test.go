package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCellScriptChars(t *testing.T) {
	c := NewClassifier(0, 0)

	tests := []struct {
		name      string
		cell      string
		wantChars int
	}{
		{"empty", "", 0},
		{"ascii only", "hello world 123", 0},
		{"five hangul syllables", "안녕하세요", 5},
		{"mixed with latin", "hi 안녕 bye", 2},
		{"jamo outside syllable block", "\u1100\u1161", 0},
		{"other cjk not counted", "漢字かな", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.ClassifyCell(tt.cell)
			assert.Equal(t, tt.wantChars, result.TargetScriptChars)
			assert.Equal(t, tt.wantChars > 0, result.HasTargetScript)
		})
	}
}

func TestClassifyCellEmails(t *testing.T) {
	c := NewClassifier(0, 0)

	tests := []struct {
		name       string
		cell       string
		wantCount  int
		wantEmails []string
	}{
		{"no email", "plain text", 0, nil},
		{"single email", "contact alice@example.com today", 1, []string{"alice@example.com"}},
		{
			"two emails one cell",
			"from=a@x.org to=b@y.co.uk",
			2,
			[]string{"a@x.org", "b@y.co.uk"},
		},
		{
			"duplicates kept",
			"a@x.org a@x.org",
			2,
			[]string{"a@x.org", "a@x.org"},
		},
		{"missing tld", "user@localhost", 0, nil},
		{"plus and dots in local part", "first.last+tag@mail.example.com", 1, []string{"first.last+tag@mail.example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.ClassifyCell(tt.cell)
			assert.Equal(t, tt.wantCount, result.EmailCount)
			assert.Equal(t, tt.wantCount > 0, result.HasEmail)
			assert.Equal(t, tt.wantEmails, result.Emails)
		})
	}
}

func TestClassifyRowsAdditive(t *testing.T) {
	c := NewClassifier(0, 0)

	rows := [][]string{
		{"안녕", "bob@example.com"},
		{"하세요", ""},
		{"bob@example.com", "친구"},
	}

	result := c.ClassifyRows(rows)

	// Exactly 2+3+1 syllables and two address occurrences, duplicates kept.
	assert.True(t, result.HasTargetScript)
	assert.Equal(t, 6, result.TargetScriptChars)
	assert.True(t, result.HasEmail)
	assert.Equal(t, 2, result.EmailCount)
	assert.Equal(t, []string{"bob@example.com", "bob@example.com"}, result.Emails)
}

func TestClassifierCustomRange(t *testing.T) {
	// Cyrillic block instead of the Hangul default.
	c := NewClassifier(0x0400, 0x04FF)

	result := c.ClassifyCell("привет 안녕")
	assert.Equal(t, 6, result.TargetScriptChars)
}

func TestClassifierInvertedRangeFallsBack(t *testing.T) {
	c := NewClassifier(0xD7A3, 0xAC00)

	result := c.ClassifyCell("안녕")
	assert.Equal(t, 2, result.TargetScriptChars)
}
