// Package yamlfile loads catalog rule overrides from a YAML file.
//
// Labs maintain their own app lists; a rules file replaces the built-in
// catalog wholesale so the effective rule set is always visible in one
// place rather than merged from two.
package yamlfile

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/halcyon-forensics/imgtriage/internal/core/domain"
)

// ruleFile is the on-disk shape of a catalog override.
type ruleFile struct {
	Categories []struct {
		Category string   `yaml:"category"`
		Priority int      `yaml:"priority"`
		Apps     []string `yaml:"apps"`
	} `yaml:"categories"`
	Patterns []struct {
		App    string   `yaml:"app"`
		Tables []string `yaml:"tables"`
	} `yaml:"patterns"`
}

// Load reads a catalog rule file. Rule order in the file is match order.
func Load(path string) (*domain.Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var rf ruleFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rf.Categories) == 0 {
		return nil, fmt.Errorf("%w: %s defines no categories", domain.ErrInvalidInput, path)
	}

	rules := make([]domain.AppCategoryRule, 0, len(rf.Categories))
	for _, c := range rf.Categories {
		rules = append(rules, domain.AppCategoryRule{
			Category: c.Category,
			Priority: c.Priority,
			Apps:     c.Apps,
		})
	}
	patterns := make([]domain.TablePatternRule, 0, len(rf.Patterns))
	for _, p := range rf.Patterns {
		patterns = append(patterns, domain.TablePatternRule{
			App:      p.App,
			Patterns: p.Tables,
		})
	}

	catalog, err := domain.NewCatalog(rules, patterns)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return catalog, nil
}
