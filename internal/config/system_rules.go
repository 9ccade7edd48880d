package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sift-money/sift/internal/common"
	"github.com/sift-money/sift/internal/model"
)

// System rules are the floor of the rule stack: loaded once from a
// read-only file, lowest priority, never persisted or mutated.
const systemRulePriorityCap = 25

type systemRuleFile struct {
	Rules []systemRule `yaml:"rules"`
}

type systemRule struct {
	Pattern     string   `yaml:"pattern"`
	MatchType   string   `yaml:"match_type"`
	Category    string   `yaml:"category"`
	Explanation string   `yaml:"explanation,omitempty"`
	Labels      []string `yaml:"labels,omitempty"`
	Priority    int      `yaml:"priority,omitempty"`
}

// LoadSystemRules reads system rules from a YAML file. A missing file is
// not an error; the system layer is simply empty. Priorities are clamped
// below every scored rule so system rules never shadow user or mined
// rules.
func LoadSystemRules(path string) ([]model.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read system rules: %w", err)
	}

	var file systemRuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: failed to parse system rules: %v", common.ErrInvalidConfig, err)
	}

	rules := make([]model.Rule, 0, len(file.Rules))
	for i, sr := range file.Rules {
		if sr.Pattern == "" || sr.Category == "" {
			return nil, fmt.Errorf("%w: system rule %d missing pattern or category", common.ErrInvalidConfig, i)
		}
		if !model.ValidMatchType(sr.MatchType) {
			return nil, fmt.Errorf("%w: system rule %d has unknown match type %q", common.ErrInvalidConfig, i, sr.MatchType)
		}
		priority := sr.Priority
		if priority < 0 {
			priority = 0
		}
		if priority > systemRulePriorityCap {
			priority = systemRulePriorityCap
		}
		rules = append(rules, model.Rule{
			// Negative IDs keep system rules distinct from stored rules.
			ID:          -(i + 1),
			MatchType:   model.MatchType(sr.MatchType),
			Pattern:     sr.Pattern,
			Category:    sr.Category,
			Priority:    priority,
			Labels:      sr.Labels,
			Explanation: sr.Explanation,
			Source:      model.SourceSystem,
			Enabled:     true,
			Applied:     true,
			CreatedAt:   time.Time{},
			UpdatedAt:   time.Time{},
		})
	}
	return rules, nil
}
