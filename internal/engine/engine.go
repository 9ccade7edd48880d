// Package engine applies an ordered rule set to transaction batches,
// assigning at most one category per transaction.
package engine

import (
	"slices"

	"github.com/sift-money/sift/internal/match"
	"github.com/sift-money/sift/internal/model"
	"github.com/sift-money/sift/internal/normalize"
)

// Engine categorizes transaction batches. It holds no per-batch state;
// every Apply call builds its own normalization cache and matcher, so the
// same engine can serve an import session and later reapply jobs.
type Engine struct {
	accounts map[string]model.Account
}

// New creates an engine. accounts is an optional read-only lookup used
// for rule scope constraints.
func New(accounts map[string]model.Account) *Engine {
	return &Engine{accounts: accounts}
}

// Apply runs rules over txns and returns categorized copies in input
// order. Inputs are never mutated. Manually-overridden transactions pass
// through untouched; every other transaction is claimed by the first
// matching rule under (priority desc, updated desc) order, or left
// uncategorized. Repeated invocation with unchanged inputs yields
// identical output.
func (e *Engine) Apply(txns []model.Transaction, rules []model.Rule) []model.Transaction {
	sorted := SortRules(rules)
	matcher := match.NewMatcher(normalize.NewCache(), e.accounts)

	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		out = append(out, e.applyOne(txn, sorted, matcher))
	}
	return out
}

func (e *Engine) applyOne(txn model.Transaction, sorted []model.Rule, matcher *match.Matcher) model.Transaction {
	result := txn
	result.Labels = slices.Clone(txn.Labels)

	if txn.ManualOverride {
		return result
	}

	for _, rule := range sorted {
		if !matcher.Matches(rule, txn) {
			continue
		}
		result.Category = rule.Category
		result.CategorySource = model.CategorySourceRule
		result.CategoryExplain = rule.Explanation
		result.RuleID = rule.ID
		result.RuleType = rule.Source.RuleType()
		result.Labels = mergeLabels(txn.Labels, rule.Labels)
		return result
	}

	// Unmatched: clear any stale rule categorization but keep labels.
	result.Category = ""
	result.CategorySource = model.CategorySourceNone
	result.CategoryExplain = ""
	result.RuleID = 0
	result.RuleType = model.RuleTypeNone
	return result
}

// SortRules returns enabled rules sorted for first-match-wins scanning:
// priority descending, then most recently updated, then ID ascending so
// the order is total even for rules stamped in the same instant.
func SortRules(rules []model.Rule) []model.Rule {
	sorted := make([]model.Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.Enabled {
			sorted = append(sorted, rule)
		}
	}
	slices.SortStableFunc(sorted, func(a, b model.Rule) int {
		if a.Priority != b.Priority {
			return b.Priority - a.Priority
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			if a.UpdatedAt.After(b.UpdatedAt) {
				return -1
			}
			return 1
		}
		return a.ID - b.ID
	})
	return sorted
}

// mergeLabels unions two label sets, preserving first-seen order.
func mergeLabels(existing, added []string) []string {
	merged := make([]string, 0, len(existing)+len(added))
	seen := make(map[string]bool, len(existing)+len(added))
	for _, label := range existing {
		if !seen[label] {
			seen[label] = true
			merged = append(merged, label)
		}
	}
	for _, label := range added {
		if !seen[label] {
			seen[label] = true
			merged = append(merged, label)
		}
	}
	return merged
}
