package mining

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sift-money/sift/internal/model"
)

// ExceptionPriority pins exception variants above every scored candidate
// so conflicting patterns resolve deterministically downstream.
const ExceptionPriority = 2000

// Exceptions detects contains candidates that share a pattern but
// disagree on category, and returns high-priority override variants of
// each conflicting rule. It does not pick a winner; conflict resolution
// does that in a later pass.
func Exceptions(rules []model.Rule) []model.Rule {
	groups := make(map[string][]int)
	var order []string
	for i, rule := range rules {
		if rule.MatchType != model.MatchContains {
			continue
		}
		key := strings.ToLower(rule.Pattern)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	var variants []model.Rule
	for _, key := range order {
		idxs := groups[key]
		categories := make(map[string]bool)
		for _, i := range idxs {
			categories[rules[i].Category] = true
		}
		if len(categories) < 2 {
			continue
		}
		for _, i := range idxs {
			v := rules[i]
			v.Labels = slices.Clone(v.Labels)
			v.Priority = ExceptionPriority
			v.Source = model.SourceExceptionAnalysis
			v.Explanation = fmt.Sprintf("Pattern %q maps to multiple categories; pinned override for %s", key, v.Category)
			variants = append(variants, v)
		}
	}
	return variants
}
