package mining

import (
	"strings"

	"github.com/sift-money/sift/internal/model"
)

// Scoring weights. The additive design keeps priorities deterministic and
// the user-created bonus guarantees hand-written rules outrank any mined
// rule of equal specificity.
const (
	baseScore        = 50
	userCreatedBonus = 100

	maxSupportBonus   = 20
	maxLengthBonus    = 30
	maxWordCountBonus = 25
)

var matchTypeBonus = map[model.MatchType]int{
	model.MatchExact:    50,
	model.MatchMCC:      40,
	model.MatchRegex:    30,
	model.MatchContains: 10,
}

var sourceBonus = map[model.RuleSource]int{
	model.SourceMCCAnalysis:        25,
	model.SourceMerchantIDAnalysis: 20,
	model.SourceStorePattern:       15,
	model.SourceRecurringAnalysis:  10,
	model.SourceMarketplace:        5,
}

// Score computes a priority for each rule and returns a new slice; the
// input is untouched. Scoring is idempotent: priorities depend only on
// the rule's own fields.
func Score(rules []model.Rule) []model.Rule {
	scored := make([]model.Rule, len(rules))
	for i, rule := range rules {
		priority := baseScore
		priority += matchTypeBonus[rule.MatchType]
		priority += min(rule.Support*2, maxSupportBonus)
		priority += min(len(rule.Pattern)*2, maxLengthBonus)
		if rule.MatchType == model.MatchContains {
			priority += min(len(strings.Fields(rule.Pattern))*5, maxWordCountBonus)
		}
		priority += sourceBonus[rule.Source]
		if rule.Source == model.SourceUserCreated {
			priority += userCreatedBonus
		}
		rule.Priority = priority
		scored[i] = rule
	}
	return scored
}
