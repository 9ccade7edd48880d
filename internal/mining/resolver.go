package mining

import (
	"github.com/sift-money/sift/internal/engine"
	"github.com/sift-money/sift/internal/match"
	"github.com/sift-money/sift/internal/model"
	"github.com/sift-money/sift/internal/normalize"
)

// Resolve assigns transactions to candidate rules greedily in priority
// order and discards rules left with zero coverage. It uses the same rule
// ordering and matcher semantics as engine.Apply, so the coverage
// annotated here reproduces exactly when the survivors are applied.
// Input transaction order is preserved; nothing is mutated.
func Resolve(rules []model.Rule, txns []model.Transaction) []model.Rule {
	sorted := engine.SortRules(rules)
	matcher := match.NewMatcher(normalize.NewCache(), nil)
	claimed := make([]bool, len(txns))

	var survivors []model.Rule
	for _, rule := range sorted {
		var claims []int
		for i, txn := range txns {
			if claimed[i] || txn.ManualOverride {
				continue
			}
			if matcher.Matches(rule, txn) {
				claims = append(claims, i)
			}
		}
		if len(claims) == 0 {
			continue
		}
		for _, i := range claims {
			claimed[i] = true
		}
		rule.ActualMatches = len(claims)
		rule.Coverage = float64(len(claims)) / float64(len(txns))
		survivors = append(survivors, rule)
	}
	return survivors
}
