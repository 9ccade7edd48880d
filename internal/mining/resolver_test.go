package mining

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sift-money/sift/internal/model"
)

func containsRule(id, priority int, pattern, category string) model.Rule {
	return model.Rule{
		ID:        id,
		MatchType: model.MatchContains,
		Pattern:   pattern,
		Category:  category,
		Priority:  priority,
		Enabled:   true,
	}
}

func TestResolve_GreedyClaim(t *testing.T) {
	txns := []model.Transaction{
		{Hash: "t1", Name: "STARBUCKS #1234", Amount: -5.75},
		{Hash: "t2", Name: "STARBUCKS RESERVE", Amount: -9.00},
		{Hash: "t3", Name: "LOBLAWS #404", Amount: -85.00},
	}
	rules := []model.Rule{
		containsRule(1, 100, "starbucks", model.CategoryGuiltFree),
		containsRule(2, 50, "star", model.CategoryFixedCosts),
		containsRule(3, 80, "loblaws", model.CategoryFixedCosts),
	}

	survivors := Resolve(rules, txns)
	require.Len(t, survivors, 2)

	// Higher-priority starbucks rule claims both; the broader "star" rule
	// is left with nothing and dropped.
	assert.Equal(t, 1, survivors[0].ID)
	assert.Equal(t, 2, survivors[0].ActualMatches)
	assert.InDelta(t, 2.0/3.0, survivors[0].Coverage, 0.001)

	assert.Equal(t, 3, survivors[1].ID)
	assert.Equal(t, 1, survivors[1].ActualMatches)
}

func TestResolve_ZeroCoverageDropped(t *testing.T) {
	txns := []model.Transaction{
		{Hash: "t1", Name: "STARBUCKS", Amount: -5},
	}
	rules := []model.Rule{
		containsRule(1, 100, "starbucks", model.CategoryGuiltFree),
		containsRule(2, 90, "nothing matches this", model.CategoryFixedCosts),
	}

	survivors := Resolve(rules, txns)
	require.Len(t, survivors, 1)
	assert.Equal(t, 1, survivors[0].ID)
}

func TestResolve_SkipsManualOverrides(t *testing.T) {
	txns := []model.Transaction{
		{Hash: "t1", Name: "STARBUCKS", Amount: -5, ManualOverride: true},
		{Hash: "t2", Name: "STARBUCKS", Amount: -6},
	}
	rules := []model.Rule{
		containsRule(1, 100, "starbucks", model.CategoryGuiltFree),
	}

	survivors := Resolve(rules, txns)
	require.Len(t, survivors, 1)
	assert.Equal(t, 1, survivors[0].ActualMatches, "overridden transactions are never claimed")
}

func TestResolve_ClaimsConserved(t *testing.T) {
	txns := []model.Transaction{
		{Hash: "t1", Name: "STARBUCKS #1", Amount: -5},
		{Hash: "t2", Name: "STARBUCKS #2", Amount: -6},
		{Hash: "t3", Name: "LOBLAWS #3", Amount: -80},
		{Hash: "t4", Name: "MYSTERY", Amount: -10},
	}
	rules := []model.Rule{
		containsRule(1, 100, "starbucks", model.CategoryGuiltFree),
		containsRule(2, 90, "loblaws", model.CategoryFixedCosts),
		containsRule(3, 80, "star", model.CategoryFixedCosts),
	}

	survivors := Resolve(rules, txns)

	total := 0
	for _, r := range survivors {
		assert.Positive(t, r.ActualMatches)
		total += r.ActualMatches
	}
	// Each transaction is claimed at most once.
	assert.LessOrEqual(t, total, len(txns))
	assert.Equal(t, 3, total)
}

func TestResolve_InputNotMutated(t *testing.T) {
	txns := []model.Transaction{
		{Hash: "t1", Name: "STARBUCKS", Amount: -5},
	}
	rules := []model.Rule{
		containsRule(1, 100, "starbucks", model.CategoryGuiltFree),
	}

	_ = Resolve(rules, txns)
	assert.Zero(t, rules[0].ActualMatches)
	assert.Zero(t, rules[0].Coverage)
}
