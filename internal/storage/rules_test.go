package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sift-money/sift/internal/common"
	"github.com/sift-money/sift/internal/model"
)

func testRule() *model.Rule {
	minAmount := 5.0
	return &model.Rule{
		MatchType:   model.MatchContains,
		Pattern:     "starbucks",
		Category:    model.CategoryGuiltFree,
		Priority:    100,
		Labels:      []string{"coffee"},
		Explanation: "Coffee runs",
		Source:      model.SourceUserCreated,
		Enabled:     true,
		Applied:     true,
		Scope: model.RuleScope{
			AccountID: "chequing",
			MinAmount: &minAmount,
		},
	}
}

func TestSQLiteStorage_CreateAndGetRule(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rule := testRule()
	if err := store.CreateRule(ctx, rule); err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}
	if rule.ID == 0 {
		t.Fatal("CreateRule did not assign an ID")
	}

	got, err := store.GetRule(ctx, rule.ID)
	if err != nil {
		t.Fatalf("Failed to get rule: %v", err)
	}
	if got.Pattern != "starbucks" || got.MatchType != model.MatchContains {
		t.Errorf("Rule roundtrip mismatch: %+v", got)
	}
	if got.Scope.AccountID != "chequing" {
		t.Errorf("Scope.AccountID = %q, want chequing", got.Scope.AccountID)
	}
	if got.Scope.MinAmount == nil || *got.Scope.MinAmount != 5.0 {
		t.Errorf("Scope.MinAmount not persisted: %v", got.Scope.MinAmount)
	}
	if got.Scope.MaxAmount != nil {
		t.Errorf("Scope.MaxAmount should be nil, got %v", got.Scope.MaxAmount)
	}
	if len(got.Labels) != 1 || got.Labels[0] != "coffee" {
		t.Errorf("Labels = %v, want [coffee]", got.Labels)
	}

	_, err = store.GetRule(ctx, 9999)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_CreateRule_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		mutate func(*model.Rule)
		name   string
	}{
		{name: "empty pattern", mutate: func(r *model.Rule) { r.Pattern = "" }},
		{name: "empty category", mutate: func(r *model.Rule) { r.Category = "" }},
		{name: "unknown match type", mutate: func(r *model.Rule) { r.MatchType = "glob" }},
		{name: "negative priority", mutate: func(r *model.Rule) { r.Priority = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := testRule()
			tt.mutate(rule)
			err := store.CreateRule(ctx, rule)
			if !errors.Is(err, common.ErrInvalidRule) {
				t.Errorf("Expected ErrInvalidRule, got %v", err)
			}
		})
	}

	// Inflow rules are the one shape that carries no pattern.
	inflow := testRule()
	inflow.MatchType = model.MatchInflow
	inflow.Pattern = ""
	if err := store.CreateRule(ctx, inflow); err != nil {
		t.Errorf("Inflow rule without pattern should be valid: %v", err)
	}
}

func TestSQLiteStorage_ListRules(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	low := testRule()
	low.Pattern = "low"
	low.Priority = 10
	high := testRule()
	high.Pattern = "high"
	high.Priority = 500
	disabled := testRule()
	disabled.Pattern = "disabled"
	disabled.Priority = 900
	disabled.Enabled = false

	for _, r := range []*model.Rule{low, high, disabled} {
		if err := store.CreateRule(ctx, r); err != nil {
			t.Fatalf("Failed to create rule %q: %v", r.Pattern, err)
		}
	}

	all, err := store.ListRules(ctx, false)
	if err != nil {
		t.Fatalf("Failed to list rules: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 rules, got %d", len(all))
	}
	if all[0].Pattern != "disabled" || all[1].Pattern != "high" {
		t.Errorf("Rules not in priority order: %q, %q", all[0].Pattern, all[1].Pattern)
	}

	enabled, err := store.ListRules(ctx, true)
	if err != nil {
		t.Fatalf("Failed to list enabled rules: %v", err)
	}
	if len(enabled) != 2 {
		t.Errorf("Expected 2 enabled rules, got %d", len(enabled))
	}
}

func TestSQLiteStorage_UpdateRule(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rule := testRule()
	if err := store.CreateRule(ctx, rule); err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	rule.Category = model.CategoryFixedCosts
	rule.Enabled = false
	if err := store.UpdateRule(ctx, rule); err != nil {
		t.Fatalf("Failed to update rule: %v", err)
	}

	got, err := store.GetRule(ctx, rule.ID)
	if err != nil {
		t.Fatalf("Failed to get rule: %v", err)
	}
	if got.Category != model.CategoryFixedCosts {
		t.Errorf("Category = %q, want %q", got.Category, model.CategoryFixedCosts)
	}
	if got.Enabled {
		t.Error("Rule should be disabled after update")
	}

	missing := testRule()
	missing.ID = 9999
	if err := store.UpdateRule(ctx, missing); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_DeleteRule(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rule := testRule()
	if err := store.CreateRule(ctx, rule); err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}
	if err := store.DeleteRule(ctx, rule.ID); err != nil {
		t.Fatalf("Failed to delete rule: %v", err)
	}
	if _, err := store.GetRule(ctx, rule.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteRule(ctx, rule.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSQLiteStorage_IncrementRuleUseCount(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rule := testRule()
	if err := store.CreateRule(ctx, rule); err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	if err := store.IncrementRuleUseCount(ctx, rule.ID, 3); err != nil {
		t.Fatalf("Failed to increment use count: %v", err)
	}
	if err := store.IncrementRuleUseCount(ctx, rule.ID, 2); err != nil {
		t.Fatalf("Failed to increment use count: %v", err)
	}

	got, err := store.GetRule(ctx, rule.ID)
	if err != nil {
		t.Fatalf("Failed to get rule: %v", err)
	}
	if got.UseCount != 5 {
		t.Errorf("UseCount = %d, want 5", got.UseCount)
	}

	if err := store.IncrementRuleUseCount(ctx, 9999, 1); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_SaveMinedRules(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	amount := 16.99
	mined := []model.Rule{
		{
			MatchType: model.MatchContains,
			Pattern:   "netflix com",
			Category:  model.CategoryFixedCosts,
			Priority:  95,
			Source:    model.SourceRecurringAnalysis,
			Amount:    &amount,
			Support:   3,
			Enabled:   true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		{
			MatchType: model.MatchMCC,
			Pattern:   "5812",
			Category:  model.CategoryGuiltFree,
			Priority:  120,
			Source:    model.SourceMCCAnalysis,
			Support:   8,
			Enabled:   true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}

	if err := store.SaveMinedRules(ctx, mined); err != nil {
		t.Fatalf("Failed to save mined rules: %v", err)
	}

	rules, err := store.ListRules(ctx, true)
	if err != nil {
		t.Fatalf("Failed to list rules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}
	for _, r := range rules {
		if !r.Applied {
			t.Errorf("Mined rule %q not marked applied", r.Pattern)
		}
	}

	var recurring *model.Rule
	for i := range rules {
		if rules[i].Source == model.SourceRecurringAnalysis {
			recurring = &rules[i]
		}
	}
	if recurring == nil {
		t.Fatal("Recurring rule not persisted")
	}
	if recurring.Amount == nil || *recurring.Amount != 16.99 {
		t.Errorf("Recurring amount not persisted: %v", recurring.Amount)
	}
}
