package storage

import (
	"context"
	"fmt"

	"github.com/sift-money/sift/internal/common"
	"github.com/sift-money/sift/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

func validateTransactions(transactions []model.Transaction) error {
	for i, txn := range transactions {
		if txn.Name == "" && txn.Description == "" {
			return fmt.Errorf("transaction %d has no name or description", i)
		}
		if txn.Date.IsZero() {
			return fmt.Errorf("transaction %d has no date", i)
		}
	}
	return nil
}

func validateRule(rule *model.Rule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule cannot be nil", common.ErrInvalidRule)
	}
	if rule.MatchType != model.MatchInflow && rule.Pattern == "" {
		return fmt.Errorf("%w: pattern cannot be empty", common.ErrInvalidRule)
	}
	if rule.Category == "" {
		return fmt.Errorf("%w: category cannot be empty", common.ErrInvalidRule)
	}
	if !model.ValidMatchType(string(rule.MatchType)) {
		return fmt.Errorf("%w: unknown match type %q", common.ErrInvalidRule, rule.MatchType)
	}
	if rule.Priority < 0 {
		return fmt.Errorf("%w: priority must be non-negative", common.ErrInvalidRule)
	}
	return nil
}
