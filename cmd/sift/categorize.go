package main

import (
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/sift-money/sift/internal/engine"
	"github.com/sift-money/sift/internal/model"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Apply categorization rules to transactions",
		Long: `Apply the rule stack (user rules, accepted mined rules, system rules)
to stored transactions. By default only uncategorized transactions are
processed; --all recategorizes everything except manual overrides.
Reapplying with unchanged rules and transactions is idempotent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			all, _ := cmd.Flags().GetBool("all")

			var txns []model.Transaction
			if all {
				txns, err = db.ListTransactions(ctx)
			} else {
				txns, err = db.ListUncategorized(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to load transactions: %w", err)
			}
			if len(txns) == 0 {
				slog.Info("No transactions to categorize")
				return nil
			}

			rules, err := loadRuleStack(ctx, db)
			if err != nil {
				return err
			}

			results := engine.New(loadAccounts()).Apply(txns, rules)

			bar := progressbar.Default(int64(len(results)), "categorizing")
			categorized := 0
			ruleHits := make(map[int]int)
			for _, txn := range results {
				_ = bar.Add(1)
				if txn.CategorySource != model.CategorySourceRule {
					continue
				}
				categorized++
				if txn.RuleID > 0 {
					ruleHits[txn.RuleID]++
				}
			}

			if err := db.UpdateCategorization(ctx, results); err != nil {
				return fmt.Errorf("failed to persist categorization: %w", err)
			}
			for id, hits := range ruleHits {
				if err := db.IncrementRuleUseCount(ctx, id, hits); err != nil {
					slog.Warn("failed to update rule use count", "rule_id", id, "error", err)
				}
			}

			slog.Info("Categorization complete",
				"transactions", len(results),
				"categorized", categorized,
				"uncategorized", len(results)-categorized,
				"rules_used", len(ruleHits))
			return nil
		},
	}

	cmd.Flags().BoolP("all", "a", false, "Recategorize all transactions, not just uncategorized ones")
	return cmd
}
