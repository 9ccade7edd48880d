package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sift-money/sift/internal/engine"
	"github.com/sift-money/sift/internal/mining"
	"github.com/sift-money/sift/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		Aliases: []string{"rule"},
		Short:   "Manage categorization rules",
		Long: `Manage the categorization rules that assign spending categories to
transactions: list, create, edit, delete, and dry-run the rule stack.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesCreateCmd())
	cmd.AddCommand(rulesDeleteCmd())
	cmd.AddCommand(rulesEnableCmd(true))
	cmd.AddCommand(rulesEnableCmd(false))
	cmd.AddCommand(rulesTestCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			enabledOnly, _ := cmd.Flags().GetBool("enabled")
			rules, err := db.ListRules(ctx, enabledOnly)
			if err != nil {
				return err
			}
			if len(rules) == 0 {
				slog.Info("No rules found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tPATTERN\tTYPE\tCATEGORY\tPRIORITY\tSOURCE\tENABLED\tUSE COUNT")
			_, _ = fmt.Fprintln(w, "──\t───────\t────\t────────\t────────\t──────\t───────\t─────────")
			for _, rule := range rules {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%t\t%d\n",
					rule.ID,
					truncateString(rule.Pattern, 30),
					rule.MatchType,
					rule.Category,
					rule.Priority,
					rule.Source,
					rule.Enabled,
					rule.UseCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolP("enabled", "e", false, "Show only enabled rules")
	return cmd
}

func rulesCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			pattern, _ := cmd.Flags().GetString("pattern")
			matchType, _ := cmd.Flags().GetString("type")
			category, _ := cmd.Flags().GetString("category")

			if !model.ValidMatchType(matchType) {
				return fmt.Errorf("invalid match type: %s (valid: exact, contains, regex, mcc, inflow)", matchType)
			}
			if !model.ValidCategory(category) {
				slog.Warn("category is not one of the standard buckets", "category", category)
			}

			priority, _ := cmd.Flags().GetInt("priority")
			if priority < 0 {
				return fmt.Errorf("priority must be non-negative")
			}
			labels, _ := cmd.Flags().GetStringSlice("label")
			explanation, _ := cmd.Flags().GetString("explanation")
			accountID, _ := cmd.Flags().GetString("account")
			inflowOnly, _ := cmd.Flags().GetBool("inflow-only")
			outflowOnly, _ := cmd.Flags().GetBool("outflow-only")

			rule := &model.Rule{
				MatchType:   model.MatchType(matchType),
				Pattern:     pattern,
				Category:    category,
				Priority:    priority,
				Labels:      labels,
				Explanation: explanation,
				Source:      model.SourceUserCreated,
				Enabled:     true,
				Applied:     true,
				Scope: model.RuleScope{
					AccountID:   accountID,
					InflowOnly:  inflowOnly,
					OutflowOnly: outflowOnly,
				},
			}
			if cmd.Flags().Changed("min-amount") {
				minAmount, _ := cmd.Flags().GetFloat64("min-amount")
				rule.Scope.MinAmount = &minAmount
			}
			if cmd.Flags().Changed("max-amount") {
				maxAmount, _ := cmd.Flags().GetFloat64("max-amount")
				rule.Scope.MaxAmount = &maxAmount
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := db.CreateRule(ctx, rule); err != nil {
				return fmt.Errorf("failed to create rule: %w", err)
			}

			slog.Info("Rule created",
				"id", rule.ID,
				"pattern", rule.Pattern,
				"category", rule.Category)
			return nil
		},
	}

	cmd.Flags().StringP("pattern", "m", "", "Pattern to match (required)")
	cmd.Flags().StringP("type", "t", "contains", "Match type (exact, contains, regex, mcc, inflow)")
	cmd.Flags().StringP("category", "c", "", "Target category (required)")
	cmd.Flags().IntP("priority", "p", 100, "Priority (higher values win)")
	cmd.Flags().StringSlice("label", nil, "Labels merged onto matching transactions")
	cmd.Flags().String("explanation", "", "Explanation recorded on matching transactions")
	cmd.Flags().String("account", "", "Restrict rule to one account")
	cmd.Flags().Float64("min-amount", 0, "Minimum absolute amount")
	cmd.Flags().Float64("max-amount", 0, "Maximum absolute amount")
	cmd.Flags().Bool("inflow-only", false, "Match inflows only")
	cmd.Flags().Bool("outflow-only", false, "Match outflows only")

	if err := cmd.MarkFlagRequired("pattern"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}
	if err := cmd.MarkFlagRequired("category"); err != nil {
		slog.Error("failed to mark flag as required", "error", err)
	}

	return cmd
}

func rulesDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule ID: %s", args[0])
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rule, err := db.GetRule(ctx, id)
			if err != nil {
				return fmt.Errorf("rule %d not found", id)
			}

			force, _ := cmd.Flags().GetBool("force")
			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "About to delete rule %d (%s -> %s). Continue? (y/N): ",
					rule.ID, rule.Pattern, rule.Category)
				var response string
				_, _ = fmt.Scanln(&response)
				if strings.ToLower(response) != "y" && strings.ToLower(response) != "yes" {
					slog.Info("Deletion canceled")
					return nil
				}
			}

			if err := db.DeleteRule(ctx, id); err != nil {
				return fmt.Errorf("failed to delete rule: %w", err)
			}
			slog.Info("Rule deleted", "id", id)
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")
	return cmd
}

func rulesEnableCmd(enable bool) *cobra.Command {
	use, short := "enable <id>", "Enable a rule"
	if !enable {
		use, short = "disable <id>", "Disable a rule"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule ID: %s", args[0])
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rule, err := db.GetRule(ctx, id)
			if err != nil {
				return fmt.Errorf("rule %d not found", id)
			}
			rule.Enabled = enable
			if err := db.UpdateRule(ctx, rule); err != nil {
				return fmt.Errorf("failed to update rule: %w", err)
			}
			slog.Info("Rule updated", "id", id, "enabled", enable)
			return nil
		},
	}
}

func rulesTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Dry-run the rule stack against stored transactions",
		Long: `Run the full rule stack over all stored transactions without
persisting anything, and report what each rule would claim.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			txns, err := db.ListTransactions(ctx)
			if err != nil {
				return err
			}
			rules, err := loadRuleStack(ctx, db)
			if err != nil {
				return err
			}
			if len(txns) == 0 || len(rules) == 0 {
				slog.Info("Nothing to test", "transactions", len(txns), "rules", len(rules))
				return nil
			}

			results := engine.New(loadAccounts()).Apply(txns, rules)

			claims := mining.Resolve(rules, txns)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "RULE\tPATTERN\tCATEGORY\tWOULD CLAIM\tCOVERAGE")
			for _, rule := range claims {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.1f%%\n",
					rule.ID,
					truncateString(rule.Pattern, 30),
					rule.Category,
					rule.ActualMatches,
					rule.Coverage*100)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			categorized := 0
			for _, txn := range results {
				if txn.CategorySource == model.CategorySourceRule {
					categorized++
				}
			}
			slog.Info("Dry run complete",
				"transactions", len(txns),
				"would_categorize", categorized)
			return nil
		},
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
