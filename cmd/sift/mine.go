package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sift-money/sift/internal/mining"
)

func mineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Mine candidate rules from transaction history",
		Long: `Analyze stored transactions for frequent merchants, store-number
patterns, MCC and merchant-ID frequency, recurring payments, and
marketplace keywords. Candidates are displayed for review; pass --accept
to persist the surviving rule set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			txns, err := db.ListTransactions(ctx)
			if err != nil {
				return fmt.Errorf("failed to load transactions: %w", err)
			}
			if len(txns) == 0 {
				slog.Info("No transactions to mine")
				return nil
			}

			minFrequency, _ := cmd.Flags().GetInt("min-frequency")
			threshold, _ := cmd.Flags().GetFloat64("large-purchase")

			candidates := mining.MineRules(txns, mining.Options{
				MinFrequency:           minFrequency,
				LargePurchaseThreshold: threshold,
			})
			if len(candidates) == 0 {
				slog.Info("No qualifying patterns found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "PATTERN\tTYPE\tSOURCE\tCATEGORY\tPRIORITY\tMATCHES\tCOVERAGE")
			_, _ = fmt.Fprintln(w, "───────\t────\t──────\t────────\t────────\t───────\t────────")
			for _, rule := range candidates {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.1f%%\n",
					truncateString(rule.Pattern, 30),
					rule.MatchType,
					rule.Source,
					rule.Category,
					rule.Priority,
					rule.ActualMatches,
					rule.Coverage*100)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			accept, _ := cmd.Flags().GetBool("accept")
			if !accept {
				slog.Info("Run with --accept to save these rules", "candidates", len(candidates))
				return nil
			}

			if err := db.SaveMinedRules(ctx, candidates); err != nil {
				return fmt.Errorf("failed to save mined rules: %w", err)
			}
			slog.Info("Mined rules saved", "count", len(candidates))
			return nil
		},
	}

	cmd.Flags().Int("min-frequency", mining.DefaultMinFrequency, "Minimum occurrences before a pattern becomes a candidate")
	cmd.Flags().Float64("large-purchase", mining.DefaultLargePurchaseThreshold, "Amount above which one-off purchases look like savings goals")
	cmd.Flags().Bool("accept", false, "Persist the surviving candidate rules")
	return cmd
}
