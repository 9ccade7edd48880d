package mining

import (
	"fmt"
	"math"
	"sort"

	"github.com/sift-money/sift/internal/model"
	"github.com/sift-money/sift/internal/normalize"
)

// Recurring-payment detection thresholds. A merchant/amount pair must
// recur at least three times with most gaps near a monthly cadence.
const (
	recurringMinOccurrences = 3
	cadenceMinDays          = 20.0
	cadenceMaxDays          = 40.0
	cadenceConsistency      = 0.8
)

// mineRecurring groups transactions by (normalized merchant, absolute
// amount to the cent) and emits a contains candidate carrying the specific
// amount for groups on a roughly 30-day cadence.
func (m *Miner) mineRecurring(txns []model.Transaction, cache *normalize.Cache) []model.Rule {
	type group struct {
		merchant string
		dates    []float64 // days since epoch
		amount   float64
	}
	groups := make(map[string]*group)
	for _, txn := range txns {
		norm := cache.Normalize(txn.Name)
		if norm == "" {
			continue
		}
		cents := math.Round(txn.AbsAmount() * 100)
		key := fmt.Sprintf("%s|%.0f", norm, cents)
		g := groups[key]
		if g == nil {
			g = &group{merchant: norm, amount: cents / 100}
			groups[key] = g
		}
		g.dates = append(g.dates, float64(txn.Date.Unix())/86400)
	}

	var rules []model.Rule
	for _, key := range sortedKeys(groups) {
		g := groups[key]
		if len(g.dates) < recurringMinOccurrences {
			continue
		}
		sort.Float64s(g.dates)

		consistent := 0
		gaps := len(g.dates) - 1
		for i := 1; i < len(g.dates); i++ {
			gap := g.dates[i] - g.dates[i-1]
			if gap >= cadenceMinDays && gap <= cadenceMaxDays {
				consistent++
			}
		}
		if float64(consistent)/float64(gaps) < cadenceConsistency {
			continue
		}

		amount := g.amount
		rule := m.candidate(
			model.MatchContains, model.SourceRecurringAnalysis,
			g.merchant, model.CategoryFixedCosts, len(g.dates),
			fmt.Sprintf("Recurring charge of $%.2f roughly every 30 days", amount))
		rule.Amount = &amount
		rules = append(rules, rule)
	}
	return rules
}
