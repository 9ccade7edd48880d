package mining

import (
	"fmt"

	"github.com/sift-money/sift/internal/model"
)

// mccCategories maps common merchant category codes to spending buckets.
// Codes not listed default to fixed costs.
var mccCategories = map[string]string{
	"4111": model.CategoryFixedCosts,       // local transit
	"4121": model.CategoryGuiltFree,        // taxis and rideshare
	"4814": model.CategoryFixedCosts,       // telecom
	"4900": model.CategoryFixedCosts,       // utilities
	"5411": model.CategoryFixedCosts,       // grocery stores
	"5541": model.CategoryFixedCosts,       // service stations
	"5651": model.CategoryGuiltFree,        // clothing
	"5812": model.CategoryGuiltFree,        // restaurants
	"5813": model.CategoryGuiltFree,        // bars
	"5814": model.CategoryGuiltFree,        // fast food
	"5912": model.CategoryFixedCosts,       // drug stores
	"5942": model.CategoryGuiltFree,        // book stores
	"6300": model.CategoryFixedCosts,       // insurance
	"7832": model.CategoryGuiltFree,        // cinemas
	"7997": model.CategoryFixedCosts,       // gyms and clubs
	"8011": model.CategoryFixedCosts,       // doctors
	"8099": model.CategoryFixedCosts,       // health services
	"4511": model.CategoryShortTermSavings, // airlines
	"7011": model.CategoryShortTermSavings, // hotels
}

// MCCCategory returns the bucket for a merchant category code.
func MCCCategory(code string) string {
	if cat, ok := mccCategories[code]; ok {
		return cat
	}
	return model.CategoryFixedCosts
}

// mineMCC emits mcc candidates for codes seen at least MinFrequency times.
func (m *Miner) mineMCC(txns []model.Transaction) []model.Rule {
	counts := make(map[string]int)
	for _, txn := range txns {
		if txn.MCC != "" {
			counts[txn.MCC]++
		}
	}

	var rules []model.Rule
	for _, code := range sortedKeys(counts) {
		count := counts[code]
		if count < m.opts.MinFrequency {
			continue
		}
		rules = append(rules, m.candidate(
			model.MatchMCC, model.SourceMCCAnalysis,
			code, MCCCategory(code), count,
			fmt.Sprintf("MCC %s seen %d times", code, count)))
	}
	return rules
}
