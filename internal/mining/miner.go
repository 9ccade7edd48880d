// Package mining discovers candidate categorization rules from transaction
// history: token frequency, store-number patterns, MCC and merchant-ID
// frequency, recurring payments, and marketplace sub-categorization.
package mining

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sift-money/sift/internal/model"
	"github.com/sift-money/sift/internal/normalize"
)

// Mining defaults.
const (
	DefaultMinFrequency           = 2
	DefaultLargePurchaseThreshold = 200.0
)

// Options configures a mining pass.
type Options struct {
	// Policy decides the category for text-derived candidates. Defaults
	// to KeywordPolicy.
	Policy CategoryPolicy
	// Now stamps candidate timestamps; defaults to time.Now.
	Now func() time.Time
	// MinFrequency is the minimum occurrences before a token, MCC, or
	// merchant ID becomes a candidate.
	MinFrequency int
	// LargePurchaseThreshold feeds the default keyword policy.
	LargePurchaseThreshold float64
}

func (o Options) withDefaults() Options {
	if o.MinFrequency <= 0 {
		o.MinFrequency = DefaultMinFrequency
	}
	if o.LargePurchaseThreshold <= 0 {
		o.LargePurchaseThreshold = DefaultLargePurchaseThreshold
	}
	if o.Policy == nil {
		o.Policy = KeywordPolicy{LargePurchaseThreshold: o.LargePurchaseThreshold}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Miner derives candidate rules from a transaction batch.
type Miner struct {
	opts Options
}

// NewMiner creates a miner with the given options.
func NewMiner(opts Options) *Miner {
	return &Miner{opts: opts.withDefaults()}
}

// MineRules runs the full mining pipeline: pattern mining, priority
// scoring, exception generation, and conflict resolution. The result is
// the surviving candidate set, each with ActualMatches > 0, ready to be
// offered for acceptance.
func MineRules(txns []model.Transaction, opts Options) []model.Rule {
	candidates := NewMiner(opts).Mine(txns)
	candidates = Score(candidates)
	candidates = append(candidates, Exceptions(candidates)...)
	return Resolve(candidates, txns)
}

// Mine returns raw candidates from all analyses. Finding nothing is not
// an error; the candidate list is simply empty. Inputs are not mutated.
func (m *Miner) Mine(txns []model.Transaction) []model.Rule {
	if len(txns) == 0 {
		return nil
	}

	cache := normalize.NewCache()

	var candidates []model.Rule
	candidates = append(candidates, m.mineFrequency(txns, cache)...)
	candidates = append(candidates, m.mineStorePatterns(txns, cache)...)
	candidates = append(candidates, m.mineMCC(txns)...)
	candidates = append(candidates, m.mineMerchantIDs(txns, cache)...)
	candidates = append(candidates, m.mineRecurring(txns, cache)...)
	candidates = append(candidates, m.mineMarketplaces(txns)...)
	return candidates
}

// candidate builds a provisional rule with the shared mining defaults.
func (m *Miner) candidate(matchType model.MatchType, source model.RuleSource, pattern, category string, support int, explain string) model.Rule {
	now := m.opts.Now()
	return model.Rule{
		MatchType:   matchType,
		Source:      source,
		Pattern:     pattern,
		Category:    category,
		Support:     support,
		Explanation: explain,
		Enabled:     true,
		Applied:     false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type textStat struct {
	amounts []float64
	count   int
}

// mineFrequency turns frequent tokens and 2-/3-grams of normalized
// merchant text into contains candidates.
func (m *Miner) mineFrequency(txns []model.Transaction, cache *normalize.Cache) []model.Rule {
	stats := make(map[string]*textStat)
	for _, txn := range txns {
		norm := cache.Normalize(txn.Name)
		if norm == "" {
			continue
		}
		for token := range tokenSet(norm) {
			stat := stats[token]
			if stat == nil {
				stat = &textStat{}
				stats[token] = stat
			}
			stat.count++
			stat.amounts = append(stat.amounts, txn.Amount)
		}
	}

	var rules []model.Rule
	for _, token := range sortedKeys(stats) {
		stat := stats[token]
		if stat.count < m.opts.MinFrequency {
			continue
		}
		rules = append(rules, m.candidate(
			model.MatchContains, model.SourceFrequencyAnalysis,
			token, m.opts.Policy.Categorize(token, stat.amounts), stat.count,
			fmt.Sprintf("%q appears in %d transactions", token, stat.count)))
	}
	return rules
}

// tokenSet returns the unigrams, bigrams, and trigrams of normalized
// merchant text, deduplicated per transaction.
func tokenSet(norm string) map[string]struct{} {
	words := strings.Fields(norm)
	tokens := make(map[string]struct{})
	for i, word := range words {
		if len(word) >= 3 && !stopwords[word] && !allDigits(word) {
			tokens[word] = struct{}{}
		}
		if i+1 < len(words) {
			tokens[words[i]+" "+words[i+1]] = struct{}{}
		}
		if i+2 < len(words) {
			tokens[words[i]+" "+words[i+1]+" "+words[i+2]] = struct{}{}
		}
	}
	return tokens
}

var stopwords = map[string]bool{
	"the": true, "and": true, "inc": true, "ltd": true, "llc": true,
	"corp": true, "intl": true, "online": true, "www": true, "com": true,
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// storeNumberRe matches raw names of the form "<brand> #1234".
var storeNumberRe = regexp.MustCompile(`^([a-z][a-z\s&'.]*[a-z])\s*#?\s*(\d{2,6})$`)

// mineStorePatterns emits one anchored regex candidate per brand whose
// raw name carries a store number, so all outlets of the chain match.
func (m *Miner) mineStorePatterns(txns []model.Transaction, cache *normalize.Cache) []model.Rule {
	stats := make(map[string]*textStat)
	for _, txn := range txns {
		parts := storeNumberRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(txn.Name)))
		if parts == nil {
			continue
		}
		brand := cache.Normalize(parts[1])
		if brand == "" {
			continue
		}
		stat := stats[brand]
		if stat == nil {
			stat = &textStat{}
			stats[brand] = stat
		}
		stat.count++
		stat.amounts = append(stat.amounts, txn.Amount)
	}

	var rules []model.Rule
	for _, brand := range sortedKeys(stats) {
		stat := stats[brand]
		pattern := "^" + regexp.QuoteMeta(brand) + `(\s*\d+)?$`
		rules = append(rules, m.candidate(
			model.MatchRegex, model.SourceStorePattern,
			pattern, m.opts.Policy.Categorize(brand, stat.amounts), stat.count,
			fmt.Sprintf("Store-numbered outlets of %q", brand)))
	}
	return rules
}

// mineMerchantIDs emits exact candidates for merchant IDs seen at least
// MinFrequency times, keyed on the merchant's normalized name.
func (m *Miner) mineMerchantIDs(txns []model.Transaction, cache *normalize.Cache) []model.Rule {
	type midStat struct {
		name    string
		amounts []float64
		count   int
	}
	stats := make(map[string]*midStat)
	for _, txn := range txns {
		if txn.MerchantID == "" {
			continue
		}
		stat := stats[txn.MerchantID]
		if stat == nil {
			stat = &midStat{name: cache.Normalize(txn.Name)}
			stats[txn.MerchantID] = stat
		}
		stat.count++
		stat.amounts = append(stat.amounts, txn.Amount)
	}

	var rules []model.Rule
	for _, mid := range sortedKeys(stats) {
		stat := stats[mid]
		if stat.count < m.opts.MinFrequency || stat.name == "" {
			continue
		}
		rules = append(rules, m.candidate(
			model.MatchExact, model.SourceMerchantIDAnalysis,
			stat.name, m.opts.Policy.Categorize(stat.name, stat.amounts), stat.count,
			fmt.Sprintf("Merchant ID %s seen %d times", mid, stat.count)))
	}
	return rules
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
