package mining

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sift-money/sift/internal/model"
)

// Marketplaces bundle many merchants behind one descriptor. When a known
// sub-keyword shows up inside a marketplace charge, it is a better
// categorization signal than the marketplace itself.
type marketplace struct {
	pattern  *regexp.Regexp // tested against the raw statement text
	name     string
	keywords []marketplaceKeyword
}

type marketplaceKeyword struct {
	keyword  string
	category string
}

var marketplaces = []marketplace{
	{
		name:    "amazon",
		pattern: regexp.MustCompile(`(?i)\b(amazon|amzn)\b`),
		keywords: []marketplaceKeyword{
			{"kindle", model.CategoryGuiltFree},
			{"prime", model.CategoryFixedCosts},
			{"audible", model.CategoryGuiltFree},
			{"fresh", model.CategoryFixedCosts},
		},
	},
	{
		name:    "paypal",
		pattern: regexp.MustCompile(`(?i)\bpaypal\b|\bpp\s?\*`),
		keywords: []marketplaceKeyword{
			{"spotify", model.CategoryGuiltFree},
			{"netflix", model.CategoryGuiltFree},
			{"patreon", model.CategoryGuiltFree},
			{"ebay", model.CategoryGuiltFree},
		},
	},
	{
		name:    "square",
		pattern: regexp.MustCompile(`(?i)\bsq\s?\*|\bsquare\b`),
		keywords: []marketplaceKeyword{
			{"coffee", model.CategoryGuiltFree},
			{"cafe", model.CategoryGuiltFree},
			{"market", model.CategoryFixedCosts},
		},
	},
	{
		name:    "stripe",
		pattern: regexp.MustCompile(`(?i)\bstripe\b`),
		keywords: []marketplaceKeyword{
			{"gym", model.CategoryFixedCosts},
			{"club", model.CategoryGuiltFree},
		},
	},
}

// mineMarketplaces emits keyword-specific contains candidates for
// marketplace charges whose text reveals what was actually bought.
func (m *Miner) mineMarketplaces(txns []model.Transaction) []model.Rule {
	type hit struct {
		category string
		source   string
		count    int
	}
	hits := make(map[string]*hit)
	for _, txn := range txns {
		text := strings.ToLower(txn.Name + " " + txn.Description)
		for _, mp := range marketplaces {
			if !mp.pattern.MatchString(txn.Name) && !mp.pattern.MatchString(txn.Description) {
				continue
			}
			for _, kw := range mp.keywords {
				if !strings.Contains(text, kw.keyword) {
					continue
				}
				h := hits[kw.keyword]
				if h == nil {
					h = &hit{category: kw.category, source: mp.name}
					hits[kw.keyword] = h
				}
				h.count++
			}
		}
	}

	var rules []model.Rule
	for _, keyword := range sortedKeys(hits) {
		h := hits[keyword]
		rules = append(rules, m.candidate(
			model.MatchContains, model.SourceMarketplace,
			keyword, h.category, h.count,
			fmt.Sprintf("%q purchases via %s", keyword, h.source)))
	}
	return rules
}
