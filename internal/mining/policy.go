package mining

import (
	"math"
	"strings"

	"github.com/sift-money/sift/internal/model"
)

// CategoryPolicy decides which bucket a text-derived candidate belongs
// to. The keyword heuristic is deliberately replaceable; it is a guess,
// not domain truth.
type CategoryPolicy interface {
	// Categorize picks a category for a mined pattern given the signed
	// amounts of the transactions that produced it.
	Categorize(pattern string, amounts []float64) string
}

// KeywordPolicy is the default policy: groceries and automotive spend are
// fixed costs, dining is guilt-free, and anything else defaults to
// guilt-free unless a matching transaction was large enough to look like
// a savings-goal purchase.
type KeywordPolicy struct {
	LargePurchaseThreshold float64
}

var (
	groceryKeywords = []string{
		"grocery", "groceries", "supermarket", "market", "foods", "produce",
		"butcher", "bakery", "deli", "loblaws", "safeway", "sobeys",
		"costco", "walmart", "superstore", "metro",
	}
	diningKeywords = []string{
		"restaurant", "resto", "cafe", "coffee", "espresso", "pizza",
		"sushi", "burger", "grill", "bar", "pub", "bistro", "diner",
		"starbucks", "timhortons", "mcdonalds", "doordash", "ubereats",
		"skipthedishes",
	}
	automotiveKeywords = []string{
		"gas", "fuel", "petro", "esso", "shell", "automotive", "auto",
		"tire", "lube", "parts", "carwash",
	}
)

// Categorize implements CategoryPolicy.
func (p KeywordPolicy) Categorize(pattern string, amounts []float64) string {
	switch {
	case matchesAny(pattern, groceryKeywords):
		return model.CategoryFixedCosts
	case matchesAny(pattern, diningKeywords):
		return model.CategoryGuiltFree
	case matchesAny(pattern, automotiveKeywords):
		return model.CategoryFixedCosts
	}

	threshold := p.LargePurchaseThreshold
	if threshold <= 0 {
		threshold = DefaultLargePurchaseThreshold
	}
	for _, amount := range amounts {
		if math.Abs(amount) > threshold {
			return model.CategoryShortTermSavings
		}
	}
	return model.CategoryGuiltFree
}

// matchesAny reports whether any keyword appears as a whole word of the
// pattern (or as a substring, for multi-word keywords).
func matchesAny(pattern string, keywords []string) bool {
	words := strings.Fields(pattern)
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(pattern, kw) {
				return true
			}
			continue
		}
		for _, word := range words {
			if word == kw {
				return true
			}
		}
	}
	return false
}
