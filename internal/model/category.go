package model

// Spending categories. The set is static: every dollar lands in one of
// the three buckets.
const (
	CategoryFixedCosts       = "fixed_costs"
	CategoryGuiltFree        = "guilt_free"
	CategoryShortTermSavings = "short_term_savings"
)

// Categories returns the full category set in display order.
func Categories() []string {
	return []string{CategoryFixedCosts, CategoryGuiltFree, CategoryShortTermSavings}
}

// ValidCategory reports whether name is one of the known categories.
// Rules referencing unknown categories are still applied verbatim; this
// is for UI-facing validation only.
func ValidCategory(name string) bool {
	switch name {
	case CategoryFixedCosts, CategoryGuiltFree, CategoryShortTermSavings:
		return true
	}
	return false
}
