package mining

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sift-money/sift/internal/model"
)

func TestKeywordPolicy_Categorize(t *testing.T) {
	policy := KeywordPolicy{LargePurchaseThreshold: 200}

	tests := []struct {
		name    string
		pattern string
		amounts []float64
		want    string
	}{
		{"grocery keyword", "farm boy supermarket", []float64{-80}, model.CategoryFixedCosts},
		{"dining keyword", "corner cafe", []float64{-6}, model.CategoryGuiltFree},
		{"automotive keyword", "petro canada", []float64{-65}, model.CategoryFixedCosts},
		{"default small spend", "hobby shop", []float64{-25, -30}, model.CategoryGuiltFree},
		{"large purchase looks like a savings goal", "furniture place", []float64{-45, -850}, model.CategoryShortTermSavings},
		{"keyword must be a whole word", "gasworks museum", []float64{-15}, model.CategoryGuiltFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Categorize(tt.pattern, tt.amounts))
		})
	}
}

func TestKeywordPolicy_ZeroThresholdFallsBack(t *testing.T) {
	policy := KeywordPolicy{}
	got := policy.Categorize("furniture place", []float64{-250})
	assert.Equal(t, model.CategoryShortTermSavings, got)
}

func TestMCCCategory(t *testing.T) {
	assert.Equal(t, model.CategoryGuiltFree, MCCCategory("5812"))
	assert.Equal(t, model.CategoryFixedCosts, MCCCategory("4900"))
	assert.Equal(t, model.CategoryShortTermSavings, MCCCategory("4511"))
	assert.Equal(t, model.CategoryFixedCosts, MCCCategory("0000"), "unknown codes default to fixed costs")
}
