package mining

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sift-money/sift/internal/model"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		rule model.Rule
		want int
	}{
		{
			name: "exact merchant-id rule",
			rule: model.Rule{
				MatchType: model.MatchExact,
				Source:    model.SourceMerchantIDAnalysis,
				Pattern:   "corner cafe",
				Support:   4,
			},
			// 50 base + 50 exact + 8 support + 22 length + 20 source
			want: 150,
		},
		{
			name: "single-word contains rule",
			rule: model.Rule{
				MatchType: model.MatchContains,
				Source:    model.SourceFrequencyAnalysis,
				Pattern:   "starbucks",
				Support:   2,
			},
			// 50 base + 10 contains + 4 support + 18 length + 5 words
			want: 87,
		},
		{
			name: "support bonus is capped",
			rule: model.Rule{
				MatchType: model.MatchContains,
				Source:    model.SourceFrequencyAnalysis,
				Pattern:   "gym",
				Support:   500,
			},
			// 50 base + 10 contains + 20 support cap + 6 length + 5 words
			want: 91,
		},
		{
			name: "length and word bonuses are capped",
			rule: model.Rule{
				MatchType: model.MatchContains,
				Source:    model.SourceFrequencyAnalysis,
				Pattern:   "a very long pattern with many words in it",
				Support:   1,
			},
			// 50 base + 10 contains + 2 support + 30 length cap + 25 word cap
			want: 117,
		},
		{
			name: "mcc rule",
			rule: model.Rule{
				MatchType: model.MatchMCC,
				Source:    model.SourceMCCAnalysis,
				Pattern:   "5812",
				Support:   10,
			},
			// 50 base + 40 mcc + 20 support cap + 8 length + 25 source
			want: 143,
		},
		{
			name: "user-created rule outranks equivalent mined rule",
			rule: model.Rule{
				MatchType: model.MatchContains,
				Source:    model.SourceUserCreated,
				Pattern:   "starbucks",
				Support:   2,
			},
			// same as the frequency rule plus the user bonus
			want: 187,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scored := Score([]model.Rule{tt.rule})
			assert.Equal(t, tt.want, scored[0].Priority)
		})
	}
}

func TestScore_DoesNotMutateInput(t *testing.T) {
	rules := []model.Rule{
		{MatchType: model.MatchContains, Pattern: "starbucks", Support: 2},
	}
	_ = Score(rules)
	assert.Zero(t, rules[0].Priority)
}

func TestScore_Idempotent(t *testing.T) {
	rules := []model.Rule{
		{MatchType: model.MatchExact, Source: model.SourceMerchantIDAnalysis, Pattern: "corner cafe", Support: 4},
		{MatchType: model.MatchMCC, Source: model.SourceMCCAnalysis, Pattern: "5812", Support: 3},
	}
	once := Score(rules)
	twice := Score(once)
	assert.Equal(t, once, twice)
}
