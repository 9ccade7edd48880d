package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_GenerateHash(t *testing.T) {
	txn := Transaction{
		Date:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Name:      "STARBUCKS #1234",
		AccountID: "chequing",
		Amount:    -5.75,
	}

	hash := txn.GenerateHash()
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, txn.GenerateHash(), "hash is stable")

	// Any identity field change produces a different hash.
	changed := txn
	changed.Amount = -5.76
	assert.NotEqual(t, hash, changed.GenerateHash())

	changed = txn
	changed.Date = txn.Date.AddDate(0, 0, 1)
	assert.NotEqual(t, hash, changed.GenerateHash())

	changed = txn
	changed.AccountID = "savings"
	assert.NotEqual(t, hash, changed.GenerateHash())

	// Category fields are not part of identity.
	categorized := txn
	categorized.Category = CategoryGuiltFree
	categorized.CategorySource = CategorySourceRule
	assert.Equal(t, hash, categorized.GenerateHash())
}

func TestTransaction_AbsAmount(t *testing.T) {
	outflow := Transaction{Amount: -5.75}
	assert.Equal(t, 5.75, outflow.AbsAmount())

	inflow := Transaction{Amount: 2500.0}
	assert.Equal(t, 2500.0, inflow.AbsAmount())
}

func TestRuleSource_RuleType(t *testing.T) {
	assert.Equal(t, RuleTypeUser, SourceUserCreated.RuleType())
	assert.Equal(t, RuleTypeSystem, SourceSystem.RuleType())
	for _, source := range []RuleSource{
		SourceFrequencyAnalysis, SourceStorePattern, SourceMCCAnalysis,
		SourceMerchantIDAnalysis, SourceRecurringAnalysis,
		SourceMarketplace, SourceExceptionAnalysis,
	} {
		assert.Equal(t, RuleTypeAutogen, source.RuleType(), "source %s", source)
	}
}

func TestValidMatchType(t *testing.T) {
	for _, mt := range []string{"exact", "contains", "regex", "mcc", "inflow"} {
		assert.True(t, ValidMatchType(mt), "match type %s", mt)
	}
	assert.False(t, ValidMatchType("glob"))
	assert.False(t, ValidMatchType(""))
}

func TestValidCategory(t *testing.T) {
	for _, cat := range Categories() {
		assert.True(t, ValidCategory(cat))
	}
	assert.False(t, ValidCategory("misc"))
	assert.False(t, ValidCategory(""))
}
