package model

import "time"

// MatchType is the strategy a rule uses to test a transaction.
type MatchType string

// Match type constants.
const (
	MatchExact    MatchType = "exact"
	MatchContains MatchType = "contains"
	MatchRegex    MatchType = "regex"
	MatchMCC      MatchType = "mcc"
	MatchInflow   MatchType = "inflow"
)

// ValidMatchType reports whether s is a recognized match type.
func ValidMatchType(s string) bool {
	switch MatchType(s) {
	case MatchExact, MatchContains, MatchRegex, MatchMCC, MatchInflow:
		return true
	}
	return false
}

// RuleSource indicates how a rule was created.
type RuleSource string

// Rule source constants.
const (
	SourceUserCreated        RuleSource = "user_created"
	SourceFrequencyAnalysis  RuleSource = "frequency_analysis"
	SourceStorePattern       RuleSource = "store_pattern"
	SourceMCCAnalysis        RuleSource = "mcc_analysis"
	SourceMerchantIDAnalysis RuleSource = "merchant_id_analysis"
	SourceRecurringAnalysis  RuleSource = "recurring_analysis"
	SourceMarketplace        RuleSource = "marketplace_analysis"
	SourceExceptionAnalysis  RuleSource = "exception_analysis"
	SourceSystem             RuleSource = "system"
)

// RuleType maps a rule source to the rule type recorded on claimed
// transactions. Everything mined is an autogen rule.
func (s RuleSource) RuleType() RuleType {
	switch s {
	case SourceUserCreated:
		return RuleTypeUser
	case SourceSystem:
		return RuleTypeSystem
	default:
		return RuleTypeAutogen
	}
}

// RuleScope holds the optional constraints that narrow where a rule
// applies. Fields are nullable-but-present; the zero value means
// unconstrained.
type RuleScope struct {
	StartDate   *time.Time
	EndDate     *time.Time
	MinAmount   *float64
	MaxAmount   *float64
	AccountID   string
	InflowOnly  bool
	OutflowOnly bool
}

// Rule categorizes transactions whose text, MCC, or direction matches its
// pattern. Higher priority wins; user_created and system rules are
// authoritative, mined rules are provisional until accepted.
type Rule struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Amount        *float64 // Specific amount for recurring-payment rules
	Pattern       string
	Category      string
	Explanation   string
	MatchType     MatchType
	Source        RuleSource
	Scope         RuleScope
	Labels        []string
	ID            int
	Priority      int
	Support       int // Number of transactions backing a mined rule
	ActualMatches int // Set by conflict resolution
	Coverage      float64
	UseCount      int
	Enabled       bool
	Applied       bool
}
