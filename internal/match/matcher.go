// Package match evaluates categorization rules against transactions.
package match

import (
	"math"
	"regexp"
	"strings"

	"github.com/sift-money/sift/internal/model"
	"github.com/sift-money/sift/internal/normalize"
)

// recurringTolerance is how far a transaction amount may drift from a
// recurring rule's stored amount and still match.
const recurringTolerance = 0.01

// Matcher tests rules against transactions for one batch. It owns the
// batch normalization cache and a compiled-regex memo so normalization
// and compilation happen once per distinct string, not per rule×transaction
// pair.
type Matcher struct {
	cache    *normalize.Cache
	regexps  map[string]*regexp.Regexp
	accounts map[string]model.Account
}

// NewMatcher creates a matcher for one batch. cache may be nil, in which
// case a private cache is created. accounts is an optional read-only
// lookup used for account scope constraints.
func NewMatcher(cache *normalize.Cache, accounts map[string]model.Account) *Matcher {
	if cache == nil {
		cache = normalize.NewCache()
	}
	return &Matcher{
		cache:    cache,
		regexps:  make(map[string]*regexp.Regexp),
		accounts: accounts,
	}
}

// Matches reports whether rule claims txn. Scope constraints are AND-ed
// with the match-type test. An invalid regex pattern silently never
// matches; a batch is never aborted by one malformed rule.
func (m *Matcher) Matches(rule model.Rule, txn model.Transaction) bool {
	if !m.matchesScope(rule, txn) {
		return false
	}

	// Recurring rules carry the specific amount they were mined from;
	// other amounts from the same merchant must not be claimed.
	if rule.Source == model.SourceRecurringAnalysis && rule.Amount != nil {
		if math.Abs(txn.AbsAmount()-*rule.Amount) > recurringTolerance {
			return false
		}
	}

	switch rule.MatchType {
	case model.MatchExact:
		return m.matchesExact(rule, txn)
	case model.MatchContains:
		return m.matchesContains(rule, txn)
	case model.MatchRegex:
		return m.matchesRegex(rule, txn)
	case model.MatchMCC:
		return rule.Pattern != "" && rule.Pattern == txn.MCC
	case model.MatchInflow:
		return txn.Inflow
	}
	return false
}

func (m *Matcher) matchesExact(rule model.Rule, txn model.Transaction) bool {
	pattern := m.cache.Normalize(rule.Pattern)
	if pattern == "" {
		return false
	}
	return m.cache.Normalize(txn.Name) == pattern ||
		m.cache.Normalize(txn.Description) == pattern
}

func (m *Matcher) matchesContains(rule model.Rule, txn model.Transaction) bool {
	pattern := m.cache.Normalize(rule.Pattern)
	if pattern == "" {
		return false
	}
	return strings.Contains(m.cache.Normalize(txn.Name), pattern) ||
		strings.Contains(m.cache.Normalize(txn.Description), pattern)
}

func (m *Matcher) matchesRegex(rule model.Rule, txn model.Transaction) bool {
	re, ok := m.regexps[rule.Pattern]
	if !ok {
		// Compiled case-insensitively against normalized text; a nil
		// entry records an invalid pattern.
		re, _ = regexp.Compile("(?i)" + rule.Pattern)
		m.regexps[rule.Pattern] = re
	}
	if re == nil {
		return false
	}
	if name := m.cache.Normalize(txn.Name); name != "" && re.MatchString(name) {
		return true
	}
	if desc := m.cache.Normalize(txn.Description); desc != "" && re.MatchString(desc) {
		return true
	}
	return false
}

// matchesScope checks the optional AND-ed scope constraints.
func (m *Matcher) matchesScope(rule model.Rule, txn model.Transaction) bool {
	scope := rule.Scope

	if scope.AccountID != "" {
		if txn.AccountID != scope.AccountID {
			return false
		}
		if m.accounts != nil {
			if _, ok := m.accounts[scope.AccountID]; !ok {
				return false
			}
		}
	}
	if scope.StartDate != nil && txn.Date.Before(*scope.StartDate) {
		return false
	}
	if scope.EndDate != nil && txn.Date.After(*scope.EndDate) {
		return false
	}
	if scope.MinAmount != nil && txn.AbsAmount() < *scope.MinAmount {
		return false
	}
	if scope.MaxAmount != nil && txn.AbsAmount() > *scope.MaxAmount {
		return false
	}
	if scope.InflowOnly && !txn.Inflow {
		return false
	}
	if scope.OutflowOnly && txn.Inflow {
		return false
	}
	return true
}
