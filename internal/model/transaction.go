// Package model defines the core data structures for the sift application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// CategorySource indicates how a transaction's category was assigned.
type CategorySource string

// Category source constants.
const (
	CategorySourceRule   CategorySource = "rule"
	CategorySourceManual CategorySource = "manual"
	CategorySourceNone   CategorySource = "none"
)

// RuleType identifies which class of rule claimed a transaction.
type RuleType string

// Rule type constants.
const (
	RuleTypeUser           RuleType = "user_rule"
	RuleTypeAutogen        RuleType = "autogen_rule"
	RuleTypeSystem         RuleType = "system_rule"
	RuleTypeManualOverride RuleType = "manual_override"
	RuleTypeNone           RuleType = "none"
)

// Transaction represents a single imported bank or credit-card transaction.
// The hash is the stable identity across categorization passes; only the
// category fields change after import.
type Transaction struct {
	Date            time.Time
	Hash            string
	Name            string // Raw merchant/payee text from the statement
	Description     string // Free-text description, may be empty
	AccountID       string
	MCC             string // Merchant category code, optional
	MerchantID      string // Acquirer merchant identifier, optional
	Category        string
	CategorySource  CategorySource
	CategoryExplain string
	RuleType        RuleType
	Labels          []string
	Amount          float64 // Signed; negative for outflows
	RuleID          int
	Inflow          bool
	ManualOverride  bool
}

// GenerateHash creates a content hash used as the transaction identity
// and for duplicate detection on import.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Name,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// AbsAmount returns the unsigned transaction amount.
func (t *Transaction) AbsAmount() float64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}
