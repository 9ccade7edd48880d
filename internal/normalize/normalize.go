// Package normalize canonicalizes merchant text so that rule matching and
// rule mining see the same stable form of a merchant regardless of the
// statement noise around it.
package normalize

import (
	"regexp"
	"strings"
)

// Normalized pairs a raw merchant string with its canonical form. It is a
// derived value, never persisted.
type Normalized struct {
	Raw        string
	Normalized string
}

var (
	nonWord    = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespace = regexp.MustCompile(`\s+`)

	// Variable tokens stripped after punctuation removal, in order.
	// Phone numbers and dates must go before the generic digit-run rule
	// so their fragments are not left behind.
	variableTokens = []*regexp.Regexp{
		regexp.MustCompile(`\bref\s?\d+\b`),               // ref:#1234
		regexp.MustCompile(`\b\d{3}\s?\d{3}\s?\d{4}\b`),   // phone numbers
		regexp.MustCompile(`\b\d{1,4}\s\d{1,2}\s\d{2,4}\b`), // dates
		regexp.MustCompile(`\b\d+\s\d{2}\b`),              // dollar amounts ("5 50")
		regexp.MustCompile(`\b\d{3,}\b`),                  // store/reference numbers
	}

	// Payment-rail words that carry no merchant information. Longest
	// alternatives first so "visa debit" wins over "visa".
	noiseWords = regexp.MustCompile(`\b(visa debit|bill payment|pre authorized|e transfer|mastercard|interac|paybill|visa|amex|debit|credit|pos|atm|eft|ach)\b`)

	// Known brand variants collapsed to a single token so that
	// "McDonald's" and "MCDONALDS" mine and match identically.
	brandAliases = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`\bmc\s?donald\s?s\b`), "mcdonalds"},
		{regexp.MustCompile(`\btim\s?hortons?\b`), "timhortons"},
		{regexp.MustCompile(`\bstar\s?bucks\b`), "starbucks"},
		{regexp.MustCompile(`\bwal\s?mart\b`), "walmart"},
		{regexp.MustCompile(`\bhome\s?depot\b`), "homedepot"},
		{regexp.MustCompile(`\bcanadian\s?tire\b`), "canadiantire"},
		{regexp.MustCompile(`\bshoppers\s?drug\s?mart\b`), "shoppersdrugmart"},
		{regexp.MustCompile(`\b7\s?eleven\b`), "7eleven"},
		{regexp.MustCompile(`\bamazon(\s(ca|com|mktp|mktplace|payments))*\b`), "amazon"},
		{regexp.MustCompile(`\bamzn(\s(ca|com|mktp|mktplace|payments))*\b`), "amazon"},
		{regexp.MustCompile(`\bpay\s?pal\b`), "paypal"},
	}
)

// Merchant canonicalizes raw merchant text. It is pure and idempotent:
// normalizing an already-normalized string returns it unchanged.
// Degenerate input yields an empty normalized string.
func Merchant(raw string) Normalized {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = nonWord.ReplaceAllString(s, " ")
	s = collapse(s)

	for _, re := range variableTokens {
		s = re.ReplaceAllString(s, " ")
	}
	s = collapse(s)

	s = noiseWords.ReplaceAllString(s, " ")
	for _, alias := range brandAliases {
		s = alias.re.ReplaceAllString(s, alias.repl)
	}
	s = collapse(s)

	return Normalized{Raw: raw, Normalized: s}
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
