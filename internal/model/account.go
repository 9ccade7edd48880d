package model

// Account holds read-only account metadata. The categorization engine
// only consults it for optional rule scope constraints.
type Account struct {
	ID          string
	Name        string
	Institution string
	Type        string // e.g. checking, savings, credit
}
