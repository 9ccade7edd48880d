package normalize

// Cache memoizes normalization per distinct raw string within one batch.
// It is owned by the caller of an apply or mine pass and scoped to that
// call; it is not safe for concurrent use and is never shared globally.
type Cache struct {
	entries map[string]string
}

// NewCache creates an empty normalization cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Normalize returns the canonical form of raw, computing it at most once
// per distinct input.
func (c *Cache) Normalize(raw string) string {
	if n, ok := c.entries[raw]; ok {
		return n
	}
	n := Merchant(raw).Normalized
	c.entries[raw] = n
	return n
}

// Size returns the number of distinct raw strings seen so far.
func (c *Cache) Size() int {
	return len(c.entries)
}
