package engine

import (
	"sync"
)

// DefaultHistoryCapacity bounds the rolling market cap cache to roughly one
// month of once-a-day observations.
const DefaultHistoryCapacity = 30

// HistoryCache keeps a short rolling window of observed stablecoin and total
// market cap values. It only exists as a fallback for the funding classifier
// when the external cap-history source cannot deliver. The cache is shared by
// every evaluation in the process and is safe for concurrent use; an
// Append never exposes a partially trimmed window to a concurrent Snapshot.
type HistoryCache struct {
	mu         sync.Mutex
	capacity   int
	stablecoin []float64
	total      []float64
}

// NewHistoryCache creates an empty cache holding at most capacity entries per
// series. Non-positive capacity falls back to DefaultHistoryCapacity.
func NewHistoryCache(capacity int) *HistoryCache {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryCache{
		capacity:   capacity,
		stablecoin: make([]float64, 0, capacity),
		total:      make([]float64, 0, capacity),
	}
}

// Append records one observation pair and evicts the oldest entries once the
// window exceeds capacity.
func (c *HistoryCache) Append(stablecoinCap, totalCap float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stablecoin = append(c.stablecoin, stablecoinCap)
	c.total = append(c.total, totalCap)

	if over := len(c.stablecoin) - c.capacity; over > 0 {
		c.stablecoin = append(c.stablecoin[:0], c.stablecoin[over:]...)
		c.total = append(c.total[:0], c.total[over:]...)
	}
}

// Snapshot returns copies of both series, oldest first.
func (c *HistoryCache) Snapshot() (stablecoin, total []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stablecoin = make([]float64, len(c.stablecoin))
	copy(stablecoin, c.stablecoin)
	total = make([]float64, len(c.total))
	copy(total, c.total)
	return stablecoin, total
}

// Len reports how many observation pairs the cache currently holds.
func (c *HistoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stablecoin)
}
