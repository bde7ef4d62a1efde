// Package stats tracks hit/miss/call counters for the cache.
package stats

import (
	"sync"
	"time"

	"github.com/askcache-io/askcache/pkg/models"
)

// Tracker holds the usage counters for one deployment instance. All
// methods are safe for concurrent use. Counters never go below zero.
type Tracker struct {
	mu          sync.Mutex
	total       int64
	hits        int64
	apiCalls    int64
	lastUpdated time.Time
}

// New returns a zeroed Tracker.
func New() *Tracker {
	return &Tracker{}
}

// IncTotalQuestions counts one more question.
func (t *Tracker) IncTotalQuestions() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	t.lastUpdated = time.Now().UTC()
}

// DecTotalQuestions uncounts a question, used when a stored question is
// deleted. Floors at zero.
func (t *Tracker) DecTotalQuestions() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.total > 0 {
		t.total--
	}
	t.lastUpdated = time.Now().UTC()
}

// IncCacheHits counts one query resolved from the cache.
func (t *Tracker) IncCacheHits() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hits++
	t.lastUpdated = time.Now().UTC()
}

// IncAPICalls counts one call to the external answer capability.
func (t *Tracker) IncAPICalls() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.apiCalls++
	t.lastUpdated = time.Now().UTC()
}

// Snapshot returns a point-in-time copy of the counters.
func (t *Tracker) Snapshot() models.StatsSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.StatsSnapshot{
		TotalQuestions: t.total,
		CacheHits:      t.hits,
		APICalls:       t.apiCalls,
		LastUpdated:    t.lastUpdated,
	}
}

// Reset zeroes all counters.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total, t.hits, t.apiCalls = 0, 0, 0
	t.lastUpdated = time.Now().UTC()
}

// Restore overwrites the counters from a persisted snapshot.
func (t *Tracker) Restore(s models.StatsSnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = s.TotalQuestions
	t.hits = s.CacheHits
	t.apiCalls = s.APICalls
	t.lastUpdated = s.LastUpdated
}
