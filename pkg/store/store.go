// Package store holds the in-memory question/answer cache.
//
// One Store instance is authoritative for one deployment process. It is
// reset only by Clear or a process restart; cross-process consistency is
// the sync gateway's job and is eventually consistent.
package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/askcache-io/askcache/pkg/models"
	"github.com/askcache-io/askcache/pkg/normalize"
	"github.com/askcache-io/askcache/pkg/similarity"
)

var (
	// ErrEmptyKey is returned when a question or answer is empty after
	// trimming.
	ErrEmptyKey = errors.New("store: empty question or answer")
	// ErrNotFound is returned when a key is not in the store.
	ErrNotFound = errors.New("store: question not found")
)

// Store maps trimmed question strings to records and answers exact and
// approximate lookups. All methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	records  map[string]*models.QuestionRecord
	norm     *normalize.Normalizer
	scorer   similarity.Scorer
	onChange func()
}

// New creates an empty Store using the given normalizer and scorer for
// approximate lookups.
func New(norm *normalize.Normalizer, scorer similarity.Scorer) *Store {
	return &Store{
		records: make(map[string]*models.QuestionRecord),
		norm:    norm,
		scorer:  scorer,
	}
}

// SetOnChange registers a hook called after every mutation. The sync
// gateway uses it to schedule persistence; failures there never roll back
// the in-memory change.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Scorer returns the similarity scorer the store matches with.
func (s *Store) Scorer() similarity.Scorer {
	return s.scorer
}

// ExactLookup returns the record stored under the identical trimmed key.
func (s *Store) ExactLookup(question string) (models.QuestionRecord, bool) {
	key := strings.TrimSpace(question)

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return models.QuestionRecord{}, false
	}
	return *rec, true
}

// ApproximateLookup normalizes the question, scores it against every
// stored key, and returns the best match at or above the scorer's
// threshold. Ties are broken by the most recently used record. This is a
// linear scan over all records; fine for small stores, callers needing
// scale should put an indexed prefilter in front.
func (s *Store) ApproximateLookup(question string) (models.Match, bool) {
	normalized := s.norm.Normalize(question)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best      *models.QuestionRecord
		bestScore float64
	)
	for key, rec := range s.records {
		score := s.scorer.Score(normalized, s.norm.Normalize(key))
		if score < s.scorer.Threshold() {
			continue
		}
		switch {
		case best == nil, score > bestScore:
			best, bestScore = rec, score
		case score == bestScore && rec.Touched().After(best.Touched()):
			best = rec
		}
	}
	if best == nil {
		return models.Match{}, false
	}
	return models.Match{Record: *best, Similarity: bestScore}, true
}

// Upsert stores an answer under the trimmed question. A new key gets a
// fresh record; an existing key keeps its CreatedAt and usage counters and
// has Answer and UpdatedAt overwritten. Returns the resulting record and
// whether the key was new.
func (s *Store) Upsert(question, answer string) (models.QuestionRecord, bool, error) {
	key := strings.TrimSpace(question)
	ans := strings.TrimSpace(answer)
	if key == "" || ans == "" {
		return models.QuestionRecord{}, false, ErrEmptyKey
	}

	now := time.Now().UTC()

	s.mu.Lock()
	rec, ok := s.records[key]
	if ok {
		rec.Answer = ans
		rec.UpdatedAt = now
	} else {
		rec = &models.QuestionRecord{
			OriginalQuestion: key,
			Answer:           ans,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		s.records[key] = rec
	}
	out := *rec
	s.mu.Unlock()

	s.notify()
	return out, !ok, nil
}

// RecordHit marks a cache hit on the record stored under the given key,
// bumping its usage count and last-used time.
func (s *Store) RecordHit(question string) (models.QuestionRecord, error) {
	key := strings.TrimSpace(question)

	s.mu.Lock()
	rec, ok := s.records[key]
	if !ok {
		s.mu.Unlock()
		return models.QuestionRecord{}, ErrNotFound
	}
	now := time.Now().UTC()
	rec.UsageCount++
	rec.LastUsed = &now
	out := *rec
	s.mu.Unlock()

	s.notify()
	return out, nil
}

// Delete removes the record stored under the exact trimmed key.
func (s *Store) Delete(question string) error {
	key := strings.TrimSpace(question)

	s.mu.Lock()
	if _, ok := s.records[key]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.records, key)
	s.mu.Unlock()

	s.notify()
	return nil
}

// Clear empties the store and returns how many records were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	n := len(s.records)
	s.records = make(map[string]*models.QuestionRecord)
	s.mu.Unlock()

	s.notify()
	return n
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// TotalUsage returns the sum of usage counts across all records.
func (s *Store) TotalUsage() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum int64
	for _, rec := range s.records {
		sum += rec.UsageCount
	}
	return sum
}

// ListByUsage returns all records ordered by usage count descending, for
// administrative listings.
func (s *Store) ListByUsage() []models.QuestionRecord {
	out := s.copyAll()
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].Touched().After(out[j].Touched())
	})
	return out
}

// ListByRecency returns all records ordered by most recent activity
// (last used, falling back to creation time) descending, for display.
func (s *Store) ListByRecency() []models.QuestionRecord {
	out := s.copyAll()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Touched().After(out[j].Touched())
	})
	return out
}

func (s *Store) copyAll() []models.QuestionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.QuestionRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	return out
}

// Pairs returns the store contents as sync payload pairs, ordered by
// recency for stable output.
func (s *Store) Pairs() []models.CachePair {
	recs := s.ListByRecency()
	pairs := make([]models.CachePair, 0, len(recs))
	for _, rec := range recs {
		pairs = append(pairs, models.CachePair{Question: rec.OriginalQuestion, Record: rec})
	}
	return pairs
}

// Restore replaces the store contents from persisted pairs. Entries with
// an empty trimmed question are dropped. The change hook is not invoked:
// restoring is how persisted state gets in, not a new mutation.
func (s *Store) Restore(pairs []models.CachePair) {
	records := make(map[string]*models.QuestionRecord, len(pairs))
	for _, p := range pairs {
		key := strings.TrimSpace(p.Question)
		if key == "" {
			continue
		}
		rec := p.Record
		rec.OriginalQuestion = key
		records[key] = &rec
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}
