// Package engine orchestrates a question through the cache and, on a
// miss, the external answer capability.
package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/askcache-io/askcache/pkg/answer"
	"github.com/askcache-io/askcache/pkg/stats"
	"github.com/askcache-io/askcache/pkg/store"
)

// ErrEmptyQuestion is returned for questions that are empty after trimming.
var ErrEmptyQuestion = errors.New("engine: empty question")

// Result is the outcome of one Ask.
type Result struct {
	Answer    string    `json:"answer"`
	FromCache bool      `json:"fromCache"`
	Timestamp time.Time `json:"timestamp"`
}

// Engine answers questions cache-first. Lookups run exact match before
// approximate match, so an exact hit always wins when both would qualify.
type Engine struct {
	store *store.Store
	stats *stats.Tracker
	keys  keyedMutex
}

// New creates an Engine over the given store and counters.
func New(st *store.Store, tr *stats.Tracker) *Engine {
	return &Engine{store: st, stats: tr}
}

// Ask resolves a question: exact lookup, then approximate lookup, then the
// external capability. Every attempt counts toward totalQuestions, hits
// toward cacheHits, upstream calls toward apiCalls. A failed upstream call
// caches nothing and leaves the store untouched.
//
// Concurrent asks for the same trimmed question are serialized so that two
// simultaneous misses do not both call upstream.
func (e *Engine) Ask(ctx context.Context, question string, fn answer.Func) (Result, error) {
	key := strings.TrimSpace(question)
	if key == "" {
		return Result{}, ErrEmptyQuestion
	}

	e.stats.IncTotalQuestions()

	unlock := e.keys.lock(key)
	defer unlock()

	if rec, ok := e.store.ExactLookup(key); ok {
		hit, err := e.store.RecordHit(rec.OriginalQuestion)
		if err != nil {
			hit = rec
		}
		e.stats.IncCacheHits()
		return Result{Answer: hit.Answer, FromCache: true, Timestamp: hit.UpdatedAt}, nil
	}

	if m, ok := e.store.ApproximateLookup(key); ok {
		log.WithField("similarity", m.Similarity).
			WithField("matched", m.Record.OriginalQuestion).
			Debug("approximate cache hit")
		hit, err := e.store.RecordHit(m.Record.OriginalQuestion)
		if err != nil {
			hit = m.Record
		}
		e.stats.IncCacheHits()
		return Result{Answer: hit.Answer, FromCache: true, Timestamp: hit.UpdatedAt}, nil
	}

	text, err := fn(ctx, key)
	if err != nil {
		return Result{}, err
	}

	rec, _, err := e.store.Upsert(key, text)
	if err != nil {
		return Result{}, err
	}
	e.stats.IncAPICalls()
	return Result{Answer: rec.Answer, FromCache: false, Timestamp: rec.UpdatedAt}, nil
}

// keyedMutex serializes work per key. Entries are reference counted and
// removed once the last holder releases, so the map does not grow with
// the cache.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
