// Package syncer persists cache and stats state: locally to a SQLite slot
// store on every mutation, and optionally to a remote blob. Persistence is
// best effort; failures are logged and never abort the in-memory operation
// that triggered them.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/askcache-io/askcache/pkg/models"
	"github.com/askcache-io/askcache/pkg/stats"
	"github.com/askcache-io/askcache/pkg/store"
)

// Gateway moves state between the in-memory store/tracker and durable
// storage. One Gateway serves one deployment instance; remote sync across
// instances is eventually consistent, not transactional.
type Gateway struct {
	slots *SlotStore
	blob  Blob
	store *store.Store
	stats *stats.Tracker

	mu    sync.Mutex
	binID string
}

// NewGateway wires a Gateway over the given slot store, optional remote
// blob (nil disables remote sync), store and tracker.
func NewGateway(slots *SlotStore, blob Blob, st *store.Store, tr *stats.Tracker) *Gateway {
	return &Gateway{slots: slots, blob: blob, store: st, stats: tr}
}

// BinID returns the identifier of the remote blob, empty before the first
// successful push.
func (g *Gateway) BinID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.binID
}

// Load restores store contents, counters and the remote blob identifier
// from the local slots. Absent slots leave state empty.
func (g *Gateway) Load(ctx context.Context) error {
	if data, ok, err := g.slots.Get(ctx, SlotCache); err != nil {
		return err
	} else if ok {
		var pairs []models.CachePair
		if err := json.Unmarshal(data, &pairs); err != nil {
			return fmt.Errorf("decode cache slot: %w", err)
		}
		g.store.Restore(pairs)
	}

	if data, ok, err := g.slots.Get(ctx, SlotStats); err != nil {
		return err
	} else if ok {
		var snap models.StatsSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("decode stats slot: %w", err)
		}
		g.stats.Restore(snap)
	}

	if data, ok, err := g.slots.Get(ctx, SlotBinID); err != nil {
		return err
	} else if ok {
		g.mu.Lock()
		g.binID = string(data)
		g.mu.Unlock()
	}

	return nil
}

// SaveLocal writes the current store contents and counters to the local
// slots.
func (g *Gateway) SaveLocal(ctx context.Context) error {
	pairs, err := json.Marshal(g.store.Pairs())
	if err != nil {
		return fmt.Errorf("encode cache slot: %w", err)
	}
	if err := g.slots.Put(ctx, SlotCache, pairs); err != nil {
		return err
	}

	snap, err := json.Marshal(g.stats.Snapshot())
	if err != nil {
		return fmt.Errorf("encode stats slot: %w", err)
	}
	return g.slots.Put(ctx, SlotStats, snap)
}

// PushRemote uploads the current state to the remote blob, creating it on
// the first push and remembering its identifier locally. A nil blob makes
// this a no-op.
func (g *Gateway) PushRemote(ctx context.Context) error {
	if g.blob == nil {
		return nil
	}

	state := g.snapshot()

	g.mu.Lock()
	id := g.binID
	g.mu.Unlock()

	newID, err := g.blob.Push(ctx, id, state)
	if err != nil {
		return fmt.Errorf("push remote: %w", err)
	}

	if newID != id {
		g.mu.Lock()
		g.binID = newID
		g.mu.Unlock()
		if err := g.slots.Put(ctx, SlotBinID, []byte(newID)); err != nil {
			return err
		}
	}
	return nil
}

// PullRemote fetches the remote state, replaces the in-memory store and
// counters with it, and saves it locally. Returns false when there is no
// remote blob to pull.
func (g *Gateway) PullRemote(ctx context.Context) (bool, error) {
	if g.blob == nil {
		return false, nil
	}

	g.mu.Lock()
	id := g.binID
	g.mu.Unlock()

	state, ok, err := g.blob.Pull(ctx, id)
	if err != nil {
		return false, fmt.Errorf("pull remote: %w", err)
	}
	if !ok {
		return false, nil
	}

	g.store.Restore(state.Cache)
	g.stats.Restore(state.Stats)
	return true, g.SaveLocal(ctx)
}

// Watch subscribes to store mutations and persists after each one:
// locally first, then a fire-and-forget remote push. Stops when ctx is
// cancelled. Pushes are coalesced: a mutation arriving while a persist is
// in flight schedules exactly one more.
func (g *Gateway) Watch(ctx context.Context) {
	ch := make(chan struct{}, 1)
	g.store.SetOnChange(func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				g.persist(ctx)
			}
		}
	}()
}

func (g *Gateway) persist(ctx context.Context) {
	if err := g.SaveLocal(ctx); err != nil {
		log.WithError(err).Error("local persistence failed")
	}
	if err := g.PushRemote(ctx); err != nil {
		log.WithError(err).Error("remote push failed")
	}
}

// Reset deletes all local slots and forgets the remote blob identifier.
// Used by the clear operation; the remote blob itself is left in place.
func (g *Gateway) Reset(ctx context.Context) error {
	for _, name := range []string{SlotCache, SlotStats, SlotBinID} {
		if err := g.slots.Delete(ctx, name); err != nil {
			return err
		}
	}
	g.mu.Lock()
	g.binID = ""
	g.mu.Unlock()
	return nil
}

func (g *Gateway) snapshot() models.SyncState {
	return models.SyncState{
		Cache:       g.store.Pairs(),
		Stats:       g.stats.Snapshot(),
		LastUpdated: time.Now().UTC(),
	}
}
