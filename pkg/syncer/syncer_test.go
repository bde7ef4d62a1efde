package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/askcache-io/askcache/pkg/models"
	"github.com/askcache-io/askcache/pkg/normalize"
	"github.com/askcache-io/askcache/pkg/similarity"
	"github.com/askcache-io/askcache/pkg/stats"
	"github.com/askcache-io/askcache/pkg/store"
)

func newTestSlots(t *testing.T) *SlotStore {
	t.Helper()
	s, err := OpenSlots(filepath.Join(t.TempDir(), "slots.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestGateway(t *testing.T, blob Blob) (*Gateway, *store.Store, *stats.Tracker) {
	t.Helper()
	st := store.New(normalize.Default(), similarity.NewLevenshtein())
	tr := stats.New()
	return NewGateway(newTestSlots(t), blob, st, tr), st, tr
}

func TestSlotRoundTrip(t *testing.T) {
	s := newTestSlots(t)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, SlotCache); err != nil || ok {
		t.Fatalf("expected absent slot, got ok=%v err=%v", ok, err)
	}

	if err := s.Put(ctx, SlotCache, []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	data, ok, err := s.Get(ctx, SlotCache)
	if err != nil || !ok {
		t.Fatalf("expected slot present, got ok=%v err=%v", ok, err)
	}
	if string(data) != `[]` {
		t.Errorf("unexpected value %q", data)
	}

	// Overwrite replaces.
	s.Put(ctx, SlotCache, []byte(`[1]`))
	data, _, _ = s.Get(ctx, SlotCache)
	if string(data) != `[1]` {
		t.Errorf("expected overwritten value, got %q", data)
	}

	if err := s.Delete(ctx, SlotCache); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, SlotCache); ok {
		t.Error("expected slot gone after delete")
	}
	// Deleting again is fine.
	if err := s.Delete(ctx, SlotCache); err != nil {
		t.Errorf("delete of absent slot should not error: %v", err)
	}
}

func TestSaveLocalThenLoad(t *testing.T) {
	ctx := context.Background()
	slots := newTestSlots(t)

	st := store.New(normalize.Default(), similarity.NewLevenshtein())
	tr := stats.New()
	g := NewGateway(slots, nil, st, tr)

	st.Upsert("Q1", "A1")
	st.RecordHit("Q1")
	tr.IncTotalQuestions()
	tr.IncAPICalls()

	if err := g.SaveLocal(ctx); err != nil {
		t.Fatal(err)
	}

	// Fresh store/tracker over the same slots.
	st2 := store.New(normalize.Default(), similarity.NewLevenshtein())
	tr2 := stats.New()
	g2 := NewGateway(slots, nil, st2, tr2)
	if err := g2.Load(ctx); err != nil {
		t.Fatal(err)
	}

	rec, ok := st2.ExactLookup("Q1")
	if !ok {
		t.Fatal("expected restored record")
	}
	if rec.Answer != "A1" || rec.UsageCount != 1 {
		t.Errorf("unexpected restored record %+v", rec)
	}
	s := tr2.Snapshot()
	if s.TotalQuestions != 1 || s.APICalls != 1 {
		t.Errorf("unexpected restored stats %+v", s)
	}
}

func TestLoadEmptySlots(t *testing.T) {
	g, st, tr := newTestGateway(t, nil)
	if err := g.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if st.Len() != 0 {
		t.Error("expected empty store")
	}
	if s := tr.Snapshot(); s.TotalQuestions != 0 {
		t.Error("expected zero stats")
	}
}

// fakeBin implements a minimal jsonbin.io-compatible API.
func fakeBin(t *testing.T) (*httptest.Server, *map[string]models.SyncState) {
	t.Helper()
	bins := make(map[string]models.SyncState)
	next := 0

	mux := http.NewServeMux()
	mux.HandleFunc("POST /b", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Master-Key") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var state models.SyncState
		if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		next++
		id := fmt.Sprintf("bin-%d", next)
		bins[id] = state
		json.NewEncoder(w).Encode(map[string]any{"metadata": map[string]any{"id": id}})
	})
	mux.HandleFunc("PUT /b/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, ok := bins[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var state models.SyncState
		if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		bins[id] = state
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /b/{id}/latest", func(w http.ResponseWriter, r *http.Request) {
		state, ok := bins[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"record": state})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &bins
}

func TestJSONBinCreateThenUpdate(t *testing.T) {
	srv, bins := fakeBin(t)
	bin := NewJSONBin(srv.URL, "master-key", "askcache-state")
	ctx := context.Background()

	state := models.SyncState{
		Cache: []models.CachePair{{Question: "Q", Record: models.QuestionRecord{OriginalQuestion: "Q", Answer: "A"}}},
	}

	id, err := bin.Push(ctx, "", state)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected bin id from create")
	}

	state.Cache[0].Record.Answer = "A2"
	id2, err := bin.Push(ctx, id, state)
	if err != nil {
		t.Fatal(err)
	}
	if id2 != id {
		t.Errorf("update must keep the bin id, got %q", id2)
	}
	if (*bins)[id].Cache[0].Record.Answer != "A2" {
		t.Error("expected updated state in bin")
	}

	got, ok, err := bin.Pull(ctx, id)
	if err != nil || !ok {
		t.Fatalf("pull failed: ok=%v err=%v", ok, err)
	}
	if got.Cache[0].Record.Answer != "A2" {
		t.Errorf("unexpected pulled state %+v", got)
	}
}

func TestJSONBinPullAbsent(t *testing.T) {
	srv, _ := fakeBin(t)
	bin := NewJSONBin(srv.URL, "master-key", "")
	ctx := context.Background()

	if _, ok, err := bin.Pull(ctx, ""); ok || err != nil {
		t.Errorf("empty id should pull nothing, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := bin.Pull(ctx, "missing"); ok || err != nil {
		t.Errorf("missing bin should pull nothing, got ok=%v err=%v", ok, err)
	}
}

func TestGatewayPushRemoteRemembersBinID(t *testing.T) {
	srv, _ := fakeBin(t)
	g, st, _ := newTestGateway(t, NewJSONBin(srv.URL, "master-key", "askcache-state"))
	ctx := context.Background()

	st.Upsert("Q", "A")

	if err := g.PushRemote(ctx); err != nil {
		t.Fatal(err)
	}
	id := g.BinID()
	if id == "" {
		t.Fatal("expected bin id after first push")
	}

	// Second push reuses the id.
	st.Upsert("Q2", "A2")
	if err := g.PushRemote(ctx); err != nil {
		t.Fatal(err)
	}
	if g.BinID() != id {
		t.Error("bin id must be stable across pushes")
	}

	// The id survives a reload from local slots.
	g2 := NewGateway(g.slots, nil, st, stats.New())
	if err := g2.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if g2.BinID() != id {
		t.Error("bin id must be persisted locally")
	}
}

func TestGatewayPullRemoteRestores(t *testing.T) {
	srv, _ := fakeBin(t)
	bin := NewJSONBin(srv.URL, "master-key", "askcache-state")

	g, st, tr := newTestGateway(t, bin)
	ctx := context.Background()

	st.Upsert("Q", "A")
	tr.IncTotalQuestions()
	tr.IncAPICalls()
	if err := g.PushRemote(ctx); err != nil {
		t.Fatal(err)
	}

	// A second instance pulls the pushed state.
	st2 := store.New(normalize.Default(), similarity.NewLevenshtein())
	tr2 := stats.New()
	g2 := NewGateway(newTestSlots(t), bin, st2, tr2)

	// It needs the bin id first; share it the way a deployment would,
	// through the persisted slot value.
	data, _, _ := g.slots.Get(ctx, SlotBinID)
	g2.slots.Put(ctx, SlotBinID, data)
	if err := g2.Load(ctx); err != nil {
		t.Fatal(err)
	}

	ok, err := g2.PullRemote(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected remote state")
	}
	if _, found := st2.ExactLookup("Q"); !found {
		t.Error("expected restored record")
	}
	if s := tr2.Snapshot(); s.TotalQuestions != 1 || s.APICalls != 1 {
		t.Errorf("unexpected restored stats %+v", s)
	}
}

func TestGatewayReset(t *testing.T) {
	g, st, tr := newTestGateway(t, nil)
	ctx := context.Background()

	st.Upsert("Q", "A")
	tr.IncTotalQuestions()
	if err := g.SaveLocal(ctx); err != nil {
		t.Fatal(err)
	}

	if err := g.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	for _, slot := range []string{SlotCache, SlotStats, SlotBinID} {
		if _, ok, _ := g.slots.Get(ctx, slot); ok {
			t.Errorf("expected slot %s deleted", slot)
		}
	}
	if g.BinID() != "" {
		t.Error("expected bin id forgotten")
	}
}
