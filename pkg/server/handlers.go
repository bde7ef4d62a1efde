package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/apex/log"

	"github.com/askcache-io/askcache/pkg/models"
	"github.com/askcache-io/askcache/pkg/store"
)

// answerPreview caps answers in listings at 100 runes.
const answerPreview = 100

var endpoints = map[string]string{
	"GET /api":             "API info",
	"GET /api/questions":   "list all questions",
	"GET /api/search?q=":   "search for a question",
	"POST /api/save":       "save a question/answer pair",
	"DELETE /api/clear":    "clear all data",
	"DELETE /api/question": "delete one question (?q=)",
	"GET /api/stats":       "statistics",
	"GET /api/health":      "health check",
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "askcache question/answer cache API",
		"status":    "active",
		"stats":     s.stats.Snapshot(),
		"endpoints": endpoints,
	})
}

type searchData struct {
	OriginalQuestion string     `json:"originalQuestion"`
	Answer           string     `json:"answer"`
	Similarity       float64    `json:"similarity"`
	UsageCount       int64      `json:"usageCount"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastUsed         *time.Time `json:"lastUsed"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("q")
	if question == "" {
		writeError(w, http.StatusBadRequest, "question parameter required (?q=...)")
		return
	}

	m, ok := s.lookup(question)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"found":   false,
			"message": "no similar question found",
		})
		return
	}

	hit, err := s.store.RecordHit(m.Record.OriginalQuestion)
	if err != nil {
		hit = m.Record
	}
	s.stats.IncCacheHits()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"found":   true,
		"data": searchData{
			OriginalQuestion: hit.OriginalQuestion,
			Answer:           hit.Answer,
			Similarity:       m.Similarity,
			UsageCount:       hit.UsageCount,
			CreatedAt:        hit.CreatedAt,
			LastUsed:         hit.LastUsed,
		},
	})
}

// lookup runs exact match before the approximate scan, so an identical
// key always wins and scores the scorer's maximum.
func (s *Server) lookup(question string) (models.Match, bool) {
	if rec, ok := s.store.ExactLookup(question); ok {
		return models.Match{Record: rec, Similarity: s.store.Scorer().Max()}, true
	}
	return s.store.ApproximateLookup(question)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Question == "" || body.Answer == "" {
		writeError(w, http.StatusBadRequest, "question and answer required")
		return
	}

	rec, isNew, err := s.store.Upsert(body.Question, body.Answer)
	if err != nil {
		if errors.Is(err, store.ErrEmptyKey) {
			writeError(w, http.StatusBadRequest, "question and answer required")
			return
		}
		log.WithError(err).Error("save failed")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	if isNew {
		s.stats.IncTotalQuestions()
	}
	s.stats.IncAPICalls()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "question/answer saved",
		"data": map[string]any{
			"question": rec.OriginalQuestion,
			"answer":   rec.Answer,
			"isNew":    isNew,
		},
	})
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	recs := s.store.ListByUsage()
	questions := make([]models.QuestionSummary, 0, len(recs))
	for _, rec := range recs {
		questions = append(questions, models.QuestionSummary{
			Question:   rec.OriginalQuestion,
			Answer:     truncate(rec.Answer, answerPreview),
			CreatedAt:  rec.CreatedAt,
			UsageCount: rec.UsageCount,
			LastUsed:   rec.LastUsed,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"count":     len(questions),
		"questions": questions,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.stats.Snapshot()
	out := models.ServerStats{
		StatsSnapshot: snap,
		DatabaseSize:  s.store.Len(),
	}
	if snap.TotalQuestions > 0 {
		out.AverageUsage = float64(s.store.TotalUsage()) / float64(snap.TotalQuestions)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   out,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	count := s.store.Clear()
	s.stats.Reset()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      "all question/answer data cleared",
		"clearedCount": count,
	})
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("q")
	if question == "" {
		writeError(w, http.StatusBadRequest, "question parameter required (?q=...)")
		return
	}

	if err := s.store.Delete(question); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		log.WithError(err).Error("delete failed")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	s.stats.DecTotalQuestions()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "question deleted",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) notFound(w http.ResponseWriter) {
	available := make([]string, 0, len(endpoints))
	for ep := range endpoints {
		available = append(available, ep)
	}
	writeJSON(w, http.StatusNotFound, map[string]any{
		"success":            false,
		"error":              "endpoint not found",
		"availableEndpoints": available,
	})
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("encode response")
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{
		"success": false,
		"error":   message,
	})
}
