package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yfadel/murajaa/internal/domain"
	"github.com/yfadel/murajaa/internal/sm2"
	"github.com/yfadel/murajaa/internal/storage"
)

// handleGetDueSet returns the cards due for review plus the counts a
// session needs, weakest material first.
func (s *Server) handleGetDueSet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		lang := s.lang(r)
		cardType := cardTypeFilter(r)
		now := time.Now()

		due, err := s.db.FindDue(lang, cardType, now)
		if err != nil {
			slog.Error("failed to load due cards", "language", lang, "error", err)
			writeError(w, http.StatusInternalServerError, "storage unavailable")
			return
		}
		total, err := s.db.CountCards(lang, cardType)
		if err != nil {
			slog.Error("failed to count cards", "language", lang, "error", err)
			writeError(w, http.StatusInternalServerError, "storage unavailable")
			return
		}
		if due == nil {
			due = []domain.Flashcard{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"due":        due,
			"totalCards": total,
			"dueCount":   len(due),
		})
	}
}

// handleGetStats reports progress counters for the language. The
// reviewed-today counter is scoped to the language like everything else.
func (s *Server) handleGetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		lang := s.lang(r)
		cardType := cardTypeFilter(r)
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		stats := map[string]any{}
		counters := []struct {
			key   string
			count func() (int, error)
		}{
			{"totalCards", func() (int, error) { return s.db.CountCards(lang, cardType) }},
			{"dueCards", func() (int, error) { return s.db.CountDue(lang, cardType, now) }},
			{"reviewedToday", func() (int, error) { return s.db.CountReviewedSince(lang, startOfDay) }},
			{"totalVocab", func() (int, error) { return s.db.CountVocab(lang) }},
			{"totalVerbs", func() (int, error) { return s.db.CountVerbs(lang) }},
		}
		for _, c := range counters {
			n, err := c.count()
			if err != nil {
				slog.Error("failed to compute stats", "language", lang, "counter", c.key, "error", err)
				writeError(w, http.StatusInternalServerError, "storage unavailable")
				return
			}
			stats[c.key] = n
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// handleSubmitGrade grades a single card and returns the scheduling
// state the policy computed.
func (s *Server) handleSubmitGrade() http.HandlerFunc {
	type request struct {
		FlashcardID int64 `json:"flashcardId"`
		Quality     int   `json:"quality"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		q := sm2.Quality(req.Quality)
		if !q.Valid() {
			writeError(w, http.StatusBadRequest, domain.ErrInvalidGrade.Error())
			return
		}

		card, err := s.db.GetFlashcard(req.FlashcardID)
		if err != nil {
			if errors.Is(err, domain.ErrCardNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			slog.Error("failed to load card", "card_id", req.FlashcardID, "error", err)
			writeError(w, http.StatusInternalServerError, "storage unavailable")
			return
		}

		now := time.Now()
		next, err := sm2.Grade(sm2.State{
			EaseFactor:  card.EaseFactor,
			Interval:    card.Interval,
			Repetitions: card.Repetitions,
			NextReview:  card.NextReview,
		}, q, now)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		err = s.db.ApplyGrade(storage.GradeUpdate{
			CardID:      card.ID,
			EaseFactor:  next.EaseFactor,
			Interval:    next.Interval,
			Repetitions: next.Repetitions,
			NextReview:  next.NextReview,
			Quality:     int(q),
			ReviewedAt:  now,
		})
		if err != nil {
			slog.Error("failed to persist grade", "card_id", card.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "storage unavailable")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"easeFactor":  next.EaseFactor,
			"interval":    next.Interval,
			"repetitions": next.Repetitions,
			"nextReview":  next.NextReview,
		})
	}
}

// handleGetLabels returns the fixed quality-label table for grading UIs.
func (s *Server) handleGetLabels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, sm2.Labels())
	}
}
