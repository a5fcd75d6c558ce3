package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yfadel/murajaa/internal/domain"
	"github.com/yfadel/murajaa/internal/lifecycle"
)

// translateBatchSize caps how many vocabulary items go into a single
// completion request.
const translateBatchSize = 15

// handleVerb dispatches /api/verbs/{id} and /api/verbs/{id}/conjugations.
func (s *Server) handleVerb() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/verbs/")
		idStr, sub, _ := strings.Cut(rest, "/")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid verb id")
			return
		}

		switch {
		case sub == "conjugations" && r.Method == http.MethodPost:
			s.generateConjugations(w, r, id)
		case sub == "" && r.Method == http.MethodDelete:
			s.deleteVerb(w, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

// generateConjugations asks the completion provider for the verb's
// conjugation table and hands the response to the lifecycle manager.
// Existing cards keep their scheduling state for forms that survive the
// regeneration.
func (s *Server) generateConjugations(w http.ResponseWriter, r *http.Request, verbID int64) {
	if s.completer == nil {
		writeError(w, http.StatusServiceUnavailable, "no completion provider configured")
		return
	}

	verb, err := s.db.GetVerb(verbID)
	if err != nil {
		if errors.Is(err, domain.ErrVerbNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.Error("failed to load verb", "verb_id", verbID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}

	system, user := conjugationPrompt(verb)
	raw, err := s.completer.Complete(r.Context(), user, system)
	if err != nil {
		slog.Error("conjugation generation failed", "verb_id", verbID, "error", err)
		writeError(w, http.StatusBadGateway, "completion provider failed")
		return
	}

	if err := s.lifecycle.ApplyConjugationPayload(verbID, raw, s.completer.Name(), time.Now()); err != nil {
		if errors.Is(err, lifecycle.ErrInvalidPayload) {
			slog.Warn("rejected conjugation payload", "verb_id", verbID, "error", err)
			writeError(w, http.StatusBadGateway, "provider returned an invalid payload")
			return
		}
		slog.Error("failed to apply conjugation payload", "verb_id", verbID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}

	entries, err := s.db.ConjugationsForVerb(verbID)
	if err != nil {
		slog.Error("failed to reload conjugations", "verb_id", verbID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conjugations": entries})
}

func (s *Server) deleteVerb(w http.ResponseWriter, verbID int64) {
	if _, err := s.db.GetVerb(verbID); err != nil {
		if errors.Is(err, domain.ErrVerbNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.Error("failed to load verb", "verb_id", verbID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	if err := s.db.DeleteVerb(verbID); err != nil {
		slog.Error("failed to delete verb", "verb_id", verbID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// handleTranslateVocab translates the language's untranslated vocabulary
// in batches and creates flashcards for each successful entry. Batches
// that fail decoding are skipped without touching earlier results.
func (s *Server) handleTranslateVocab() http.HandlerFunc {
	type request struct {
		LanguageCode string `json:"languageCode"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if s.completer == nil {
			writeError(w, http.StatusServiceUnavailable, "no completion provider configured")
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LanguageCode == "" {
			writeError(w, http.StatusBadRequest, "languageCode is required")
			return
		}

		items, err := s.db.ListUntranslatedVocab(req.LanguageCode)
		if err != nil {
			slog.Error("failed to list untranslated vocab", "language", req.LanguageCode, "error", err)
			writeError(w, http.StatusInternalServerError, "storage unavailable")
			return
		}
		if len(items) == 0 {
			writeJSON(w, http.StatusOK, map[string]any{"translated": 0})
			return
		}

		var translated int
		var lastErr error
		for start := 0; start < len(items); start += translateBatchSize {
			end := min(start+translateBatchSize, len(items))
			batch := items[start:end]

			ids := make([]int64, len(batch))
			words := make([]string, len(batch))
			for i, item := range batch {
				ids[i] = item.ID
				words[i] = item.English
			}

			system, user := translatePrompt(req.LanguageCode, words)
			raw, err := s.completer.Complete(r.Context(), user, system)
			if err != nil {
				lastErr = err
				continue
			}

			n, err := s.lifecycle.ApplyVocabTranslations(ids, raw, time.Now())
			translated += n
			if err != nil {
				lastErr = err
				if !errors.Is(err, lifecycle.ErrInvalidPayload) {
					break // storage trouble, stop instead of hammering
				}
			}
		}

		if translated == 0 && lastErr != nil {
			slog.Error("vocab translation produced nothing", "language", req.LanguageCode, "error", lastErr)
			writeError(w, http.StatusBadGateway, "translation failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"translated": translated})
	}
}

func conjugationPrompt(verb domain.Verb) (system, user string) {
	system = "You are a language teacher. Respond with JSON only: an object with a " +
		`"metadata" object (root, meaning) and a "conjugations" array of objects with ` +
		"tense, person, conjugated, voweled and transliteration fields."
	var b strings.Builder
	fmt.Fprintf(&b, "Produce the full conjugation table for the %s verb %q.", verb.LanguageCode, verb.Infinitive)
	if verb.Root != "" {
		fmt.Fprintf(&b, " The root is %q.", verb.Root)
	}
	if verb.Form != "" {
		fmt.Fprintf(&b, " The form is %q.", verb.Form)
	}
	return system, b.String()
}

func translatePrompt(languageCode string, words []string) (system, user string) {
	system = "You are a translator. Respond with JSON only: an array with exactly one " +
		"object per input word, in order, each with english, target, transliteration " +
		"and partOfSpeech fields."
	user = fmt.Sprintf("Translate these English words to %s: %s",
		languageCode, strings.Join(words, ", "))
	return system, user
}
