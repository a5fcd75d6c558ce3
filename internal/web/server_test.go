package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/yfadel/murajaa/internal/domain"
	"github.com/yfadel/murajaa/internal/lifecycle"
	"github.com/yfadel/murajaa/internal/storage"
)

// stubCompleter returns a canned response or error.
type stubCompleter struct {
	response string
	err      error
}

func (c *stubCompleter) Complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return c.response, c.err
}

func (c *stubCompleter) Name() string { return "stub-model" }

func newTestServer(t *testing.T, completer *stubCompleter) (*Server, *storage.DB) {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.InsertLanguage("ar", "Arabic", "rtl", time.Now()); err != nil {
		t.Fatalf("failed to seed language: %v", err)
	}
	var c = completer
	if c == nil {
		c = &stubCompleter{}
	}
	return NewServer(db, lifecycle.NewManager(db), c, "ar"), db
}

func seedCard(t *testing.T, db *storage.DB, english, target string) int64 {
	t.Helper()
	now := time.Now()
	vocabID, err := db.InsertVocab(domain.VocabItem{LanguageCode: "ar", English: english, Target: target}, now)
	if err != nil {
		t.Fatalf("insert vocab: %v", err)
	}
	if _, err := db.UpsertVocabCard(vocabID, "ar", english, target, now); err != nil {
		t.Fatalf("upsert card: %v", err)
	}
	due, err := db.FindDue("ar", "", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("find due: %v", err)
	}
	for _, c := range due {
		if c.Front == english {
			return c.ID
		}
	}
	t.Fatal("seeded card not found")
	return 0
}

func doJSON(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: invalid JSON response: %v", method, path, err)
		}
	}
	return rec, out
}

func TestGetDueSet(t *testing.T) {
	s, db := newTestServer(t, nil)
	seedCard(t, db, "book", "كتاب")
	seedCard(t, db, "pen", "قلم")

	rec, out := doJSON(t, s, http.MethodGet, "/api/flashcards?lang=ar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if out["dueCount"].(float64) != 2 || out["totalCards"].(float64) != 2 {
		t.Errorf("unexpected counts: %v", out)
	}
	if len(out["due"].([]any)) != 2 {
		t.Errorf("expected 2 due cards in payload")
	}
}

func TestGetDueSetEmpty(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec, out := doJSON(t, s, http.MethodGet, "/api/flashcards", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if due, ok := out["due"].([]any); !ok || len(due) != 0 {
		t.Errorf("expected an empty array, got %v", out["due"])
	}
}

func TestSubmitGrade(t *testing.T) {
	s, db := newTestServer(t, nil)
	cardID := seedCard(t, db, "book", "كتاب")

	t.Run("valid grade", func(t *testing.T) {
		rec, out := doJSON(t, s, http.MethodPost, "/api/flashcards/review",
			`{"flashcardId": `+jsonID(cardID)+`, "quality": 5}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", rec.Code, out)
		}
		if out["interval"].(float64) != 1 || out["repetitions"].(float64) != 1 {
			t.Errorf("unexpected scheduling state: %v", out)
		}
		history, _ := db.HistoryForCard(cardID)
		if len(history) != 1 {
			t.Errorf("expected one history entry, got %d", len(history))
		}
	})

	t.Run("unknown card", func(t *testing.T) {
		rec, _ := doJSON(t, s, http.MethodPost, "/api/flashcards/review",
			`{"flashcardId": 9999, "quality": 4}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("invalid grade", func(t *testing.T) {
		rec, _ := doJSON(t, s, http.MethodPost, "/api/flashcards/review",
			`{"flashcardId": `+jsonID(cardID)+`, "quality": 7}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		history, _ := db.HistoryForCard(cardID)
		if len(history) != 1 {
			t.Errorf("rejected grade must not be recorded, got %d entries", len(history))
		}
	})
}

func TestGetLabels(t *testing.T) {
	s, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/flashcards/labels", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var labels []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &labels); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(labels) != 6 {
		t.Fatalf("expected 6 labels, got %d", len(labels))
	}
	if labels[0]["quality"].(float64) != 0 || labels[5]["quality"].(float64) != 5 {
		t.Error("labels must be ordered by quality")
	}
}

func TestGetStats(t *testing.T) {
	s, db := newTestServer(t, nil)
	cardID := seedCard(t, db, "book", "كتاب")
	_, _ = doJSON(t, s, http.MethodPost, "/api/flashcards/review",
		`{"flashcardId": `+jsonID(cardID)+`, "quality": 4}`)

	rec, out := doJSON(t, s, http.MethodGet, "/api/flashcards/stats?lang=ar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if out["totalCards"].(float64) != 1 {
		t.Errorf("expected 1 total card, got %v", out["totalCards"])
	}
	if out["reviewedToday"].(float64) != 1 {
		t.Errorf("expected 1 review today, got %v", out["reviewedToday"])
	}
	if out["dueCards"].(float64) != 0 {
		t.Errorf("graded card must no longer be due, got %v", out["dueCards"])
	}
	if out["totalVocab"].(float64) != 1 {
		t.Errorf("expected 1 vocab item, got %v", out["totalVocab"])
	}
}

const conjugationResponse = `{
  "metadata": {"root": "كتب", "meaning": "to write"},
  "conjugations": [
    {"tense": "past", "person": "he", "conjugated": "كتب", "voweled": "كَتَبَ"},
    {"tense": "past", "person": "she", "conjugated": "كتبت", "voweled": "كَتَبَتْ"}
  ]
}`

func TestGenerateConjugations(t *testing.T) {
	s, db := newTestServer(t, &stubCompleter{response: conjugationResponse})
	verbID, err := db.InsertVerb(domain.Verb{LanguageCode: "ar", Infinitive: "كتب"}, time.Now())
	if err != nil {
		t.Fatalf("insert verb: %v", err)
	}

	rec, out := doJSON(t, s, http.MethodPost, "/api/verbs/"+jsonID(verbID)+"/conjugations", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, out)
	}
	if len(out["conjugations"].([]any)) != 2 {
		t.Errorf("expected 2 conjugations, got %v", out["conjugations"])
	}
	n, _ := db.CountCards("ar", domain.CardTypeConjugation)
	if n != 2 {
		t.Errorf("expected 2 conjugation cards, got %d", n)
	}
}

func TestGenerateConjugationsBadPayload(t *testing.T) {
	s, db := newTestServer(t, &stubCompleter{response: "I refuse"})
	verbID, err := db.InsertVerb(domain.Verb{LanguageCode: "ar", Infinitive: "كتب"}, time.Now())
	if err != nil {
		t.Fatalf("insert verb: %v", err)
	}

	rec, _ := doJSON(t, s, http.MethodPost, "/api/verbs/"+jsonID(verbID)+"/conjugations", "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
	n, _ := db.CountCards("ar", domain.CardTypeConjugation)
	if n != 0 {
		t.Errorf("a rejected payload must not create cards, got %d", n)
	}
}

func TestDeleteVerbEndpoint(t *testing.T) {
	s, db := newTestServer(t, &stubCompleter{response: conjugationResponse})
	verbID, err := db.InsertVerb(domain.Verb{LanguageCode: "ar", Infinitive: "كتب"}, time.Now())
	if err != nil {
		t.Fatalf("insert verb: %v", err)
	}
	_, _ = doJSON(t, s, http.MethodPost, "/api/verbs/"+jsonID(verbID)+"/conjugations", "")

	rec, _ := doJSON(t, s, http.MethodDelete, "/api/verbs/"+jsonID(verbID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	n, _ := db.CountCards("ar", domain.CardTypeConjugation)
	if n != 0 {
		t.Errorf("expected cascade to remove all cards, got %d", n)
	}
}

func TestTranslateVocab(t *testing.T) {
	response := `[{"english": "book", "target": "كتاب", "transliteration": "kitab", "partOfSpeech": "noun"}]`
	s, db := newTestServer(t, &stubCompleter{response: response})
	if _, err := db.InsertVocab(domain.VocabItem{LanguageCode: "ar", English: "book"}, time.Now()); err != nil {
		t.Fatalf("insert vocab: %v", err)
	}

	rec, out := doJSON(t, s, http.MethodPost, "/api/vocab/translate", `{"languageCode": "ar"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, out)
	}
	if out["translated"].(float64) != 1 {
		t.Errorf("expected 1 translated item, got %v", out["translated"])
	}
	n, _ := db.CountCards("ar", domain.CardTypeVocab)
	if n != 1 {
		t.Errorf("expected a card for the translated item, got %d", n)
	}
}

func jsonID(id int64) string {
	return strconv.FormatInt(id, 10)
}
