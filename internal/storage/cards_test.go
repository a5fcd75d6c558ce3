package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/yfadel/murajaa/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedLanguage(t *testing.T, db *DB, code string) {
	t.Helper()
	if _, err := db.InsertLanguage(code, code, "ltr", time.Now()); err != nil {
		t.Fatalf("failed to seed language %s: %v", code, err)
	}
}

// seedVocabCard creates a vocabulary item with a card and returns both ids.
func seedVocabCard(t *testing.T, db *DB, lang, english string, now time.Time) (vocabID, cardID int64) {
	t.Helper()
	vocabID, err := db.InsertVocab(domain.VocabItem{
		LanguageCode: lang,
		English:      english,
		Target:       "ترجمة",
	}, now)
	if err != nil {
		t.Fatalf("failed to seed vocab: %v", err)
	}
	if _, err := db.UpsertVocabCard(vocabID, lang, english, "ترجمة", now); err != nil {
		t.Fatalf("failed to seed card: %v", err)
	}
	cards, err := db.FindDue(lang, "", now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("failed to find seeded card: %v", err)
	}
	for _, c := range cards {
		if c.VocabID != nil && *c.VocabID == vocabID {
			return vocabID, c.ID
		}
	}
	t.Fatalf("seeded card for vocab %d not found", vocabID)
	return 0, 0
}

func TestFindDueOrdering(t *testing.T) {
	db := openTestDB(t)
	seedLanguage(t, db, "ar")
	now := time.Now()
	past := now.AddDate(0, 0, -1)

	_, cardA := seedVocabCard(t, db, "ar", "book", now.Add(-3*time.Hour))
	_, cardB := seedVocabCard(t, db, "ar", "pen", now.Add(-2*time.Hour))
	_, cardC := seedVocabCard(t, db, "ar", "house", now.Add(-1*time.Hour))

	// A: reps=0 ef=2.0, B: reps=0 ef=1.5, C: reps=1 ef=1.3, all overdue.
	for _, u := range []GradeUpdate{
		{CardID: cardA, EaseFactor: 2.0, Interval: 1, Repetitions: 0, NextReview: past, Quality: 1, ReviewedAt: past},
		{CardID: cardB, EaseFactor: 1.5, Interval: 1, Repetitions: 0, NextReview: past, Quality: 1, ReviewedAt: past},
		{CardID: cardC, EaseFactor: 1.3, Interval: 1, Repetitions: 1, NextReview: past, Quality: 3, ReviewedAt: past},
	} {
		if err := db.ApplyGrade(u); err != nil {
			t.Fatalf("failed to set card state: %v", err)
		}
	}

	due, err := db.FindDue("ar", "", now)
	if err != nil {
		t.Fatalf("find due: %v", err)
	}
	if len(due) != 3 {
		t.Fatalf("expected 3 due cards, got %d", len(due))
	}
	// Weakest first: fewest repetitions, then lowest ease factor.
	want := []int64{cardB, cardA, cardC}
	for i, c := range due {
		if c.ID != want[i] {
			t.Errorf("position %d: expected card %d, got %d", i, want[i], c.ID)
		}
	}
}

func TestFindDueFilters(t *testing.T) {
	db := openTestDB(t)
	seedLanguage(t, db, "ar")
	seedLanguage(t, db, "fr")
	now := time.Now()

	seedVocabCard(t, db, "ar", "book", now.Add(-time.Hour))
	seedVocabCard(t, db, "fr", "livre", now.Add(-time.Hour))

	due, err := db.FindDue("ar", "", now)
	if err != nil {
		t.Fatalf("find due: %v", err)
	}
	if len(due) != 1 || due[0].LanguageCode != "ar" {
		t.Errorf("expected only the arabic card, got %+v", due)
	}

	due, err = db.FindDue("ar", domain.CardTypeConjugation, now)
	if err != nil {
		t.Fatalf("find due with type filter: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("expected no conjugation cards, got %d", len(due))
	}
}

func TestFindDueExcludesFutureCards(t *testing.T) {
	db := openTestDB(t)
	seedLanguage(t, db, "ar")
	now := time.Now()

	_, cardID := seedVocabCard(t, db, "ar", "book", now.Add(-time.Hour))
	err := db.ApplyGrade(GradeUpdate{
		CardID: cardID, EaseFactor: 2.5, Interval: 6, Repetitions: 2,
		NextReview: now.AddDate(0, 0, 6), Quality: 4, ReviewedAt: now,
	})
	if err != nil {
		t.Fatalf("apply grade: %v", err)
	}

	due, err := db.FindDue("ar", "", now)
	if err != nil {
		t.Fatalf("find due: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("card due in 6 days must not appear, got %d cards", len(due))
	}

	due, err = db.FindDue("ar", "", now.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("find due at horizon: %v", err)
	}
	if len(due) != 1 {
		t.Errorf("card must be due at its next_review time, got %d cards", len(due))
	}
}

func TestUpsertRefreshKeepsSchedulingState(t *testing.T) {
	db := openTestDB(t)
	seedLanguage(t, db, "ar")
	now := time.Now()

	vocabID, cardID := seedVocabCard(t, db, "ar", "book", now)
	nextReview := now.AddDate(0, 0, 6)
	err := db.ApplyGrade(GradeUpdate{
		CardID: cardID, EaseFactor: 2.6, Interval: 6, Repetitions: 2,
		NextReview: nextReview, Quality: 5, ReviewedAt: now,
	})
	if err != nil {
		t.Fatalf("apply grade: %v", err)
	}

	// Content correction: only front/back may change.
	created, err := db.UpsertVocabCard(vocabID, "ar", "the book", "الكتاب", now)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if created {
		t.Error("refresh of an existing card must not report creation")
	}

	card, err := db.GetFlashcard(cardID)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if card.Front != "the book" || card.Back != "الكتاب" {
		t.Errorf("content not refreshed: %+v", card)
	}
	if card.EaseFactor != 2.6 || card.Interval != 6 || card.Repetitions != 2 {
		t.Errorf("scheduling state was clobbered by a content refresh: %+v", card)
	}
	if card.NextReview.Unix() != nextReview.Unix() {
		t.Errorf("next review changed: expected %v, got %v", nextReview, card.NextReview)
	}
}

func TestApplyGradeRoundTrip(t *testing.T) {
	db := openTestDB(t)
	seedLanguage(t, db, "ar")
	now := time.Now()

	_, cardID := seedVocabCard(t, db, "ar", "book", now)
	nextReview := now.AddDate(0, 0, 1)
	err := db.ApplyGrade(GradeUpdate{
		CardID: cardID, EaseFactor: 2.6, Interval: 1, Repetitions: 1,
		NextReview: nextReview, Quality: 5, ReviewedAt: now,
	})
	if err != nil {
		t.Fatalf("apply grade: %v", err)
	}

	card, err := db.GetFlashcard(cardID)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if card.EaseFactor != 2.6 || card.Interval != 1 || card.Repetitions != 1 {
		t.Errorf("re-read state drifted from the computed state: %+v", card)
	}
	if card.NextReview.Unix() != nextReview.Unix() {
		t.Errorf("next review drifted: expected %v, got %v", nextReview, card.NextReview)
	}

	history, err := db.HistoryForCard(cardID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history))
	}
	e := history[0]
	if e.Quality != 5 || e.EaseFactor != 2.6 || e.Interval != 1 {
		t.Errorf("history must record the post-update values, got %+v", e)
	}
}

func TestApplyGradeUnknownCard(t *testing.T) {
	db := openTestDB(t)
	seedLanguage(t, db, "ar")

	err := db.ApplyGrade(GradeUpdate{CardID: 999, EaseFactor: 2.5, Interval: 1, NextReview: time.Now(), ReviewedAt: time.Now()})
	if !errors.Is(err, domain.ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
	n, err := db.CountHistory()
	if err != nil {
		t.Fatalf("count history: %v", err)
	}
	if n != 0 {
		t.Errorf("no history may be written for an unknown card, got %d rows", n)
	}
}

func TestGetFlashcardNotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetFlashcard(42); !errors.Is(err, domain.ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}

func TestCountReviewedSinceLanguageScope(t *testing.T) {
	db := openTestDB(t)
	seedLanguage(t, db, "ar")
	seedLanguage(t, db, "fr")
	now := time.Now()
	startOfDay := now.Add(-time.Hour)

	_, arCard := seedVocabCard(t, db, "ar", "book", now)
	_, frCard := seedVocabCard(t, db, "fr", "livre", now)
	for _, id := range []int64{arCard, frCard} {
		err := db.ApplyGrade(GradeUpdate{
			CardID: id, EaseFactor: 2.6, Interval: 1, Repetitions: 1,
			NextReview: now.AddDate(0, 0, 1), Quality: 4, ReviewedAt: now,
		})
		if err != nil {
			t.Fatalf("apply grade: %v", err)
		}
	}

	n, err := db.CountReviewedSince("ar", startOfDay)
	if err != nil {
		t.Fatalf("count scoped: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 arabic review today, got %d", n)
	}

	n, err = db.CountReviewedSince("", startOfDay)
	if err != nil {
		t.Fatalf("count unscoped: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 reviews across languages, got %d", n)
	}
}

func TestDeleteVocabCascades(t *testing.T) {
	db := openTestDB(t)
	seedLanguage(t, db, "ar")
	now := time.Now()

	vocabID, cardID := seedVocabCard(t, db, "ar", "book", now)
	err := db.ApplyGrade(GradeUpdate{
		CardID: cardID, EaseFactor: 2.6, Interval: 1, Repetitions: 1,
		NextReview: now.AddDate(0, 0, 1), Quality: 4, ReviewedAt: now,
	})
	if err != nil {
		t.Fatalf("apply grade: %v", err)
	}

	if err := db.DeleteVocab(vocabID); err != nil {
		t.Fatalf("delete vocab: %v", err)
	}

	if _, err := db.GetFlashcard(cardID); !errors.Is(err, domain.ErrCardNotFound) {
		t.Errorf("card must cascade with its vocab item, got %v", err)
	}
	n, err := db.CountHistory()
	if err != nil {
		t.Fatalf("count history: %v", err)
	}
	if n != 0 {
		t.Errorf("history must cascade with the card, %d rows orphaned", n)
	}
}
