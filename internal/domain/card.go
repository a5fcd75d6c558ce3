package domain

import "time"

// CardType classifies which upstream entity a flashcard is derived from.
// It is immutable after creation.
type CardType string

const (
	CardTypeVocab       CardType = "vocab"
	CardTypeConjugation CardType = "conjugation"
)

// Valid reports whether t is one of the known card types.
func (t CardType) Valid() bool {
	return t == CardTypeVocab || t == CardTypeConjugation
}

// Flashcard is a single reviewable item. Exactly one of VocabID or
// ConjugationID is set, matching CardType. The scheduling fields
// (EaseFactor, Interval, Repetitions, NextReview) are owned by the
// grading policy and must never be touched by content updates.
type Flashcard struct {
	ID            int64     `json:"id"`
	LanguageCode  string    `json:"languageCode"`
	VocabID       *int64    `json:"vocabId,omitempty"`
	ConjugationID *int64    `json:"conjugationId,omitempty"`
	Front         string    `json:"front"`
	Back          string    `json:"back"`
	CardType      CardType  `json:"cardType"`
	EaseFactor    float64   `json:"easeFactor"`
	Interval      int       `json:"interval"`
	Repetitions   int       `json:"repetitions"`
	NextReview    time.Time `json:"nextReview"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ReviewHistoryEntry records a single grading event for a flashcard.
// EaseFactor and Interval hold the post-update values, making the log a
// forward-looking audit trail of scheduler decisions. Entries are
// immutable once written and are removed only by cascade when their
// flashcard is deleted.
type ReviewHistoryEntry struct {
	ID          int64     `json:"id"`
	FlashcardID int64     `json:"flashcardId"`
	Quality     int       `json:"quality"`
	EaseFactor  float64   `json:"easeFactor"`
	Interval    int       `json:"interval"`
	ReviewedAt  time.Time `json:"reviewedAt"`
}
