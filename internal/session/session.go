// Package session coordinates a bounded review session: one due-set
// snapshot, cards served strictly one at a time, grades applied through
// the scheduling policy and persisted atomically.
package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/yfadel/murajaa/internal/domain"
	"github.com/yfadel/murajaa/internal/sm2"
	"github.com/yfadel/murajaa/internal/storage"
)

// Store is the persistence surface a session needs. *storage.DB
// satisfies it.
type Store interface {
	FindDue(languageCode string, cardType domain.CardType, asOf time.Time) ([]domain.Flashcard, error)
	ApplyGrade(storage.GradeUpdate) error
}

// Phase is the coordinator's position in its lifecycle.
type Phase int

const (
	Idle       Phase = iota // no snapshot loaded
	Presenting              // a card is being shown
	Complete                // snapshot exhausted, stats final
)

var (
	// ErrNotPresenting means there is no current card to reveal or grade.
	ErrNotPresenting = errors.New("no card is currently presented")

	// ErrNotStarted means the session has not loaded a due-set snapshot.
	ErrNotStarted = errors.New("session has not been started")
)

// Stats are the running counters for one session.
type Stats struct {
	Total     int `json:"total"`
	Reviewed  int `json:"reviewed"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Accuracy is the percentage of reviewed cards answered correctly,
// rounded to the nearest integer. Zero when nothing has been reviewed.
func (s Stats) Accuracy() int {
	if s.Reviewed == 0 {
		return 0
	}
	return int(math.Round(float64(s.Correct) / float64(s.Reviewed) * 100))
}

// View is the presentation of the current card. Back is withheld until
// the learner asks to reveal it; the flip is not scheduler state.
type View struct {
	CardID   int64           `json:"cardId"`
	CardType domain.CardType `json:"cardType"`
	Front    string          `json:"front"`
	Revealed bool            `json:"revealed"`
	Back     string          `json:"back,omitempty"`
	Position int             `json:"position"` // 1-based index within the snapshot
}

// Session walks a snapshot of due cards. Reviews are strictly
// sequential: one outstanding card at a time, no internal locking.
type Session struct {
	store        Store
	languageCode string
	cardType     domain.CardType

	phase    Phase
	cards    []domain.Flashcard
	cursor   int
	revealed bool
	stats    Stats
}

// New returns an idle session for the given language and optional card
// type filter.
func New(store Store, languageCode string, cardType domain.CardType) *Session {
	return &Session{store: store, languageCode: languageCode, cardType: cardType}
}

// Start snapshots the due set once at the given time. Cards that become
// due mid-session are not pulled in, and cards graded in this pass never
// resurface even if their recomputed due time is still at or before the
// frozen clock.
func (s *Session) Start(now time.Time) error {
	cards, err := s.store.FindDue(s.languageCode, s.cardType, now)
	if err != nil {
		return fmt.Errorf("load due cards: %w", err)
	}
	s.cards = cards
	s.cursor = 0
	s.revealed = false
	s.stats = Stats{Total: len(cards)}
	if len(cards) == 0 {
		s.phase = Complete
	} else {
		s.phase = Presenting
	}
	return nil
}

// Restart discards the current snapshot, switches the card-type filter
// and re-snapshots. Nothing needs rollback: scheduling writes only
// happen on grade submission.
func (s *Session) Restart(cardType domain.CardType, now time.Time) error {
	s.cardType = cardType
	s.phase = Idle
	return s.Start(now)
}

// Phase reports where the session is in its lifecycle.
func (s *Session) Phase() Phase {
	return s.phase
}

// Current returns the presented card, front side only until Reveal has
// been called.
func (s *Session) Current() (View, error) {
	if s.phase == Idle {
		return View{}, ErrNotStarted
	}
	if s.phase != Presenting {
		return View{}, ErrNotPresenting
	}
	card := s.cards[s.cursor]
	v := View{
		CardID:   card.ID,
		CardType: card.CardType,
		Front:    card.Front,
		Revealed: s.revealed,
		Position: s.cursor + 1,
	}
	if s.revealed {
		v.Back = card.Back
	}
	return v, nil
}

// Reveal flips the current card and returns its back side.
func (s *Session) Reveal() (string, error) {
	if s.phase != Presenting {
		return "", ErrNotPresenting
	}
	s.revealed = true
	return s.cards[s.cursor].Back, nil
}

// SubmitGrade grades the current card, persists the new scheduling state
// together with its history entry, updates the counters and advances the
// cursor. Returns the state the policy computed.
func (s *Session) SubmitGrade(q sm2.Quality, now time.Time) (sm2.State, error) {
	if s.phase != Presenting {
		return sm2.State{}, ErrNotPresenting
	}
	card := s.cards[s.cursor]

	next, err := sm2.Grade(sm2.State{
		EaseFactor:  card.EaseFactor,
		Interval:    card.Interval,
		Repetitions: card.Repetitions,
		NextReview:  card.NextReview,
	}, q, now)
	if err != nil {
		return sm2.State{}, err
	}

	err = s.store.ApplyGrade(storage.GradeUpdate{
		CardID:      card.ID,
		EaseFactor:  next.EaseFactor,
		Interval:    next.Interval,
		Repetitions: next.Repetitions,
		NextReview:  next.NextReview,
		Quality:     int(q),
		ReviewedAt:  now,
	})
	if err != nil {
		return sm2.State{}, fmt.Errorf("persist grade: %w", err)
	}

	s.stats.Reviewed++
	if q.Passing() {
		s.stats.Correct++
	} else {
		s.stats.Incorrect++
	}

	s.cursor++
	s.revealed = false
	if s.cursor >= len(s.cards) {
		s.phase = Complete
	}
	return next, nil
}

// Stats returns the session counters. Final once the phase is Complete.
func (s *Session) Stats() Stats {
	return s.stats
}
