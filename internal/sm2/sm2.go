package sm2

import (
	"math"
	"time"

	"github.com/yfadel/murajaa/internal/domain"
)

// Quality is the learner's recall-confidence score for a review.
//
// 0: Blackout (no recall)
// 1: Wrong (incorrect, partial recall)
// 2: Hard (incorrect, but familiar)
// 3: Okay (correct with serious difficulty)
// 4: Good (correct with some hesitation)
// 5: Easy (perfect recall)
type Quality int

const (
	Blackout Quality = 0
	Wrong    Quality = 1
	Hard     Quality = 2
	Okay     Quality = 3
	Good     Quality = 4
	Easy     Quality = 5
)

// PassThreshold is the boundary between failed and passed recall.
// The numeric value is load-bearing: it drives the repetition reset and
// the session correct/incorrect counters.
const PassThreshold = Okay

// MinEaseFactor is the floor the ease factor is clamped to after every
// update, including repeated failures.
const MinEaseFactor = 1.3

// InitialEaseFactor is the ease factor assigned to a freshly created card.
const InitialEaseFactor = 2.5

// Valid reports whether q is within the 0-5 scale.
func (q Quality) Valid() bool {
	return q >= Blackout && q <= Easy
}

// Passing reports whether q counts as a successful recall.
func (q Quality) Passing() bool {
	return q >= PassThreshold
}

// State holds the scheduling state of a card.
type State struct {
	EaseFactor  float64
	Interval    int // days until the next review
	Repetitions int // consecutive passing grades since the last failure
	NextReview  time.Time
}

// NewState returns the scheduling state for a freshly created card:
// due immediately, never repeated.
func NewState(now time.Time) State {
	return State{
		EaseFactor:  InitialEaseFactor,
		Interval:    0,
		Repetitions: 0,
		NextReview:  now,
	}
}

// Grade applies one review outcome to a card's scheduling state and
// returns the new state. Pure and deterministic; the only error is a
// quality outside the 0-5 scale, rejected before anything is computed.
//
// The ease factor update follows classic SM-2:
//
//	ef' = ef + (0.1 - (5-q) * (0.08 + (5-q)*0.02))
//
// clamped to a floor of 1.3 and unbounded above. A failing grade resets
// repetitions and sends the card back with a 1-day interval; the updated
// ease factor is retained either way, so repeated failures keep driving
// the ease factor toward the floor.
func Grade(s State, q Quality, now time.Time) (State, error) {
	if !q.Valid() {
		return State{}, domain.ErrInvalidGrade
	}

	diff := float64(Easy - q)
	ef := s.EaseFactor + (0.1 - diff*(0.08+diff*0.02))
	if ef < MinEaseFactor {
		ef = MinEaseFactor
	}

	next := State{EaseFactor: ef}
	if q.Passing() {
		next.Repetitions = s.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.Interval = 1
		case 2:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(s.Interval) * ef))
		}
		// A passing grade must always push the card at least a day out,
		// even from a degenerate zero prior interval.
		if next.Interval < 1 {
			next.Interval = 1
		}
	} else {
		next.Repetitions = 0
		next.Interval = 1
	}

	next.NextReview = now.AddDate(0, 0, next.Interval)
	return next, nil
}
