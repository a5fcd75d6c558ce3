// Package lifecycle creates and refreshes flashcards in response to
// upstream content events: a vocabulary item gaining a translation, a
// verb's conjugation table being (re)generated. It never touches a
// card's scheduling state; content refreshes are column-scoped.
package lifecycle

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yfadel/murajaa/internal/domain"
	"github.com/yfadel/murajaa/internal/storage"
)

// Manager reconciles flashcards with their upstream content rows.
type Manager struct {
	db *storage.DB
}

// NewManager returns a lifecycle manager over the given store.
func NewManager(db *storage.DB) *Manager {
	return &Manager{db: db}
}

// SyncVocabCard ensures exactly one vocab flashcard exists for the item,
// front = source-language term, back = translation plus optional
// transliteration. An existing card only has its content refreshed. A
// missing item or an item without a translation is nothing to do.
func (m *Manager) SyncVocabCard(vocabID int64, now time.Time) error {
	item, err := m.db.GetVocab(vocabID)
	if err != nil {
		if errors.Is(err, domain.ErrVocabNotFound) {
			return nil // origin gone, nothing to reconcile
		}
		return err
	}
	if item.Target == "" {
		return nil
	}

	back := item.Target
	if item.Transliteration != "" {
		back = fmt.Sprintf("%s (%s)", item.Target, item.Transliteration)
	}

	created, err := m.db.UpsertVocabCard(item.ID, item.LanguageCode, item.English, back, now)
	if err != nil {
		return err
	}
	if created {
		slog.Info("created vocab flashcard", "vocab_id", item.ID, "language", item.LanguageCode)
	}
	return nil
}

// SyncVerbCards ensures one conjugation flashcard per conjugation row of
// the verb, front = a prompt combining infinitive with tense and person,
// back = the voweled form when present. Cards for conjugation rows that
// were removed disappear via cascade; this only creates and refreshes.
func (m *Manager) SyncVerbCards(verbID int64, now time.Time) error {
	verb, err := m.db.GetVerb(verbID)
	if err != nil {
		if errors.Is(err, domain.ErrVerbNotFound) {
			return nil // origin gone, nothing to reconcile
		}
		return err
	}

	entries, err := m.db.ConjugationsForVerb(verb.ID)
	if err != nil {
		return err
	}

	var created int
	for _, c := range entries {
		front := fmt.Sprintf("%s: %s, %s", verb.Infinitive, c.Tense, c.Person)
		back := c.Conjugated
		if c.Voweled != "" {
			back = c.Voweled
		}
		fresh, err := m.db.UpsertConjugationCard(c.ID, verb.LanguageCode, front, back, now)
		if err != nil {
			return err
		}
		if fresh {
			created++
		}
	}

	slog.Info("synced conjugation flashcards",
		"verb_id", verb.ID,
		"conjugations", len(entries),
		"created", created,
	)
	return nil
}
