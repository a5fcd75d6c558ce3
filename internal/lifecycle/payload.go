package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yfadel/murajaa/internal/ai"
	"github.com/yfadel/murajaa/internal/domain"
)

// ErrInvalidPayload means a model response failed decoding or schema
// validation. Nothing has been mutated when this is returned, so cards
// created from earlier, valid payloads are untouched.
var ErrInvalidPayload = errors.New("invalid model payload")

var validate = validator.New()

// ConjugationEntryPayload is one (tense, person) form in a conjugation
// generation response.
type ConjugationEntryPayload struct {
	Tense           string `json:"tense" validate:"required"`
	Person          string `json:"person" validate:"required"`
	Conjugated      string `json:"conjugated" validate:"required"`
	Voweled         string `json:"voweled"`
	Transliteration string `json:"transliteration"`
}

// ConjugationPayload is the full conjugation generation response.
type ConjugationPayload struct {
	Metadata struct {
		Root    string `json:"root"`
		Meaning string `json:"meaning"`
	} `json:"metadata"`
	Conjugations []ConjugationEntryPayload `json:"conjugations" validate:"required,min=1,dive"`
}

// VocabTranslationPayload is one entry of a batch translation response.
type VocabTranslationPayload struct {
	English         string `json:"english" validate:"required"`
	Target          string `json:"target"`
	Transliteration string `json:"transliteration"`
	PartOfSpeech    string `json:"partOfSpeech"`
}

// ApplyConjugationPayload validates a conjugation generation response
// and, only if it is well-formed, reconciles the verb's conjugation rows
// against it and syncs the flashcards. Rows matching by (tense, person)
// are updated in place so their cards keep accumulated scheduling state;
// removed rows take their cards and history with them; new rows get
// fresh cards.
func (m *Manager) ApplyConjugationPayload(verbID int64, raw, aiModel string, now time.Time) error {
	verb, err := m.db.GetVerb(verbID)
	if err != nil {
		return err
	}

	var payload ConjugationPayload
	if err := ai.DecodeJSON(raw, &payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	entries := make([]domain.Conjugation, len(payload.Conjugations))
	for i, e := range payload.Conjugations {
		entries[i] = domain.Conjugation{
			VerbID:          verb.ID,
			Tense:           e.Tense,
			Person:          e.Person,
			Conjugated:      e.Conjugated,
			Voweled:         e.Voweled,
			Transliteration: e.Transliteration,
		}
	}

	if err := m.db.ReplaceConjugations(verb.ID, entries, now); err != nil {
		return err
	}

	root := payload.Metadata.Root
	if root == "" {
		root = verb.Root
	}
	if err := m.db.UpdateVerbMetadata(verb.ID, root, payload.Metadata.Meaning, aiModel); err != nil {
		return err
	}

	return m.SyncVerbCards(verb.ID, now)
}

// ApplyVocabTranslations validates a batch translation response for the
// given vocabulary items and stores each translation, creating or
// refreshing the corresponding flashcards. The payload must carry
// exactly one entry per requested item, in order. Entries with an empty
// target are skipped. Returns the number of items translated.
func (m *Manager) ApplyVocabTranslations(vocabIDs []int64, raw string, now time.Time) (int, error) {
	var payload []VocabTranslationPayload
	if err := ai.DecodeJSON(raw, &payload); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if len(payload) != len(vocabIDs) {
		return 0, fmt.Errorf("%w: expected %d translations, got %d", ErrInvalidPayload, len(vocabIDs), len(payload))
	}
	for i, entry := range payload {
		if err := validate.Struct(entry); err != nil {
			return 0, fmt.Errorf("%w: entry %d: %w", ErrInvalidPayload, i, err)
		}
	}

	var translated int
	for i, entry := range payload {
		if entry.Target == "" {
			continue
		}
		id := vocabIDs[i]
		err := m.db.UpdateVocabTranslation(id, entry.Target, entry.Transliteration, entry.PartOfSpeech, now)
		if err != nil {
			if errors.Is(err, domain.ErrVocabNotFound) {
				continue // item deleted while translating, nothing to do
			}
			return translated, err
		}
		if err := m.SyncVocabCard(id, now); err != nil {
			return translated, err
		}
		translated++
	}
	return translated, nil
}
