package domain

import "time"

// Language is a study-language profile. Deleting a language removes all
// of its content and cards.
type Language struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Direction string    `json:"direction"` // "ltr" or "rtl"
	CreatedAt time.Time `json:"createdAt"`
}

// VocabItem is an upstream vocabulary entry. A flashcard is derived from
// it once Target is non-empty.
type VocabItem struct {
	ID              int64     `json:"id"`
	LanguageCode    string    `json:"languageCode"`
	English         string    `json:"english"`
	Target          string    `json:"target"`
	Transliteration string    `json:"transliteration,omitempty"`
	PartOfSpeech    string    `json:"partOfSpeech,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Verb is an upstream verb entry whose conjugation table seeds one
// flashcard per conjugation row.
type Verb struct {
	ID           int64     `json:"id"`
	LanguageCode string    `json:"languageCode"`
	Infinitive   string    `json:"infinitive"`
	Root         string    `json:"root,omitempty"`
	Form         string    `json:"form,omitempty"`
	Meaning      string    `json:"meaning,omitempty"`
	AIGenerated  bool      `json:"aiGenerated"`
	AIModel      string    `json:"aiModel,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Conjugation is a single (tense, person) form of a verb. Regenerating a
// verb reconciles its conjugation rows by (tense, person) so that cards
// for unchanged entries keep their scheduling state.
type Conjugation struct {
	ID              int64     `json:"id"`
	VerbID          int64     `json:"verbId"`
	Tense           string    `json:"tense"`
	Person          string    `json:"person"`
	Conjugated      string    `json:"conjugated"`
	Voweled         string    `json:"voweled,omitempty"`
	Transliteration string    `json:"transliteration,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
