package domain

import "errors"

var (
	// ErrInvalidGrade means a quality score outside 0-5 was submitted.
	// Rejected before any state mutation.
	ErrInvalidGrade = errors.New("grade quality must be between 0 and 5")

	// ErrCardNotFound means the referenced flashcard does not exist.
	ErrCardNotFound = errors.New("flashcard not found")

	// ErrVocabNotFound means the referenced vocabulary item does not exist.
	ErrVocabNotFound = errors.New("vocabulary item not found")

	// ErrVerbNotFound means the referenced verb does not exist.
	ErrVerbNotFound = errors.New("verb not found")

	// ErrStorageUnavailable wraps storage driver failures. Surfaced
	// verbatim to the caller; retry policy belongs to them.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
