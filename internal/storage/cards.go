package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/yfadel/murajaa/internal/domain"
)

const flashcardColumns = `id, language_code, vocab_id, conjugation_id, front, back,
	card_type, ease_factor, interval, repetitions, next_review, created_at`

func scanFlashcard(row interface{ Scan(...any) error }) (domain.Flashcard, error) {
	var (
		c             domain.Flashcard
		vocabID       sql.NullInt64
		conjugationID sql.NullInt64
	)
	err := row.Scan(
		&c.ID,
		&c.LanguageCode,
		&vocabID,
		&conjugationID,
		&c.Front,
		&c.Back,
		&c.CardType,
		&c.EaseFactor,
		&c.Interval,
		&c.Repetitions,
		&c.NextReview,
		&c.CreatedAt,
	)
	if err != nil {
		return domain.Flashcard{}, err
	}
	if vocabID.Valid {
		c.VocabID = &vocabID.Int64
	}
	if conjugationID.Valid {
		c.ConjugationID = &conjugationID.Int64
	}
	return c, nil
}

// cardFilter builds the language (+ optional card type) predicate shared
// by the due query and the counters.
func cardFilter(languageCode string, cardType domain.CardType) (string, []any) {
	where := `language_code = ?`
	args := []any{languageCode}
	if cardType.Valid() {
		where += ` AND card_type = ?`
		args = append(args, string(cardType))
	}
	return where, args
}

// FindDue returns every card with next_review at or before asOf for the
// given language, optionally restricted to one card type. Ordering is the
// weakest-material-first chain: fewest repetitions, then lowest ease
// factor, then most overdue.
func (db *DB) FindDue(languageCode string, cardType domain.CardType, asOf time.Time) ([]domain.Flashcard, error) {
	where, args := cardFilter(languageCode, cardType)
	args = append(args, asOf.UTC())

	rows, err := db.conn.Query(`
		SELECT `+flashcardColumns+`
		FROM flashcards
		WHERE `+where+` AND next_review <= ?
		ORDER BY repetitions ASC, ease_factor ASC, next_review ASC
	`, args...)
	if err != nil {
		return nil, storageErr("find due cards", err)
	}
	defer rows.Close()

	var cards []domain.Flashcard
	for rows.Next() {
		c, err := scanFlashcard(rows)
		if err != nil {
			return nil, storageErr("scan due card", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate due cards", err)
	}
	return cards, nil
}

// CountCards returns the total number of cards for the language and
// optional card type, regardless of due status.
func (db *DB) CountCards(languageCode string, cardType domain.CardType) (int, error) {
	where, args := cardFilter(languageCode, cardType)
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM flashcards WHERE `+where, args...).Scan(&n)
	if err != nil {
		return 0, storageErr("count cards", err)
	}
	return n, nil
}

// CountDue returns the number of due cards as of the given time.
func (db *DB) CountDue(languageCode string, cardType domain.CardType, asOf time.Time) (int, error) {
	where, args := cardFilter(languageCode, cardType)
	args = append(args, asOf.UTC())
	var n int
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM flashcards WHERE `+where+` AND next_review <= ?
	`, args...).Scan(&n)
	if err != nil {
		return 0, storageErr("count due cards", err)
	}
	return n, nil
}

// CountReviewedSince counts history entries recorded at or after the
// given time. A non-empty language code scopes the count to that
// language's cards; empty counts across all languages.
func (db *DB) CountReviewedSince(languageCode string, since time.Time) (int, error) {
	var (
		n   int
		err error
	)
	if languageCode == "" {
		err = db.conn.QueryRow(`
			SELECT COUNT(*) FROM review_history WHERE reviewed_at >= ?
		`, since.UTC()).Scan(&n)
	} else {
		err = db.conn.QueryRow(`
			SELECT COUNT(*)
			FROM review_history h
			JOIN flashcards f ON f.id = h.flashcard_id
			WHERE h.reviewed_at >= ? AND f.language_code = ?
		`, since.UTC(), languageCode).Scan(&n)
	}
	if err != nil {
		return 0, storageErr("count reviewed since", err)
	}
	return n, nil
}

// GetFlashcard retrieves a single card by id.
func (db *DB) GetFlashcard(id int64) (domain.Flashcard, error) {
	row := db.conn.QueryRow(`
		SELECT `+flashcardColumns+` FROM flashcards WHERE id = ?
	`, id)
	c, err := scanFlashcard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Flashcard{}, domain.ErrCardNotFound
		}
		return domain.Flashcard{}, storageErr("get flashcard", err)
	}
	return c, nil
}

// UpsertVocabCard ensures exactly one vocab card exists for the given
// vocabulary item. When the card already exists only front and back are
// touched; the column-scoped update keeps a concurrent grade write from
// being clobbered. A new card starts with the schema's initial
// scheduling state (ease 2.5, interval 0, due immediately).
func (db *DB) UpsertVocabCard(vocabID int64, languageCode, front, back string, now time.Time) (created bool, err error) {
	var id int64
	err = db.conn.QueryRow(`SELECT id FROM flashcards WHERE vocab_id = ?`, vocabID).Scan(&id)
	switch {
	case err == nil:
		_, err = db.conn.Exec(`UPDATE flashcards SET front = ?, back = ? WHERE id = ?`, front, back, id)
		if err != nil {
			return false, storageErr("refresh vocab card", err)
		}
		return false, nil
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.conn.Exec(`
			INSERT INTO flashcards (language_code, vocab_id, front, back, card_type, next_review, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, languageCode, vocabID, front, back, string(domain.CardTypeVocab), now.UTC(), now.UTC())
		if err != nil {
			return false, storageErr("insert vocab card", err)
		}
		return true, nil
	default:
		return false, storageErr("find vocab card", err)
	}
}

// UpsertConjugationCard ensures exactly one conjugation card exists for
// the given conjugation row, with the same content-only update rule as
// UpsertVocabCard.
func (db *DB) UpsertConjugationCard(conjugationID int64, languageCode, front, back string, now time.Time) (created bool, err error) {
	var id int64
	err = db.conn.QueryRow(`SELECT id FROM flashcards WHERE conjugation_id = ?`, conjugationID).Scan(&id)
	switch {
	case err == nil:
		_, err = db.conn.Exec(`UPDATE flashcards SET front = ?, back = ? WHERE id = ?`, front, back, id)
		if err != nil {
			return false, storageErr("refresh conjugation card", err)
		}
		return false, nil
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.conn.Exec(`
			INSERT INTO flashcards (language_code, conjugation_id, front, back, card_type, next_review, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, languageCode, conjugationID, front, back, string(domain.CardTypeConjugation), now.UTC(), now.UTC())
		if err != nil {
			return false, storageErr("insert conjugation card", err)
		}
		return true, nil
	default:
		return false, storageErr("find conjugation card", err)
	}
}

// GradeUpdate carries the result of one grading decision: the card's new
// scheduling state plus the history fields recorded alongside it.
type GradeUpdate struct {
	CardID      int64
	EaseFactor  float64
	Interval    int
	Repetitions int
	NextReview  time.Time
	Quality     int
	ReviewedAt  time.Time
}

// ApplyGrade persists a grading decision atomically: the flashcard's
// scheduling columns and the history append either both succeed or
// neither does.
func (db *DB) ApplyGrade(u GradeUpdate) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return storageErr("begin grade transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE flashcards
		SET ease_factor = ?, interval = ?, repetitions = ?, next_review = ?
		WHERE id = ?
	`, u.EaseFactor, u.Interval, u.Repetitions, u.NextReview.UTC(), u.CardID)
	if err != nil {
		return storageErr("update card scheduling state", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr("update card scheduling state", err)
	}
	if affected == 0 {
		return domain.ErrCardNotFound
	}

	_, err = tx.Exec(`
		INSERT INTO review_history (flashcard_id, quality, ease_factor, interval, reviewed_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.CardID, u.Quality, u.EaseFactor, u.Interval, u.ReviewedAt.UTC())
	if err != nil {
		return storageErr("append review history", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit grade transaction", err)
	}
	return nil
}

// HistoryForCard returns a card's history entries, oldest first.
func (db *DB) HistoryForCard(cardID int64) ([]domain.ReviewHistoryEntry, error) {
	rows, err := db.conn.Query(`
		SELECT id, flashcard_id, quality, ease_factor, interval, reviewed_at
		FROM review_history
		WHERE flashcard_id = ?
		ORDER BY id ASC
	`, cardID)
	if err != nil {
		return nil, storageErr("get review history", err)
	}
	defer rows.Close()

	var entries []domain.ReviewHistoryEntry
	for rows.Next() {
		var e domain.ReviewHistoryEntry
		if err := rows.Scan(&e.ID, &e.FlashcardID, &e.Quality, &e.EaseFactor, &e.Interval, &e.ReviewedAt); err != nil {
			return nil, storageErr("scan review history row", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate review history", err)
	}
	return entries, nil
}

// CountHistory returns the total number of history rows, used by cascade
// checks and tests.
func (db *DB) CountHistory() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM review_history`).Scan(&n); err != nil {
		return 0, storageErr("count review history", err)
	}
	return n, nil
}
