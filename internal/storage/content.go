package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/yfadel/murajaa/internal/domain"
)

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// InsertLanguage creates a study-language profile.
func (db *DB) InsertLanguage(code, name, direction string, now time.Time) (int64, error) {
	if direction == "" {
		direction = "ltr"
	}
	res, err := db.conn.Exec(`
		INSERT INTO languages (code, name, direction, created_at) VALUES (?, ?, ?, ?)
	`, code, name, direction, now.UTC())
	if err != nil {
		return 0, storageErr("insert language", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert language", err)
	}
	return id, nil
}

// DeleteLanguage removes a language profile. Its vocab, verbs and cards
// go with it via cascade.
func (db *DB) DeleteLanguage(code string) error {
	if _, err := db.conn.Exec(`DELETE FROM languages WHERE code = ?`, code); err != nil {
		return storageErr("delete language", err)
	}
	return nil
}

// InsertVocab creates a vocabulary item and returns its id.
func (db *DB) InsertVocab(v domain.VocabItem, now time.Time) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO vocab (language_code, english, target, transliteration, part_of_speech, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, v.LanguageCode, v.English, v.Target, nullable(v.Transliteration), nullable(v.PartOfSpeech), nullable(v.Notes), now.UTC(), now.UTC())
	if err != nil {
		return 0, storageErr("insert vocab", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert vocab", err)
	}
	return id, nil
}

// GetVocab retrieves a vocabulary item by id.
func (db *DB) GetVocab(id int64) (domain.VocabItem, error) {
	var (
		v               domain.VocabItem
		transliteration sql.NullString
		partOfSpeech    sql.NullString
		notes           sql.NullString
	)
	err := db.conn.QueryRow(`
		SELECT id, language_code, english, target, transliteration, part_of_speech, notes, created_at, updated_at
		FROM vocab WHERE id = ?
	`, id).Scan(&v.ID, &v.LanguageCode, &v.English, &v.Target, &transliteration, &partOfSpeech, &notes, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.VocabItem{}, domain.ErrVocabNotFound
		}
		return domain.VocabItem{}, storageErr("get vocab", err)
	}
	v.Transliteration = transliteration.String
	v.PartOfSpeech = partOfSpeech.String
	v.Notes = notes.String
	return v, nil
}

// UpdateVocabTranslation stores an acquired translation on a vocabulary
// item. Only translation-derived columns are touched.
func (db *DB) UpdateVocabTranslation(id int64, target, transliteration, partOfSpeech string, now time.Time) error {
	res, err := db.conn.Exec(`
		UPDATE vocab
		SET target = ?, transliteration = ?, part_of_speech = ?, updated_at = ?
		WHERE id = ?
	`, target, nullable(transliteration), nullable(partOfSpeech), now.UTC(), id)
	if err != nil {
		return storageErr("update vocab translation", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr("update vocab translation", err)
	}
	if affected == 0 {
		return domain.ErrVocabNotFound
	}
	return nil
}

// ListUntranslatedVocab returns the language's vocabulary items that
// have no target-language translation yet.
func (db *DB) ListUntranslatedVocab(languageCode string) ([]domain.VocabItem, error) {
	rows, err := db.conn.Query(`
		SELECT id, language_code, english, target, transliteration, part_of_speech, notes, created_at, updated_at
		FROM vocab WHERE language_code = ? AND target = ''
		ORDER BY id ASC
	`, languageCode)
	if err != nil {
		return nil, storageErr("list untranslated vocab", err)
	}
	defer rows.Close()

	var items []domain.VocabItem
	for rows.Next() {
		var (
			v               domain.VocabItem
			transliteration sql.NullString
			partOfSpeech    sql.NullString
			notes           sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.LanguageCode, &v.English, &v.Target, &transliteration, &partOfSpeech, &notes, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, storageErr("scan vocab row", err)
		}
		v.Transliteration = transliteration.String
		v.PartOfSpeech = partOfSpeech.String
		v.Notes = notes.String
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate vocab rows", err)
	}
	return items, nil
}

// CountVocab returns the number of vocabulary items for a language.
func (db *DB) CountVocab(languageCode string) (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM vocab WHERE language_code = ?`, languageCode).Scan(&n); err != nil {
		return 0, storageErr("count vocab", err)
	}
	return n, nil
}

// DeleteVocab removes a vocabulary item; its card and history cascade.
func (db *DB) DeleteVocab(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM vocab WHERE id = ?`, id); err != nil {
		return storageErr("delete vocab", err)
	}
	return nil
}

// InsertVerb creates a verb and returns its id.
func (db *DB) InsertVerb(v domain.Verb, now time.Time) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO verbs (language_code, infinitive, root, form, meaning, ai_generated, ai_model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, v.LanguageCode, v.Infinitive, nullable(v.Root), nullable(v.Form), nullable(v.Meaning), v.AIGenerated, nullable(v.AIModel), now.UTC())
	if err != nil {
		return 0, storageErr("insert verb", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert verb", err)
	}
	return id, nil
}

// GetVerb retrieves a verb by id.
func (db *DB) GetVerb(id int64) (domain.Verb, error) {
	var (
		v       domain.Verb
		root    sql.NullString
		form    sql.NullString
		meaning sql.NullString
		aiModel sql.NullString
	)
	err := db.conn.QueryRow(`
		SELECT id, language_code, infinitive, root, form, meaning, ai_generated, ai_model, created_at
		FROM verbs WHERE id = ?
	`, id).Scan(&v.ID, &v.LanguageCode, &v.Infinitive, &root, &form, &meaning, &v.AIGenerated, &aiModel, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Verb{}, domain.ErrVerbNotFound
		}
		return domain.Verb{}, storageErr("get verb", err)
	}
	v.Root = root.String
	v.Form = form.String
	v.Meaning = meaning.String
	v.AIModel = aiModel.String
	return v, nil
}

// UpdateVerbMetadata stores AI-derived metadata after a successful
// conjugation generation.
func (db *DB) UpdateVerbMetadata(id int64, root, meaning, aiModel string) error {
	_, err := db.conn.Exec(`
		UPDATE verbs SET root = ?, meaning = ?, ai_generated = 1, ai_model = ?
		WHERE id = ?
	`, nullable(root), nullable(meaning), nullable(aiModel), id)
	if err != nil {
		return storageErr("update verb metadata", err)
	}
	return nil
}

// CountVerbs returns the number of verbs for a language.
func (db *DB) CountVerbs(languageCode string) (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM verbs WHERE language_code = ?`, languageCode).Scan(&n); err != nil {
		return 0, storageErr("count verbs", err)
	}
	return n, nil
}

// DeleteVerb removes a verb; its conjugations, cards and history cascade.
func (db *DB) DeleteVerb(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM verbs WHERE id = ?`, id); err != nil {
		return storageErr("delete verb", err)
	}
	return nil
}

// ConjugationsForVerb returns a verb's conjugation rows, oldest first.
func (db *DB) ConjugationsForVerb(verbID int64) ([]domain.Conjugation, error) {
	rows, err := db.conn.Query(`
		SELECT id, verb_id, tense, person, conjugated, voweled, transliteration, created_at
		FROM conjugations WHERE verb_id = ?
		ORDER BY id ASC
	`, verbID)
	if err != nil {
		return nil, storageErr("get conjugations", err)
	}
	defer rows.Close()

	var entries []domain.Conjugation
	for rows.Next() {
		var (
			c               domain.Conjugation
			voweled         sql.NullString
			transliteration sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.VerbID, &c.Tense, &c.Person, &c.Conjugated, &voweled, &transliteration, &c.CreatedAt); err != nil {
			return nil, storageErr("scan conjugation row", err)
		}
		c.Voweled = voweled.String
		c.Transliteration = transliteration.String
		entries = append(entries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate conjugations", err)
	}
	return entries, nil
}

// ReplaceConjugations reconciles a verb's conjugation table against a
// regenerated set, matching rows by (tense, person). Matched rows are
// updated in place so their cards keep accumulated scheduling state;
// rows absent from the new set are deleted (their cards and history
// cascade); unmatched new entries are inserted.
func (db *DB) ReplaceConjugations(verbID int64, entries []domain.Conjugation, now time.Time) error {
	existing, err := db.ConjugationsForVerb(verbID)
	if err != nil {
		return err
	}

	type key struct{ tense, person string }
	existingByKey := make(map[key]domain.Conjugation, len(existing))
	for _, c := range existing {
		existingByKey[key{c.Tense, c.Person}] = c
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return storageErr("begin conjugation reconcile", err)
	}
	defer tx.Rollback()

	seen := make(map[key]bool, len(entries))
	for _, e := range entries {
		k := key{e.Tense, e.Person}
		seen[k] = true
		if old, ok := existingByKey[k]; ok {
			_, err = tx.Exec(`
				UPDATE conjugations SET conjugated = ?, voweled = ?, transliteration = ?
				WHERE id = ?
			`, e.Conjugated, nullable(e.Voweled), nullable(e.Transliteration), old.ID)
			if err != nil {
				return storageErr("update conjugation", err)
			}
			continue
		}
		_, err = tx.Exec(`
			INSERT INTO conjugations (verb_id, tense, person, conjugated, voweled, transliteration, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, verbID, e.Tense, e.Person, e.Conjugated, nullable(e.Voweled), nullable(e.Transliteration), now.UTC())
		if err != nil {
			return storageErr("insert conjugation", err)
		}
	}

	for _, c := range existing {
		if !seen[key{c.Tense, c.Person}] {
			if _, err := tx.Exec(`DELETE FROM conjugations WHERE id = ?`, c.ID); err != nil {
				return storageErr("delete orphaned conjugation", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit conjugation reconcile", err)
	}
	return nil
}
