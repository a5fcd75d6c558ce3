package storage

const schema = `
-- Study-language profiles. Everything below hangs off language_code, so
-- removing a language removes its content and cards.
CREATE TABLE IF NOT EXISTS languages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    direction TEXT NOT NULL DEFAULT 'ltr',
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS vocab (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    language_code TEXT NOT NULL,
    english TEXT NOT NULL,
    target TEXT NOT NULL DEFAULT '',
    transliteration TEXT,
    part_of_speech TEXT,
    notes TEXT,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,

    FOREIGN KEY(language_code) REFERENCES languages(code) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS verbs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    language_code TEXT NOT NULL,
    infinitive TEXT NOT NULL,
    root TEXT,
    form TEXT,
    meaning TEXT,
    ai_generated INTEGER NOT NULL DEFAULT 0,
    ai_model TEXT,
    created_at DATETIME NOT NULL,

    FOREIGN KEY(language_code) REFERENCES languages(code) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS conjugations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    verb_id INTEGER NOT NULL,
    tense TEXT NOT NULL,
    person TEXT NOT NULL,
    conjugated TEXT NOT NULL,
    voweled TEXT,
    transliteration TEXT,
    created_at DATETIME NOT NULL,

    FOREIGN KEY(verb_id) REFERENCES verbs(id) ON DELETE CASCADE
);

-- Flashcards reference exactly one origin row, matching card_type.
-- Deleting the origin cascades here, and from here to review_history.
CREATE TABLE IF NOT EXISTS flashcards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    language_code TEXT NOT NULL,
    vocab_id INTEGER,
    conjugation_id INTEGER,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    card_type TEXT NOT NULL, -- 'vocab' or 'conjugation'
    ease_factor REAL NOT NULL DEFAULT 2.5,
    interval INTEGER NOT NULL DEFAULT 0,
    repetitions INTEGER NOT NULL DEFAULT 0,
    next_review DATETIME NOT NULL,
    created_at DATETIME NOT NULL,

    FOREIGN KEY(language_code) REFERENCES languages(code) ON DELETE CASCADE,
    FOREIGN KEY(vocab_id) REFERENCES vocab(id) ON DELETE CASCADE,
    FOREIGN KEY(conjugation_id) REFERENCES conjugations(id) ON DELETE CASCADE
);

-- Append-only audit trail of grading decisions. ease_factor and interval
-- are the post-update values.
CREATE TABLE IF NOT EXISTS review_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    flashcard_id INTEGER NOT NULL,
    quality INTEGER NOT NULL,
    ease_factor REAL NOT NULL,
    interval INTEGER NOT NULL,
    reviewed_at DATETIME NOT NULL,

    FOREIGN KEY(flashcard_id) REFERENCES flashcards(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_flashcards_due
    ON flashcards(language_code, next_review);
CREATE INDEX IF NOT EXISTS idx_review_history_reviewed_at
    ON review_history(reviewed_at);
`
