package db

import (
	"database/sql"
	"fmt"
)

// schema is the full backend schema. Lists of images and the free-form
// category fields are stored as JSON text.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    rating        REAL NOT NULL DEFAULT 0,
    review_count  INTEGER NOT NULL DEFAULT 0,
    profile_image TEXT,
    phone_enabled INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS listings (
    id              TEXT PRIMARY KEY,
    seller_id       TEXT NOT NULL REFERENCES users(id),
    title           TEXT NOT NULL,
    description     TEXT NOT NULL,
    price           REAL NOT NULL CHECK (price >= 0),
    category        TEXT NOT NULL,
    images          TEXT NOT NULL DEFAULT '[]',
    video           TEXT,
    videos          TEXT NOT NULL DEFAULT '[]',
    category_fields TEXT NOT NULL DEFAULT '{}',
    views           INTEGER NOT NULL DEFAULT 0,
    negotiable      INTEGER NOT NULL DEFAULT 0,
    location        TEXT,
    created_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category, created_at);
CREATE INDEX IF NOT EXISTS idx_listings_seller ON listings(seller_id);

CREATE TABLE IF NOT EXISTS favorites (
    user_id    TEXT NOT NULL REFERENCES users(id),
    listing_id TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL,
    PRIMARY KEY (user_id, listing_id)
);

CREATE TABLE IF NOT EXISTS offers (
    id            TEXT PRIMARY KEY,
    listing_id    TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
    buyer_id      TEXT NOT NULL REFERENCES users(id),
    seller_id     TEXT NOT NULL REFERENCES users(id),
    offered_price REAL NOT NULL CHECK (offered_price > 0),
    message       TEXT,
    status        TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
    created_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_offers_seller ON offers(seller_id, created_at);

CREATE TABLE IF NOT EXISTS messages (
    id           TEXT PRIMARY KEY,
    from_user_id TEXT NOT NULL REFERENCES users(id),
    to_user_id   TEXT NOT NULL REFERENCES users(id),
    listing_id   TEXT NOT NULL,
    content      TEXT NOT NULL DEFAULT '',
    message_type TEXT NOT NULL DEFAULT 'text' CHECK (message_type IN ('text', 'image', 'audio')),
    images       TEXT NOT NULL DEFAULT '[]',
    audio        TEXT,
    read         INTEGER NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(listing_id, from_user_id, to_user_id);
CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(to_user_id) WHERE read = 0;

CREATE TABLE IF NOT EXISTS support_tickets (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id),
    subject    TEXT NOT NULL,
    message    TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: messages hold the sender's thread for conversation lookups.
	`CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_user_id, created_at)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist and
// applies pending migrations.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
