// Package postgres implements the store driver for PostgreSQL.
// PostgreSQL is the reference backend for production deployments.
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/hrygo/parley/internal/profile"
	"github.com/hrygo/parley/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the PostgreSQL database for the given profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	// The engine runs on a single turn executor; a small pool is enough.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Hour)
	db.SetConnMaxIdleTime(15 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS utterance (
	id SERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	conversation_id INTEGER NOT NULL,
	speaker_id INTEGER,
	content TEXT NOT NULL DEFAULT '',
	addressed_to INTEGER,
	round INTEGER NOT NULL DEFAULT 0,
	weight INTEGER NOT NULL DEFAULT 0,
	kind TEXT NOT NULL DEFAULT 'RESPONSE',
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_utterance_conversation_round ON utterance (conversation_id, round);

CREATE TABLE IF NOT EXISTS participant (
	id SERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	conversation_id INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	coordinator BOOLEAN NOT NULL DEFAULT FALSE,
	created_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS interjection (
	id SERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	conversation_id INTEGER NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	after_round INTEGER NOT NULL DEFAULT 0,
	processed BOOLEAN NOT NULL DEFAULT FALSE,
	created_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS notebook_entry (
	id SERIAL PRIMARY KEY,
	conversation_id INTEGER NOT NULL,
	speaker_id INTEGER NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notebook_entry_speaker ON notebook_entry (conversation_id, speaker_id);

CREATE TABLE IF NOT EXISTS compact_memory (
	id SERIAL PRIMARY KEY,
	conversation_id INTEGER NOT NULL UNIQUE,
	summary TEXT NOT NULL DEFAULT '',
	stance TEXT NOT NULL DEFAULT '',
	key_decisions TEXT NOT NULL DEFAULT '[]',
	open_questions TEXT NOT NULL DEFAULT '[]',
	constraints TEXT NOT NULL DEFAULT '[]',
	action_items TEXT NOT NULL DEFAULT '[]',
	pinned_facts TEXT NOT NULL DEFAULT '[]',
	last_distilled_round INTEGER NOT NULL DEFAULT 0,
	last_distilled_utterance_id INTEGER NOT NULL DEFAULT 0,
	distilled_count INTEGER NOT NULL DEFAULT 0,
	version INTEGER NOT NULL DEFAULT 1,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS context_snapshot (
	id SERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	turn_uid TEXT NOT NULL UNIQUE,
	conversation_id INTEGER NOT NULL,
	used_compact_memory BOOLEAN NOT NULL DEFAULT FALSE,
	injected_summary TEXT NOT NULL DEFAULT '',
	injected_stance TEXT NOT NULL DEFAULT '',
	injected_decisions TEXT NOT NULL DEFAULT '[]',
	injected_questions TEXT NOT NULL DEFAULT '[]',
	injected_constraints TEXT NOT NULL DEFAULT '[]',
	injected_action_items TEXT NOT NULL DEFAULT '[]',
	injected_facts TEXT NOT NULL DEFAULT '[]',
	utterance_count INTEGER NOT NULL DEFAULT 0,
	notebook_used BOOLEAN NOT NULL DEFAULT FALSE,
	created_ts BIGINT NOT NULL
);
`

// Migrate creates the schema if it does not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply postgres schema")
	}
	return nil
}
