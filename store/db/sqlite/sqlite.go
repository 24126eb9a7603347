// Package sqlite implements the store driver for SQLite.
// SQLite is the development and single-user backend; PostgreSQL is the
// reference implementation for production deployments.
package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/parley/internal/profile"
	"github.com/hrygo/parley/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database for the given profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	dsn := profile.DSN
	if dsn == "" {
		dsn = filepath.Join(profile.Data, "parley.db")
	}
	// WAL mode and a busy timeout keep concurrent turn executors from
	// tripping over SQLITE_BUSY during snapshot writes.
	dsn += "?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"

	sqliteDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite db with dsn: %s", dsn)
	}

	return &DB{db: sqliteDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS utterance (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
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
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	conversation_id INTEGER NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	coordinator INTEGER NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS interjection (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	conversation_id INTEGER NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	after_round INTEGER NOT NULL DEFAULT 0,
	processed INTEGER NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS notebook_entry (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id INTEGER NOT NULL,
	speaker_id INTEGER NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notebook_entry_speaker ON notebook_entry (conversation_id, speaker_id);

CREATE TABLE IF NOT EXISTS compact_memory (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
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
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	turn_uid TEXT NOT NULL UNIQUE,
	conversation_id INTEGER NOT NULL,
	used_compact_memory INTEGER NOT NULL DEFAULT 0,
	injected_summary TEXT NOT NULL DEFAULT '',
	injected_stance TEXT NOT NULL DEFAULT '',
	injected_decisions TEXT NOT NULL DEFAULT '[]',
	injected_questions TEXT NOT NULL DEFAULT '[]',
	injected_constraints TEXT NOT NULL DEFAULT '[]',
	injected_action_items TEXT NOT NULL DEFAULT '[]',
	injected_facts TEXT NOT NULL DEFAULT '[]',
	utterance_count INTEGER NOT NULL DEFAULT 0,
	notebook_used INTEGER NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL
);
`

// Migrate creates the schema if it does not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply sqlite schema")
	}
	return nil
}
