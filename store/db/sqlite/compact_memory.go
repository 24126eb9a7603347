package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hrygo/parley/store"
)

const compactMemoryColumns = `id, conversation_id, summary, stance, key_decisions, open_questions, constraints, action_items, pinned_facts,
	last_distilled_round, last_distilled_utterance_id, distilled_count, version, created_ts, updated_ts`

func scanCompactMemory(row interface{ Scan(...any) error }) (*store.CompactMemory, error) {
	m := &store.CompactMemory{}
	var decisions, questions, constraints, actions, facts string
	if err := row.Scan(
		&m.ID, &m.ConversationID, &m.Summary, &m.Stance, &decisions, &questions, &constraints, &actions, &facts,
		&m.LastDistilledRound, &m.LastDistilledUtteranceID, &m.DistilledCount, &m.Version, &m.CreatedTs, &m.UpdatedTs,
	); err != nil {
		return nil, err
	}

	var err error
	if m.KeyDecisions, err = store.DecodeStringList(decisions); err != nil {
		return nil, err
	}
	if m.OpenQuestions, err = store.DecodeStringList(questions); err != nil {
		return nil, err
	}
	if m.Constraints, err = store.DecodeStringList(constraints); err != nil {
		return nil, err
	}
	if m.ActionItems, err = store.DecodeStringList(actions); err != nil {
		return nil, err
	}
	if m.PinnedFacts, err = store.DecodePinnedFacts(facts); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *DB) CreateCompactMemory(ctx context.Context, create *store.CompactMemory) (*store.CompactMemory, error) {
	decisions, err := store.EncodeStringList(create.KeyDecisions)
	if err != nil {
		return nil, err
	}
	questions, err := store.EncodeStringList(create.OpenQuestions)
	if err != nil {
		return nil, err
	}
	constraints, err := store.EncodeStringList(create.Constraints)
	if err != nil {
		return nil, err
	}
	actions, err := store.EncodeStringList(create.ActionItems)
	if err != nil {
		return nil, err
	}
	facts, err := store.EncodePinnedFacts(create.PinnedFacts)
	if err != nil {
		return nil, err
	}

	fields := []string{"conversation_id", "summary", "stance", "key_decisions", "open_questions", "constraints", "action_items", "pinned_facts",
		"last_distilled_round", "last_distilled_utterance_id", "distilled_count", "version", "created_ts", "updated_ts"}
	args := []any{create.ConversationID, create.Summary, create.Stance, decisions, questions, constraints, actions, facts,
		create.LastDistilledRound, create.LastDistilledUtteranceID, create.DistilledCount, int32(1), create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO compact_memory (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create compact memory: %w", err)
	}
	create.Version = 1

	return create, nil
}

func (d *DB) GetCompactMemory(ctx context.Context, find *store.FindCompactMemory) (*store.CompactMemory, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = ?"), append(args, *find.ConversationID)
	}

	query := `SELECT ` + compactMemoryColumns + ` FROM compact_memory WHERE ` + strings.Join(where, " AND ")
	m, err := scanCompactMemory(d.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get compact memory: %w", err)
	}

	return m, nil
}

// UpdateCompactMemory applies a versioned update. The write only lands
// when the caller's version matches the persisted one; otherwise
// ErrStaleCompactMemory is returned and the record is left untouched.
func (d *DB) UpdateCompactMemory(ctx context.Context, update *store.UpdateCompactMemory) (*store.CompactMemory, error) {
	set, args := []string{}, []any{}

	if update.Summary != nil {
		set, args = append(set, "summary = ?"), append(args, *update.Summary)
	}
	if update.Stance != nil {
		set, args = append(set, "stance = ?"), append(args, *update.Stance)
	}
	if update.KeyDecisions != nil {
		encoded, err := store.EncodeStringList(update.KeyDecisions)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "key_decisions = ?"), append(args, encoded)
	}
	if update.OpenQuestions != nil {
		encoded, err := store.EncodeStringList(update.OpenQuestions)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "open_questions = ?"), append(args, encoded)
	}
	if update.Constraints != nil {
		encoded, err := store.EncodeStringList(update.Constraints)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "constraints = ?"), append(args, encoded)
	}
	if update.ActionItems != nil {
		encoded, err := store.EncodeStringList(update.ActionItems)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "action_items = ?"), append(args, encoded)
	}
	if update.PinnedFacts != nil {
		encoded, err := store.EncodePinnedFacts(update.PinnedFacts)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "pinned_facts = ?"), append(args, encoded)
	}
	if update.LastDistilledRound != nil {
		set, args = append(set, "last_distilled_round = ?"), append(args, *update.LastDistilledRound)
	}
	if update.LastDistilledUtteranceID != nil {
		set, args = append(set, "last_distilled_utterance_id = ?"), append(args, *update.LastDistilledUtteranceID)
	}
	if update.DistilledCount != nil {
		set, args = append(set, "distilled_count = ?"), append(args, *update.DistilledCount)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = ?"), append(args, *update.UpdatedTs)
	}

	if len(set) == 0 {
		return nil, store.ErrNoFieldsToUpdate
	}

	set = append(set, "version = version + 1")
	args = append(args, update.ConversationID, update.Version)

	stmt := `UPDATE compact_memory SET ` + strings.Join(set, ", ") + `
		WHERE conversation_id = ? AND version = ?
		RETURNING ` + compactMemoryColumns
	m, err := scanCompactMemory(d.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrStaleCompactMemory
		}
		return nil, fmt.Errorf("failed to update compact memory: %w", err)
	}

	return m, nil
}
