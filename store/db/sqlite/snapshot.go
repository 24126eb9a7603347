package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hrygo/parley/store"
)

const snapshotColumns = `id, uid, turn_uid, conversation_id, used_compact_memory, injected_summary, injected_stance,
	injected_decisions, injected_questions, injected_constraints, injected_action_items, injected_facts,
	utterance_count, notebook_used, created_ts`

func scanContextSnapshot(row interface{ Scan(...any) error }) (*store.ContextSnapshot, error) {
	s := &store.ContextSnapshot{}
	var decisions, questions, constraints, actions, facts string
	if err := row.Scan(
		&s.ID, &s.UID, &s.TurnUID, &s.ConversationID, &s.UsedCompactMemory, &s.InjectedSummary, &s.InjectedStance,
		&decisions, &questions, &constraints, &actions, &facts,
		&s.UtteranceCount, &s.NotebookUsed, &s.CreatedTs,
	); err != nil {
		return nil, err
	}

	var err error
	if s.InjectedDecisions, err = store.DecodeStringList(decisions); err != nil {
		return nil, err
	}
	if s.InjectedQuestions, err = store.DecodeStringList(questions); err != nil {
		return nil, err
	}
	if s.InjectedConstraints, err = store.DecodeStringList(constraints); err != nil {
		return nil, err
	}
	if s.InjectedActionItems, err = store.DecodeStringList(actions); err != nil {
		return nil, err
	}
	if s.InjectedFacts, err = store.DecodePinnedFacts(facts); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *DB) CreateContextSnapshot(ctx context.Context, create *store.ContextSnapshot) (*store.ContextSnapshot, error) {
	decisions, err := store.EncodeStringList(create.InjectedDecisions)
	if err != nil {
		return nil, err
	}
	questions, err := store.EncodeStringList(create.InjectedQuestions)
	if err != nil {
		return nil, err
	}
	constraints, err := store.EncodeStringList(create.InjectedConstraints)
	if err != nil {
		return nil, err
	}
	actions, err := store.EncodeStringList(create.InjectedActionItems)
	if err != nil {
		return nil, err
	}
	facts, err := store.EncodePinnedFacts(create.InjectedFacts)
	if err != nil {
		return nil, err
	}

	fields := []string{"uid", "turn_uid", "conversation_id", "used_compact_memory", "injected_summary", "injected_stance",
		"injected_decisions", "injected_questions", "injected_constraints", "injected_action_items", "injected_facts",
		"utterance_count", "notebook_used", "created_ts"}
	args := []any{create.UID, create.TurnUID, create.ConversationID, create.UsedCompactMemory, create.InjectedSummary, create.InjectedStance,
		decisions, questions, constraints, actions, facts,
		create.UtteranceCount, create.NotebookUsed, create.CreatedTs}

	stmt := `INSERT INTO context_snapshot (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create context snapshot: %w", err)
	}

	return create, nil
}

func (d *DB) GetContextSnapshot(ctx context.Context, find *store.FindContextSnapshot) (*store.ContextSnapshot, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.TurnUID != nil {
		where, args = append(where, "turn_uid = ?"), append(args, *find.TurnUID)
	}
	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = ?"), append(args, *find.ConversationID)
	}

	query := `SELECT ` + snapshotColumns + ` FROM context_snapshot WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id DESC LIMIT 1`
	s, err := scanContextSnapshot(d.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get context snapshot: %w", err)
	}

	return s, nil
}
