package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/parley/store"
)

func (d *DB) CreateNotebookEntry(ctx context.Context, create *store.NotebookEntry) (*store.NotebookEntry, error) {
	fields := []string{"conversation_id", "speaker_id", "content", "created_ts"}
	args := []any{create.ConversationID, create.SpeakerID, create.Content, create.CreatedTs}

	stmt := `INSERT INTO notebook_entry (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create notebook entry: %w", err)
	}

	return create, nil
}

func (d *DB) ListNotebookEntries(ctx context.Context, find *store.FindNotebookEntry) ([]*store.NotebookEntry, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = ?"), append(args, *find.ConversationID)
	}
	if find.SpeakerID != nil {
		where, args = append(where, "speaker_id = ?"), append(args, *find.SpeakerID)
	}

	query := `SELECT id, conversation_id, speaker_id, content, created_ts
		FROM notebook_entry WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notebook entries: %w", err)
	}
	defer rows.Close()

	list := make([]*store.NotebookEntry, 0)
	for rows.Next() {
		e := &store.NotebookEntry{}
		if err := rows.Scan(&e.ID, &e.ConversationID, &e.SpeakerID, &e.Content, &e.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan notebook entry: %w", err)
		}
		list = append(list, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notebook entries: %w", err)
	}

	return list, nil
}
