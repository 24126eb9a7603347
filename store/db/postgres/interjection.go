package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hrygo/parley/store"
)

func (d *DB) CreateInterjection(ctx context.Context, create *store.Interjection) (*store.Interjection, error) {
	fields := []string{"uid", "conversation_id", "content", "after_round", "processed", "created_ts"}
	args := []any{create.UID, create.ConversationID, create.Content, create.AfterRound, create.Processed, create.CreatedTs}

	stmt := `INSERT INTO interjection (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create interjection: %w", err)
	}

	return create, nil
}

func (d *DB) ListInterjections(ctx context.Context, find *store.FindInterjection) ([]*store.Interjection, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = "+placeholder(len(args)+1)), append(args, *find.ConversationID)
	}
	if find.Processed != nil {
		where, args = append(where, "processed = "+placeholder(len(args)+1)), append(args, *find.Processed)
	}

	query := `SELECT id, uid, conversation_id, content, after_round, processed, created_ts
		FROM interjection WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interjections: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Interjection, 0)
	for rows.Next() {
		i := &store.Interjection{}
		if err := rows.Scan(&i.ID, &i.UID, &i.ConversationID, &i.Content, &i.AfterRound, &i.Processed, &i.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan interjection: %w", err)
		}
		list = append(list, i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interjections: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateInterjection(ctx context.Context, update *store.UpdateInterjection) (*store.Interjection, error) {
	if update.Processed == nil {
		return nil, store.ErrNoFieldsToUpdate
	}

	stmt := `UPDATE interjection SET processed = $1 WHERE id = $2
		RETURNING id, uid, conversation_id, content, after_round, processed, created_ts`
	i := &store.Interjection{}
	err := d.db.QueryRowContext(ctx, stmt, *update.Processed, update.ID).Scan(
		&i.ID, &i.UID, &i.ConversationID, &i.Content, &i.AfterRound, &i.Processed, &i.CreatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update interjection: %w", err)
	}

	return i, nil
}
