package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/parley/store"
)

func (d *DB) CreateParticipant(ctx context.Context, create *store.Participant) (*store.Participant, error) {
	fields := []string{"uid", "conversation_id", "name", "coordinator", "created_ts"}
	args := []any{create.UID, create.ConversationID, create.Name, create.Coordinator, create.CreatedTs}

	stmt := `INSERT INTO participant (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	return create, nil
}

func (d *DB) ListParticipants(ctx context.Context, find *store.FindParticipant) ([]*store.Participant, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = "+placeholder(len(args)+1)), append(args, *find.ConversationID)
	}

	query := `SELECT id, uid, conversation_id, name, coordinator, created_ts
		FROM participant WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Participant, 0)
	for rows.Next() {
		p := &store.Participant{}
		if err := rows.Scan(&p.ID, &p.UID, &p.ConversationID, &p.Name, &p.Coordinator, &p.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return list, nil
}
