package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hrygo/parley/store"
)

func (d *DB) CreateUtterance(ctx context.Context, create *store.Utterance) (*store.Utterance, error) {
	fields := []string{"uid", "conversation_id", "speaker_id", "content", "addressed_to", "round", "weight", "kind", "created_ts"}
	args := []any{create.UID, create.ConversationID, create.SpeakerID, create.Content, create.AddressedTo, create.Round, create.Weight, create.Kind, create.CreatedTs}

	stmt := `INSERT INTO utterance (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create utterance: %w", err)
	}

	return create, nil
}

func (d *DB) ListUtterances(ctx context.Context, find *store.FindUtterance) ([]*store.Utterance, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = ?"), append(args, *find.UID)
	}
	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = ?"), append(args, *find.ConversationID)
	}
	if find.Round != nil {
		where, args = append(where, "round = ?"), append(args, *find.Round)
	}
	if find.MinRound != nil {
		where, args = append(where, "round >= ?"), append(args, *find.MinRound)
	}
	if find.MaxRound != nil {
		where, args = append(where, "round <= ?"), append(args, *find.MaxRound)
	}
	if find.AfterID != nil {
		where, args = append(where, "id > ?"), append(args, *find.AfterID)
	}
	if len(find.Kinds) > 0 {
		marks := make([]string, 0, len(find.Kinds))
		for _, kind := range find.Kinds {
			marks, args = append(marks, "?"), append(args, kind)
		}
		where = append(where, "kind IN ("+strings.Join(marks, ", ")+")")
	}

	query := `SELECT id, uid, conversation_id, speaker_id, content, addressed_to, round, weight, kind, created_ts
		FROM utterance WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list utterances: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Utterance, 0)
	for rows.Next() {
		u := &store.Utterance{}
		if err := rows.Scan(&u.ID, &u.UID, &u.ConversationID, &u.SpeakerID, &u.Content, &u.AddressedTo, &u.Round, &u.Weight, &u.Kind, &u.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan utterance: %w", err)
		}
		list = append(list, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate utterances: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateUtterance(ctx context.Context, update *store.UpdateUtterance) (*store.Utterance, error) {
	if update.Weight == nil {
		return nil, store.ErrNoFieldsToUpdate
	}

	stmt := `UPDATE utterance SET weight = ? WHERE id = ?
		RETURNING id, uid, conversation_id, speaker_id, content, addressed_to, round, weight, kind, created_ts`
	u := &store.Utterance{}
	err := d.db.QueryRowContext(ctx, stmt, *update.Weight, update.ID).Scan(
		&u.ID, &u.UID, &u.ConversationID, &u.SpeakerID, &u.Content, &u.AddressedTo, &u.Round, &u.Weight, &u.Kind, &u.CreatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update utterance: %w", err)
	}

	return u, nil
}
