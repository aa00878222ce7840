package db

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/markdave123-py/scipaper/internal/models"
)

func (c *DatabaseClient) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg == nil {
		return errors.New("nil chat message")
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO chat_messages (id, session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, clock_timestamp()))
	`
	_, err := c.db.ExecContext(ctx, q, msg.ID, msg.SessionID, msg.Role, msg.Content, nullTime(msg.CreatedAt))
	return err
}

// RecentMessages selects the newest rows and returns them oldest first.
func (c *DatabaseClient) RecentMessages(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		return nil, nil
	}
	const q = `
		SELECT id, session_id, role, content, created_at FROM (
			SELECT id, session_id, role, content, created_at
			FROM chat_messages
			WHERE session_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
