package db

import (
	"context"
	"database/sql"
)

func (c *DatabaseClient) PutSummary(ctx context.Context, paperID, summary string) error {
	const q = `
		INSERT INTO paper_summaries (paper_id, summary, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (paper_id) DO UPDATE SET summary = EXCLUDED.summary, updated_at = now()
	`
	_, err := c.db.ExecContext(ctx, q, paperID, summary)
	return err
}

func (c *DatabaseClient) GetSummary(ctx context.Context, paperID string) (string, bool, error) {
	var summary string
	err := c.db.QueryRowContext(ctx, `SELECT summary FROM paper_summaries WHERE paper_id = $1`, paperID).Scan(&summary)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return summary, true, nil
}
