package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/markdave123-py/scipaper/internal/models"
)

// UpsertVectors writes all records in one transaction, replacing vectors
// stored under the same id.
func (c *DatabaseClient) UpsertVectors(ctx context.Context, records []models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if c.embedDim > 0 && len(r.Embedding) != c.embedDim {
			return fmt.Errorf("vector %s has %d dimensions, index expects %d", r.ID, len(r.Embedding), c.embedDim)
		}
	}

	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO chunk_embeddings (id, document_id, embedding, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			embedding = EXCLUDED.embedding,
			updated_at = now()
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.DocumentID, pgvector.NewVector(r.Embedding)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert vector %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// QueryVectors ranks by cosine similarity, optionally restricted to documentIDs.
func (c *DatabaseClient) QueryVectors(ctx context.Context, vec []float32, topK int, documentIDs []string) ([]models.VectorMatch, error) {
	if topK <= 0 {
		return nil, nil
	}

	const all = `
		SELECT id, 1 - (embedding <=> $1) AS score
		FROM chunk_embeddings
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	const scoped = `
		SELECT id, 1 - (embedding <=> $1) AS score
		FROM chunk_embeddings
		WHERE document_id = ANY($3)
		ORDER BY embedding <=> $1
		LIMIT $2
	`

	var (
		rows *sql.Rows
		err  error
	)
	qv := pgvector.NewVector(vec)
	if len(documentIDs) == 0 {
		rows, err = c.db.QueryContext(ctx, all, qv, topK)
	} else {
		rows, err = c.db.QueryContext(ctx, scoped, qv, topK, documentIDs)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.VectorMatch
	for rows.Next() {
		var m models.VectorMatch
		if err := rows.Scan(&m.ID, &m.Score); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
