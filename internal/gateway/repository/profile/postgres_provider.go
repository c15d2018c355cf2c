package profile

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"balanceboard/internal/artifact"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresProvider reads free-text context chunks from user_context_chunks.
type PostgresProvider struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresProvider(db *sql.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

func (p *PostgresProvider) ensureSchema(ctx context.Context) error {
	if p == nil || p.db == nil {
		return fmt.Errorf("db is nil")
	}
	p.schemaOnce.Do(func() {
		_, p.schemaErr = p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS user_context_chunks (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	})
	return p.schemaErr
}

func (p *PostgresProvider) FetchContext(ctx context.Context, userID string) (*artifact.PersonalizationContext, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	if err := p.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT content FROM user_context_chunks WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query context chunks: %w", err)
	}
	defer rows.Close()

	var chunks []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return merge(chunks), nil
}

func (p *PostgresProvider) AddChunk(ctx context.Context, userID, content string) error {
	if err := p.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := p.db.ExecContext(ctx, `INSERT INTO user_context_chunks (user_id, content) VALUES ($1, $2)`,
		strings.TrimSpace(userID), content)
	return err
}
