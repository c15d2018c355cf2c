package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"balanceboard/internal/artifact"
)

// dialect differs only in bind-parameter syntax.
type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

// SQLStore keeps records in a decision_records table. Tracks are stored as
// a JSON column; created_at is Unix milliseconds so both backends share DDL.
type SQLStore struct {
	db         *sql.DB
	dialect    dialect
	schemaOnce sync.Once
	schemaErr  error
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS decision_records (
	id              TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	problem         TEXT NOT NULL,
	chosen_decision TEXT NOT NULL,
	chosen_outcome  TEXT NOT NULL DEFAULT '',
	score           INTEGER NOT NULL,
	query_count     INTEGER NOT NULL,
	tracks          TEXT NOT NULL,
	created_at      BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS decision_records_user_idx ON decision_records (user_id, created_at DESC);
`

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		for _, stmt := range strings.Split(schemaDDL, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				s.schemaErr = fmt.Errorf("ensure schema: %w", err)
				return
			}
		}
	})
	return s.schemaErr
}

// bind rewrites $n placeholders for drivers that expect '?'.
func (s *SQLStore) bind(query string) string {
	if s.dialect != dialectSQLite {
		return query
	}
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '$' {
			j := i + 1
			for j < len(query) && query[j] >= '0' && query[j] <= '9' {
				j++
			}
			if j > i+1 {
				if _, err := strconv.Atoi(query[i+1 : j]); err == nil {
					b.WriteByte('?')
					i = j - 1
					continue
				}
			}
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *SQLStore) Save(ctx context.Context, rec artifact.DecisionRecord) error {
	if err := checkRecord(rec); err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	tracks, err := json.Marshal(rec.Tracks)
	if err != nil {
		return fmt.Errorf("marshal tracks: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, s.bind(`
INSERT INTO decision_records (id, session_id, user_id, problem, chosen_decision, chosen_outcome, score, query_count, tracks, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
	chosen_decision = excluded.chosen_decision,
	chosen_outcome = excluded.chosen_outcome,
	score = excluded.score,
	query_count = excluded.query_count,
	tracks = excluded.tracks`),
		rec.ID, rec.SessionID, rec.UserID, rec.Problem, rec.ChosenDecision, rec.ChosenOutcome,
		rec.Score, rec.QueryCount, string(tracks), rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save decision %s: %w", rec.ID, err)
	}
	return nil
}

const selectColumns = `id, session_id, user_id, problem, chosen_decision, chosen_outcome, score, query_count, tracks, created_at`

func (s *SQLStore) Get(ctx context.Context, id string) (artifact.DecisionRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return artifact.DecisionRecord{}, fmt.Errorf("id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return artifact.DecisionRecord{}, err
	}
	row := s.db.QueryRowContext(ctx, s.bind(`SELECT `+selectColumns+` FROM decision_records WHERE id = $1`), id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return artifact.DecisionRecord{}, ErrNotFound
	}
	return rec, err
}

func (s *SQLStore) ListByUser(ctx context.Context, userID string, limit int) ([]artifact.DecisionRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.bind(`SELECT `+selectColumns+` FROM decision_records
WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`), userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	out := make([]artifact.DecisionRecord, 0, 16)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (artifact.DecisionRecord, error) {
	var (
		rec     artifact.DecisionRecord
		tracks  string
		created int64
	)
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.UserID, &rec.Problem, &rec.ChosenDecision,
		&rec.ChosenOutcome, &rec.Score, &rec.QueryCount, &tracks, &created); err != nil {
		return artifact.DecisionRecord{}, err
	}
	if err := json.Unmarshal([]byte(tracks), &rec.Tracks); err != nil {
		return artifact.DecisionRecord{}, fmt.Errorf("decode tracks of %s: %w", rec.ID, err)
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	return rec, nil
}
