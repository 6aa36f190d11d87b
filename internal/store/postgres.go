// Package store archives verdicts in PostgreSQL for later review. The
// archive is optional; verification runs fine without it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// ErrNotFound reports a verdict ID that is not in the archive
var ErrNotFound = errors.New("verdict not found")

// Archive stores verdicts in PostgreSQL
type Archive struct {
	pool *pgxpool.Pool
}

// NewArchive connects to PostgreSQL and verifies the connection
func NewArchive(ctx context.Context, dsn string) (*Archive, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Archive{pool: pool}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS verdicts (
	id         TEXT PRIMARY KEY,
	question   TEXT NOT NULL,
	answer     TEXT NOT NULL,
	provider   TEXT NOT NULL DEFAULT '',
	model      TEXT NOT NULL DEFAULT '',
	score      DOUBLE PRECISION NOT NULL,
	tier       TEXT NOT NULL,
	flagged    BOOLEAN NOT NULL,
	degraded   BOOLEAN NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS verdicts_tier_idx ON verdicts (tier);
CREATE INDEX IF NOT EXISTS verdicts_created_at_idx ON verdicts (created_at DESC);
`

// EnsureSchema creates the verdicts table and indexes if they do not exist
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create verdicts schema: %w", err)
	}
	return nil
}

// Save upserts one verdict. Re-running a check with the same verdict ID
// replaces the stored copy.
func (a *Archive) Save(ctx context.Context, verdict *model.HallucinationVerdict) error {
	payload, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}

	_, err = a.pool.Exec(ctx, `
		INSERT INTO verdicts (id, question, answer, provider, model, score, tier, flagged, degraded, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			score      = EXCLUDED.score,
			tier       = EXCLUDED.tier,
			flagged    = EXCLUDED.flagged,
			degraded   = EXCLUDED.degraded,
			payload    = EXCLUDED.payload`,
		verdict.ID,
		verdict.Question,
		verdict.Answer,
		verdict.Provider,
		verdict.Model,
		verdict.Score,
		string(verdict.Tier),
		verdict.Flagged,
		verdict.IsDegraded(),
		payload,
		verdict.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save verdict %s: %w", verdict.ID, err)
	}

	return nil
}

// Get loads one verdict by ID
func (a *Archive) Get(ctx context.Context, id string) (*model.HallucinationVerdict, error) {
	var payload []byte
	err := a.pool.QueryRow(ctx, `SELECT payload FROM verdicts WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load verdict %s: %w", id, err)
	}

	var verdict model.HallucinationVerdict
	if err := json.Unmarshal(payload, &verdict); err != nil {
		return nil, fmt.Errorf("decode verdict %s: %w", id, err)
	}

	return &verdict, nil
}

// Recent returns the newest verdicts, flagged or not
func (a *Archive) Recent(ctx context.Context, limit int) ([]model.HallucinationVerdict, error) {
	if limit <= 0 {
		limit = 20
	}
	return a.list(ctx, `SELECT payload FROM verdicts ORDER BY created_at DESC LIMIT $1`, limit)
}

// Flagged returns the newest HIGH-tier verdicts
func (a *Archive) Flagged(ctx context.Context, limit int) ([]model.HallucinationVerdict, error) {
	if limit <= 0 {
		limit = 20
	}
	return a.list(ctx, `SELECT payload FROM verdicts WHERE flagged ORDER BY created_at DESC LIMIT $1`, limit)
}

func (a *Archive) list(ctx context.Context, query string, args ...interface{}) ([]model.HallucinationVerdict, error) {
	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []model.HallucinationVerdict
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan verdict row: %w", err)
		}

		var verdict model.HallucinationVerdict
		if err := json.Unmarshal(payload, &verdict); err != nil {
			return nil, fmt.Errorf("decode verdict row: %w", err)
		}
		verdicts = append(verdicts, verdict)
	}

	return verdicts, rows.Err()
}

// Close releases the connection pool
func (a *Archive) Close() {
	a.pool.Close()
}
