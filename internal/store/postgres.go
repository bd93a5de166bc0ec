package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"minicart/internal/domain"
)

// Postgres keeps the snapshot as a single row in cart_snapshots, keyed by the
// fixed cart key. The schema lives in internal/migrate.
type Postgres struct {
	pool   *pgxpool.Pool
	key    string
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, key string, logger *log.Logger) *Postgres {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Postgres{pool: pool, key: key, logger: logger}
}

// ConnectPostgres opens a pgx connection pool and verifies connectivity with
// a ping.
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func (p *Postgres) Load(ctx context.Context) (*domain.Snapshot, error) {
	const q = `
SELECT data
FROM cart_snapshots
WHERE key = $1
`
	var data []byte
	err := p.pool.QueryRow(ctx, q, p.key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot %q: %w", p.key, err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		p.logger.Printf("store: discarding unparsable snapshot under %q: %v", p.key, err)
		return nil, nil
	}
	return &snapshot, nil
}

func (p *Postgres) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	const q = `
INSERT INTO cart_snapshots (key, data, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE
SET data = EXCLUDED.data,
    updated_at = EXCLUDED.updated_at
`
	if _, err := p.pool.Exec(ctx, q, p.key, data); err != nil {
		return fmt.Errorf("upsert snapshot %q: %w", p.key, err)
	}
	return nil
}
