package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Pinger reports backing store health for the /health endpoint.
type Pinger struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

func NewPinger(pool *pgxpool.Pool, rdb *redis.Client) *Pinger {
	return &Pinger{pool: pool, rdb: rdb}
}

// Ping returns the first store that fails to answer.
func (p *Pinger) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if err := p.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}
