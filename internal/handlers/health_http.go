package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alexliesenfeld/health"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Health reports readiness of the database and the role cache.
func Health(db *pgxpool.Pool, rdb *redis.Client) http.HandlerFunc {
	checker := health.NewChecker(
		health.WithCacheDuration(1*time.Second),
		health.WithTimeout(2*time.Second),
		health.WithCheck(health.Check{
			Name: "postgres",
			Check: func(ctx context.Context) error {
				if err := db.Ping(ctx); err != nil {
					return fmt.Errorf("failed to ping postgres: %w", err)
				}
				return nil
			},
			Timeout: 2 * time.Second,
		}),
		health.WithCheck(health.Check{
			Name: "redis",
			Check: func(ctx context.Context) error {
				if err := rdb.Ping(ctx).Err(); err != nil {
					return fmt.Errorf("failed to ping redis: %w", err)
				}
				return nil
			},
			Timeout: 2 * time.Second,
		}),
	)
	return health.NewHandler(checker)
}
