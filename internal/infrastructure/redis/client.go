// Package redis agrupa lo que el motor de traslados guarda en Redis:
// la secuencia diaria de números de traslado y el lock distribuido del barrido de huérfanos.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/pos-backoffice/pkg/config"
	"github.com/redis/go-redis/v9"
)

const keyNamespace = "pos"

// New crea el cliente y verifica conectividad.
func New(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func key(parts ...string) string {
	k := keyNamespace
	for _, p := range parts {
		k += ":" + p
	}
	return k
}
