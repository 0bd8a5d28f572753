package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/jhoicas/pos-backoffice/internal/application/transfer"
	"github.com/redis/go-redis/v9"
)

var _ transfer.Locker = (*Locker)(nil)

// Locker lock distribuido con redsync; un solo intento, sin reintentos.
type Locker struct {
	rs     *redsync.Redsync
	expiry time.Duration
}

// NewLocker construye el locker sobre el cliente. expiry <= 0 usa 30s.
func NewLocker(client redis.UniversalClient, expiry time.Duration) *Locker {
	if expiry <= 0 {
		expiry = 30 * time.Second
	}
	return &Locker{rs: redsync.New(goredis.NewPool(client)), expiry: expiry}
}

// TryLock intenta tomar key una sola vez. acquired=false sin error si otro proceso lo tiene.
func (l *Locker) TryLock(ctx context.Context, lockKey string) (func(context.Context) error, bool, error) {
	mutex := l.rs.NewMutex(
		key(lockKey),
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(1),
	)
	if err := mutex.LockContext(ctx); err != nil {
		if isLockContention(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("acquire lock %s: %w", lockKey, err)
	}
	release := func(ctx context.Context) error {
		ok, err := mutex.UnlockContext(ctx)
		if err != nil {
			return fmt.Errorf("release lock %s: %w", lockKey, err)
		}
		if !ok {
			return fmt.Errorf("lock %s was not held", lockKey)
		}
		return nil
	}
	return release, true, nil
}

// redsync devuelve ErrFailed o ErrTaken según la versión cuando la clave ya está tomada.
func isLockContention(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "lock already taken") || strings.Contains(msg, "failed to acquire lock")
}
