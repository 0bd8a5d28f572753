package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jhoicas/pos-backoffice/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	_, err = New(context.Background(), config.RedisConfig{})
	assert.Error(t, err)
}

func TestInvoiceSequence_Next(t *testing.T) {
	mr, client := setupTestRedis(t)
	seq := NewInvoiceSequence(client)
	ctx := context.Background()
	day := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// otro día arranca de nuevo
	got, err := seq.Next(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	assert.Equal(t, "pos:transfer:invoice-seq:20260315", SequenceKey(day))
	assert.True(t, mr.TTL(SequenceKey(day)) > 0)
}

func TestInvoiceSequence_RedisDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	seq := NewInvoiceSequence(client)
	mr.Close()

	_, err := seq.Next(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestLocker_TryLock(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	a := NewLocker(client, 5*time.Second)
	b := NewLocker(client, 5*time.Second)

	release, acquired, err := a.TryLock(ctx, "lock:test")
	require.NoError(t, err)
	require.True(t, acquired)

	_, acquired, err = b.TryLock(ctx, "lock:test")
	require.NoError(t, err)
	assert.False(t, acquired, "el segundo intento no debe obtener el lock")

	require.NoError(t, release(ctx))

	release2, acquired, err := b.TryLock(ctx, "lock:test")
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, release2(ctx))
}
