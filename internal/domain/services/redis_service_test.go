package services

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	Logger "rwportal-http-service/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisService) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisServiceWithClient(client, time.Minute)
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("acquire and release", func(t *testing.T) {
		mr, svc := newTestRedis(t)
		require.NoError(t, svc.Ping(ctx))

		release, err := svc.Acquire(ctx, "dues:generate:2024-03")
		require.NoError(t, err)
		assert.True(t, mr.Exists("rwportal:lock:dues:generate:2024-03"))
		assert.Equal(t, time.Minute, mr.TTL("rwportal:lock:dues:generate:2024-03"))

		_, err = svc.Acquire(ctx, "dues:generate:2024-03")
		assert.ErrorIs(t, err, ErrLockHeld)

		other, err := svc.Acquire(ctx, "dues:generate:2024-04")
		require.NoError(t, err)
		other()

		release()
		assert.False(t, mr.Exists("rwportal:lock:dues:generate:2024-03"))

		again, err := svc.Acquire(ctx, "dues:generate:2024-03")
		require.NoError(t, err)
		again()
	})

	t.Run("stale release keeps new holder", func(t *testing.T) {
		mr, svc := newTestRedis(t)

		stale, err := svc.Acquire(ctx, "k")
		require.NoError(t, err)
		mr.FastForward(2 * time.Minute)

		fresh, err := svc.Acquire(ctx, "k")
		require.NoError(t, err)
		stale()
		assert.True(t, mr.Exists("rwportal:lock:k"))

		fresh()
		assert.False(t, mr.Exists("rwportal:lock:k"))
	})

	t.Run("connection error is not reported as held", func(t *testing.T) {
		mr, svc := newTestRedis(t)
		mr.Close()

		_, err := svc.Acquire(ctx, "k")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrLockHeld)
	})

	t.Run("failed release is logged", func(t *testing.T) {
		mr, svc := newTestRedis(t)
		release, err := svc.Acquire(ctx, "dues:generate:2024-03")
		require.NoError(t, err)

		var buf bytes.Buffer
		Logger.SetOutput(&buf)
		t.Cleanup(func() { Logger.SetOutput(io.Discard) })

		mr.Close()
		release()
		assert.Contains(t, buf.String(), "释放锁失败")
		assert.Contains(t, buf.String(), "rwportal:lock:dues:generate:2024-03")

		// 重复释放不会再次访问Redis
		buf.Reset()
		release()
		assert.Empty(t, buf.String())
	})
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	release, err := l.Acquire(ctx, "a")
	require.NoError(t, err)
	_, err = l.Acquire(ctx, "a")
	assert.ErrorIs(t, err, ErrLockHeld)

	release()
	// 重复释放不影响新的持有者
	next, err := l.Acquire(ctx, "a")
	require.NoError(t, err)
	release()
	_, err = l.Acquire(ctx, "a")
	assert.ErrorIs(t, err, ErrLockHeld)
	next()
}

func TestRedisLockerBacksDuesService(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedBillingFixture(t, db)
	_, locker := newTestRedis(t)
	svc := NewDuesService(NewGormDuesStore(db), testZones(t), locker, nil, 20)

	release, err := locker.Acquire(ctx, "dues:generate:2024-03")
	require.NoError(t, err)
	_, err = svc.GenerateBills(ctx, rwAdmin(), "2024-03")
	assert.ErrorIs(t, err, ErrGenerationInProgress)
	release()

	result, err := svc.GenerateBills(ctx, rwAdmin(), "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)
}
