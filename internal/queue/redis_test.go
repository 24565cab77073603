package queue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nfccard-backend/internal/config"
)

func newTestQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	q := NewRedisQueue(client, "test:retry")
	t.Cleanup(func() { q.Close() })
	return q, mr
}

func TestRedisQueue_FIFO(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)
	require.NoError(t, q.Ping(ctx))

	require.NoError(t, q.Push(ctx, NotificationJob{ApplicationID: 1, Channel: ChannelAdmin}))
	require.NoError(t, q.Push(ctx, NotificationJob{ApplicationID: 2, Channel: ChannelApplicant, Attempts: 2, LastError: "timeout"}))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	first, err := q.Pop(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int64(1), first.ApplicationID)
	assert.Equal(t, ChannelAdmin, first.Channel)
	assert.False(t, first.EnqueuedAt.IsZero())

	second, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Attempts)
	assert.Equal(t, "timeout", second.LastError)

	empty, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestRedisQueue_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	q, mr := newTestQueue(t)

	_, err := mr.Lpush("test:retry", "not-json")
	require.NoError(t, err)

	_, err = q.Pop(ctx)
	assert.ErrorContains(t, err, "decode")
}

func TestRedisQueue_Unavailable(t *testing.T) {
	ctx := context.Background()
	q, mr := newTestQueue(t)
	mr.Close()

	assert.Error(t, q.Push(ctx, NotificationJob{ApplicationID: 1, Channel: ChannelAdmin}))
}
