// Package queue holds failed notification deliveries for later retry.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nfccard-backend/internal/config"
)

type Channel string

const (
	ChannelAdmin     Channel = "admin"
	ChannelApplicant Channel = "applicant"
)

// NotificationJob is one undelivered email awaiting retry.
type NotificationJob struct {
	ApplicationID int64     `json:"applicationId"`
	Channel       Channel   `json:"channel"`
	Attempts      int       `json:"attempts"`
	LastError     string    `json:"lastError,omitempty"`
	EnqueuedAt    time.Time `json:"enqueuedAt"`
}

type RetryQueue interface {
	Push(ctx context.Context, job NotificationJob) error
	// Pop returns nil, nil when the queue is empty.
	Pop(ctx context.Context) (*NotificationJob, error)
	Len(ctx context.Context) (int64, error)
}

// RedisQueue is a FIFO list: LPUSH on enqueue, RPOP on dequeue.
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

// Ping tests the Redis connection
func (q *RedisQueue) Ping(ctx context.Context) error {
	if err := q.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (q *RedisQueue) Push(ctx context.Context, job NotificationJob) error {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode notification job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue notification job: %w", err)
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context) (*NotificationJob, error) {
	data, err := q.client.RPop(ctx, q.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue notification job: %w", err)
	}
	var job NotificationJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode notification job: %w", err)
	}
	return &job, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}
