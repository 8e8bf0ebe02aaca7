package queue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// unreachableClient fails fast instead of talking to a real server.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRetryReturnsWithoutBlocking(t *testing.T) {
	q := NewQueue(unreachableClient(), zap.NewNop())
	job := &Job{ID: uuid.NewString(), Type: JobTypeResponseCount, Payload: []byte(`{}`)}

	start := time.Now()
	err := q.Retry(context.Background(), QueueResponseCounts, job)
	assert.Error(t, err, "redis is unreachable")
	assert.Less(t, time.Since(start), 2*time.Second, "retry must not stall the consumer")
	assert.Equal(t, 1, job.Attempt)
}

func TestRetryExhaustionTargetsDLQ(t *testing.T) {
	q := NewQueue(unreachableClient(), zap.NewNop())
	job := &Job{ID: uuid.NewString(), Type: JobTypeResponseCount, Payload: []byte(`{}`), Attempt: MaxRetries - 1}

	_ = q.Retry(context.Background(), QueueResponseCounts, job)
	require.Equal(t, MaxRetries, job.Attempt)
}
