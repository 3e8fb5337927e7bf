package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radiolink/catalog/internal/config"
	"radiolink/catalog/internal/domain/task"
)

const group = "radiolink_consumer"

func newQueue(t *testing.T) (Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	q, err := NewRedisQueue(context.Background(), rdb, config.RedisConfig{ConsumerGroup: group})
	require.NoError(t, err)
	q.(*RedisQueue).readBlock = 10 * time.Millisecond
	return q, mr
}

func TestEnsureStreamsExistIsIdempotent(t *testing.T) {
	q, mr := newQueue(t)
	for _, taskType := range task.Types {
		assert.True(t, mr.Exists(StreamName(taskType)))
	}
	require.NoError(t, q.EnsureStreamsExist(context.Background()))
}

func TestAddGetAck(t *testing.T) {
	ctx := context.Background()
	q, _ := newQueue(t)

	id, err := q.AddTask(ctx, &task.CatalogRefreshTask{Reason: "webhook", DocumentID: "p1"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stream := StreamName(task.CatalogRefreshTaskType)
	msg, err := q.GetTask(ctx, group, "worker-1", stream)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, id, msg.ID)
	assert.Equal(t, task.CatalogRefreshTaskType, msg.Values["task_type"])

	decoded, err := task.UnmarshalTask[*task.CatalogRefreshTask]([]byte(msg.Values["task_data"].(string)))
	require.NoError(t, err)
	assert.Equal(t, "webhook", decoded.Reason)
	assert.Equal(t, "p1", decoded.DocumentID)

	pending, err := q.Pending(ctx, stream, group)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)

	require.NoError(t, q.AckTask(ctx, stream, group, msg.ID))
	pending, err = q.Pending(ctx, stream, group)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestGetTaskEmptyStream(t *testing.T) {
	q, _ := newQueue(t)
	msg, err := q.GetTask(context.Background(), group, "worker-1", StreamName(task.RefreshRetryTaskType))
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestAutoClaimTakesOverUnackedMessages(t *testing.T) {
	ctx := context.Background()
	q, _ := newQueue(t)

	_, err := q.AddTask(ctx, &task.RefreshRetryTask{Reason: "periodic", RetryCount: 1})
	require.NoError(t, err)

	stream := StreamName(task.RefreshRetryTaskType)
	msg, err := q.GetTask(ctx, group, "crashed-worker", stream)
	require.NoError(t, err)
	require.NotNil(t, msg)

	claimed, err := q.AutoClaim(ctx, group, "autoclaimer", stream, 0)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, msg.ID, claimed[0].ID)
}
