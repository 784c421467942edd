package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"storefront/catalogsync/internal/domain"
	"storefront/catalogsync/internal/domain/task"
)

// TaskAdder is the producing side of a Queue.
type TaskAdder interface {
	AddTask(ctx context.Context, task task.Task) (string, error)
}

// ChunkRetrySink queues background chunks that failed during a fill.
type ChunkRetrySink struct {
	queue TaskAdder
}

func NewChunkRetrySink(queue TaskAdder) *ChunkRetrySink {
	return &ChunkRetrySink{queue: queue}
}

func (s *ChunkRetrySink) ChunkFailed(ctx context.Context, filters domain.FilterState, err error) {
	t := &task.ChunkRetryTask{Filters: filters}
	if err != nil {
		t.Error = err.Error()
	}

	if _, addErr := s.queue.AddTask(ctx, t); addErr != nil {
		log.Errorf("❌ Failed to queue retry for page %d: %v", filters.Page, addErr)
		return
	}
	log.Infof("📥 Queued retry for page %d", filters.Page)
}

// DecodeChunkRetry reads a ChunkRetryTask from a stream message.
func DecodeChunkRetry(msg redis.XMessage) (*task.ChunkRetryTask, error) {
	raw, ok := msg.Values["task_data"]
	if !ok {
		return nil, fmt.Errorf("message %s has no task_data", msg.ID)
	}
	data, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("message %s has task_data of type %T", msg.ID, raw)
	}

	t, err := task.UnmarshalTask[task.ChunkRetryTask]([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", msg.ID, err)
	}
	return t, nil
}
