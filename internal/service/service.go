package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"storefront/catalogsync/internal/catalog"
	"storefront/catalogsync/internal/domain"
	"storefront/catalogsync/internal/domain/task"
	"storefront/catalogsync/internal/fetch"
	"storefront/catalogsync/internal/queue"
	"storefront/catalogsync/internal/repository"
)

// SyncResult summarizes one SyncAll run.
type SyncResult struct {
	Items        int // distinct items merged
	TotalCount   int // items the catalog reported for the query
	Chunks       int // background chunks scheduled
	LoadedChunks int
	FailedChunks int
}

type Service struct {
	repository  repository.CatalogRepository
	fetcher     fetch.Fetcher
	coordinator *fetch.Coordinator
	queue       queue.Queue
	clock       clock.Clock
	filters     domain.FilterState
	maxRetries  int
	minIdleTime time.Duration
}

func NewService(
	repository repository.CatalogRepository,
	fetcher fetch.Fetcher,
	coordinator *fetch.Coordinator,
	queue queue.Queue,
	clk clock.Clock,
	filters domain.FilterState,
	maxRetries int,
	minIdleTime time.Duration,
) *Service {
	if clk == nil {
		clk = clock.New()
	}
	if minIdleTime <= 0 {
		minIdleTime = time.Minute
	}
	return &Service{
		repository:  repository,
		fetcher:     fetcher,
		coordinator: coordinator,
		queue:       queue,
		clock:       clk,
		filters:     filters,
		maxRetries:  maxRetries,
		minIdleTime: minIdleTime,
	}
}

// SyncAll loads the configured part of the catalog with a background fill and
// mirrors every page to the repository as it arrives. It returns once all
// chunks are done or ctx ends.
func (s *Service) SyncAll(ctx context.Context) (*SyncResult, error) {
	log.Infof("🔄 Syncing catalog (category=%q gender=%q season=%q, %d per page)",
		s.filters.Category, s.filters.Gender, s.filters.Season, s.filters.PageSize)

	merged := catalog.NewMerged()
	fill, err := s.coordinator.Fill(ctx, s.filters, merged, func(chunk int, page *domain.CatalogPage) {
		s.mirror(ctx, page)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load first catalog page: %w", err)
	}
	s.mirror(ctx, fill.First)

	done := make(chan struct{})
	go func() {
		fill.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		fill.Cancel()
		<-done
		return nil, ctx.Err()
	}

	loaded, failed := fill.Stats()
	result := &SyncResult{
		Items:        merged.Len(),
		TotalCount:   fill.First.TotalCount,
		Chunks:       fill.Chunks,
		LoadedChunks: loaded,
		FailedChunks: failed,
	}

	log.Infof("✅ Synced %d of %d items (%d/%d chunks, %d failed)",
		result.Items, result.TotalCount, result.LoadedChunks, result.Chunks, result.FailedChunks)
	return result, nil
}

func (s *Service) mirror(ctx context.Context, page *domain.CatalogPage) {
	if err := s.repository.SaveItems(ctx, page.Items); err != nil {
		log.Errorf("❌ Failed to mirror page %d: %v", page.Page, err)
	}
}

// RunRetryWorkers consumes queued chunk retries with numWorkers consumers
// until ctx ends.
func (s *Service) RunRetryWorkers(ctx context.Context, numWorkers int) error {
	if numWorkers < 1 {
		numWorkers = 1
	}

	stream := queue.StreamName(task.ChunkRetryType)
	var wg sync.WaitGroup

	// Auto-claimer for messages abandoned by crashed consumers
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := s.clock.Ticker(s.minIdleTime)
		defer ticker.Stop()
		consumer := "autoclaimer-" + uuid.NewString()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				claimed, err := s.queue.AutoClaim(ctx, consumer, stream, s.minIdleTime)
				if err != nil {
					log.Errorf("❌ Failed to auto-claim messages for %s: %v", stream, err)
					continue
				}
				if len(claimed) > 0 {
					log.Infof("🔄 Auto-claimed %d chunk retries", len(claimed))
				}
				for _, msg := range claimed {
					if err := s.processMessage(ctx, stream, msg); err != nil {
						log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
					}
				}
			}
		}
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("retry-worker-%d-%s", workerID, uuid.NewString())
			log.Infof("🚀 Starting retry worker %d as consumer %s", workerID, consumer)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 Retry worker %d stopping", workerID)
					return
				default:
					msg, err := s.queue.GetTask(ctx, consumer, stream)
					if err != nil {
						if ctx.Err() == nil {
							log.Errorf("❌ Failed to get task from %s: %v", stream, err)
						}
						continue
					}
					if msg == nil {
						continue
					}
					if err := s.processMessage(ctx, stream, *msg); err != nil {
						log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
					}
				}
			}
		}(i + 1)
	}

	wg.Wait()
	return nil
}

// processMessage refetches one chunk. The message is acked once the chunk is
// mirrored, requeued, or given up on; it stays pending only when requeueing
// failed.
func (s *Service) processMessage(ctx context.Context, stream string, msg redis.XMessage) error {
	retry, err := queue.DecodeChunkRetry(msg)
	if err != nil {
		// unreadable messages never succeed, drop them
		log.Errorf("❌ Dropping message %s: %v", msg.ID, err)
		return s.ack(ctx, stream, msg.ID)
	}

	if err := s.retryChunk(ctx, retry); err != nil {
		return err
	}
	return s.ack(ctx, stream, msg.ID)
}

func (s *Service) retryChunk(ctx context.Context, retry *task.ChunkRetryTask) error {
	attempt := retry.RetryCount + 1
	log.Infof("🔄 Retrying page %d (attempt %d)", retry.Page(), attempt)

	page, err := s.fetcher.Fetch(ctx, retry.Filters)
	if err != nil {
		if attempt >= s.maxRetries {
			log.Errorf("❌ Giving up on page %d after %d attempts: %v", retry.Page(), attempt, err)
			return nil
		}

		if _, addErr := s.queue.AddTask(ctx, retry.Next(err)); addErr != nil {
			return fmt.Errorf("failed to requeue page %d: %w", retry.Page(), addErr)
		}
		log.Warnf("🔄 Page %d failed again, requeued (attempt %d): %v", retry.Page(), attempt, err)
		return nil
	}

	if err := s.repository.SaveItems(ctx, page.Items); err != nil {
		return fmt.Errorf("failed to mirror recovered page %d: %w", retry.Page(), err)
	}

	log.Infof("✅ Recovered page %d with %d items after %d attempts", retry.Page(), len(page.Items), attempt)
	return nil
}

func (s *Service) ack(ctx context.Context, stream, msgID string) error {
	if err := s.queue.AckTask(ctx, stream, msgID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msgID, err)
	}
	return nil
}
