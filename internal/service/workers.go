package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"radiolink/catalog/internal/domain/task"
	"radiolink/catalog/internal/queue"
)

// EnqueueRefresh asks the workers for a catalog refresh.
func (s *Service) EnqueueRefresh(ctx context.Context, reason, documentID string) (string, error) {
	id, err := s.queue.AddTask(ctx, &task.CatalogRefreshTask{
		Reason:      reason,
		DocumentID:  documentID,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to enqueue refresh: %w", err)
	}
	return id, nil
}

// RunScheduler refreshes the catalog every refresh interval until ctx is done.
func (s *Service) RunScheduler(ctx context.Context) error {
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				log.Warnf("🔄 Periodic refresh failed, next attempt in %s", s.refreshInterval)
			}
		}
	}
}

func (s *Service) RunWorkers(ctx context.Context, numWorkers int) error {
	var wg sync.WaitGroup

	s.runWorkersForStream(ctx, &wg, numWorkers, queue.StreamName(task.CatalogRefreshTaskType), "main")
	s.runWorkersForStream(ctx, &wg, max(1, numWorkers/2), queue.StreamName(task.RefreshRetryTaskType), "retry")

	wg.Wait()
	return nil
}

func (s *Service) runWorkersForStream(ctx context.Context, wg *sync.WaitGroup, numWorkers int, streamName, workerType string) {
	// Auto-claimer for this stream
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.minIdleTime)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				consumer := fmt.Sprintf("autoclaimer-%s-%d", workerType, time.Now().UnixNano())
				claimedMessages, err := s.queue.AutoClaim(ctx, s.groupName, consumer, streamName, s.minIdleTime)
				if err != nil {
					log.Errorf("❌ Failed to auto-claim messages for %s: %v", streamName, err)
					continue
				}
				if len(claimedMessages) > 0 {
					log.Infof("🔄 Auto-claimed %d messages from %s stream", len(claimedMessages), workerType)
					for _, msg := range claimedMessages {
						if err := s.processMessage(ctx, &msg); err != nil {
							log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("%s-worker-%d", workerType, workerID)
			log.Infof("🚀 Starting %s worker %d as consumer %s", workerType, workerID, consumer)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 %s worker %d stopping", workerType, workerID)
					return
				default:
					msg, err := s.queue.GetTask(ctx, s.groupName, consumer, streamName)
					if err != nil {
						if ctx.Err() == nil {
							log.Errorf("❌ Failed to get task from %s: %v", streamName, err)
							pause(ctx, getTaskBackoff)
						}
						continue
					}

					if msg != nil {
						if err := s.processMessage(ctx, msg); err != nil {
							log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}(i + 1)
	}
}

func (s *Service) processMessage(ctx context.Context, msg *redis.XMessage) error {
	taskType, ok := msg.Values["task_type"].(string)
	if !ok {
		return fmt.Errorf("invalid task type in message %s", msg.ID)
	}

	taskData, ok := msg.Values["task_data"].(string)
	if !ok {
		return fmt.Errorf("invalid task data in message %s", msg.ID)
	}

	switch taskType {
	case task.CatalogRefreshTaskType:
		refreshTask, err := task.UnmarshalTask[*task.CatalogRefreshTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal catalog refresh task data: %w", err)
		}
		s.refresh(ctx, refreshTask)

	case task.RefreshRetryTaskType:
		retryTask, err := task.UnmarshalTask[*task.RefreshRetryTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal retry task data: %w", err)
		}
		if err := s.retryRefresh(ctx, retryTask); err != nil {
			return fmt.Errorf("failed to retry refresh: %w", err)
		}

	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}

	if err := s.queue.AckTask(ctx, queue.StreamName(taskType), s.groupName, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	return nil
}

func (s *Service) refresh(ctx context.Context, refreshTask *task.CatalogRefreshTask) {
	// Requests that predate the served CMS snapshot are already satisfied
	if source, fetchedAt := s.Source(); source == SourceCMS && fetchedAt.After(refreshTask.RequestedAt) {
		log.Debugf("Skipping %s refresh requested at %s, catalog is newer", refreshTask.Reason, refreshTask.RequestedAt)
		return
	}

	log.Infof("🔄 Refreshing catalog (%s %s)", refreshTask.Reason, refreshTask.DocumentID)
	if err := s.Refresh(ctx); err != nil {
		retryTask := &task.RefreshRetryTask{
			Reason:     refreshTask.Reason,
			RetryCount: 0,
			Error:      err.Error(),
		}

		if _, addErr := s.queue.AddTask(ctx, retryTask); addErr != nil {
			log.Errorf("❌ Failed to add retry task for %s refresh: %v", refreshTask.Reason, addErr)
		} else {
			log.Warnf("🔄 Added %s refresh to retry queue due to error: %v", refreshTask.Reason, err)
		}
	}
}

func (s *Service) retryRefresh(ctx context.Context, retryTask *task.RefreshRetryTask) error {
	retryTask.RetryCount++

	log.Infof("🔄 Retrying %s refresh (attempt %d of %d)", retryTask.Reason, retryTask.RetryCount, s.maxRetries)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(retryBackoff(retryTask.RetryCount)):
	}

	err := s.Refresh(ctx)
	if err == nil {
		log.Infof("✅ Recovered %s refresh after %d attempts", retryTask.Reason, retryTask.RetryCount)
		return nil
	}

	if retryTask.RetryCount >= s.maxRetries {
		log.Errorf("❌ Giving up on %s refresh after %d attempts: %v", retryTask.Reason, retryTask.RetryCount, err)
		return nil
	}

	newRetryTask := &task.RefreshRetryTask{
		Reason:     retryTask.Reason,
		RetryCount: retryTask.RetryCount,
		Error:      err.Error(),
	}
	if _, addErr := s.queue.AddTask(ctx, newRetryTask); addErr != nil {
		log.Errorf("❌ Failed to re-add retry task for %s refresh: %v", retryTask.Reason, addErr)
		return addErr
	}

	log.Warnf("🔄 %s refresh failed again, will retry (attempt %d): %v", retryTask.Reason, retryTask.RetryCount, err)
	return nil
}

var (
	retryBackoffUnit = time.Second
	getTaskBackoff   = 2 * time.Second
)

// pause sleeps for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func retryBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * retryBackoffUnit
}
