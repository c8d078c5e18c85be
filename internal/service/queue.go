package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clipvault/internal/domain"
)

// QueueStatus is the reported state of a queued submission.
type QueueStatus string

const (
	QueuePending     QueueStatus = "pending"
	QueueDownloading QueueStatus = "downloading"
	QueueCompleted   QueueStatus = "completed"
	QueueError       QueueStatus = "error"
)

// QueueItem is a snapshot of one submission's progress.
type QueueItem struct {
	ID         string
	URL        string
	Status     QueueStatus
	Error      string
	RecordID   string
	EnqueuedAt time.Time
	UpdatedAt  time.Time
}

// Acquirer is the queue's view of the acquisition pipeline.
type Acquirer interface {
	Acquire(ctx context.Context, req domain.AcquisitionRequest) (*AcquireResult, error)
}

// Queue processes submissions strictly sequentially: one acquisition at a
// time, URLs deduplicated while still pending or running.
type Queue struct {
	pipeline Acquirer
	logger   zerolog.Logger

	mu    sync.Mutex
	items map[string]*queueEntry
	order []string
	work  chan string
}

type queueEntry struct {
	item QueueItem
	req  domain.AcquisitionRequest
}

func NewQueue(pipeline Acquirer, logger zerolog.Logger, capacity int) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	return &Queue{
		pipeline: pipeline,
		logger:   logger,
		items:    make(map[string]*queueEntry),
		work:     make(chan string, capacity),
	}
}

// Enqueue registers a request. Submitting a URL that is already pending or
// downloading returns the existing item instead of queueing a duplicate.
func (q *Queue) Enqueue(req domain.AcquisitionRequest) (QueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, id := range q.order {
		entry := q.items[id]
		if entry.item.URL == req.URL &&
			(entry.item.Status == QueuePending || entry.item.Status == QueueDownloading) {
			return entry.item, nil
		}
	}

	now := time.Now().UTC()
	entry := &queueEntry{
		item: QueueItem{
			ID:         uuid.NewString(),
			URL:        req.URL,
			Status:     QueuePending,
			EnqueuedAt: now,
			UpdatedAt:  now,
		},
		req: req,
	}

	select {
	case q.work <- entry.item.ID:
	default:
		return QueueItem{}, domain.ErrQueueFull
	}

	q.items[entry.item.ID] = entry
	q.order = append(q.order, entry.item.ID)
	return entry.item, nil
}

// Snapshot lists all known items in enqueue order.
func (q *Queue) Snapshot() []QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := make([]QueueItem, 0, len(q.order))
	for _, id := range q.order {
		items = append(items, q.items[id].item)
	}
	return items
}

// Run consumes the queue until ctx is cancelled. It never runs two
// acquisitions concurrently.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-q.work:
			q.process(ctx, id)
		}
	}
}

func (q *Queue) process(ctx context.Context, id string) {
	req, ok := q.transition(id, QueueDownloading, "", "")
	if !ok {
		return
	}

	result, err := q.pipeline.Acquire(ctx, req)
	if err != nil {
		q.logger.Warn().Err(err).Str("queue_item", id).Msg("queued acquisition failed")
		q.transition(id, QueueError, err.Error(), "")
		return
	}
	q.transition(id, QueueCompleted, "", result.Record.ID)
}

func (q *Queue) transition(id string, status QueueStatus, errMsg, recordID string) (domain.AcquisitionRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.items[id]
	if !ok {
		return domain.AcquisitionRequest{}, false
	}
	entry.item.Status = status
	entry.item.Error = errMsg
	entry.item.RecordID = recordID
	entry.item.UpdatedAt = time.Now().UTC()
	return entry.req, true
}
