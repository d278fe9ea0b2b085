package services

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/travel-point/api-go/metrics"
	"go.uber.org/zap"
)

// RefetchTopic carries places whose image lookup failed or timed out.
const RefetchTopic = "images.refetch"

// Refresher re-resolves a place's image if no fresh cache entry exists.
type Refresher interface {
	Refresh(ctx context.Context, ref PlaceRef) (bool, error)
}

// RefetchQueue retries image lookups off the request path. Publishing never
// blocks a request; consumers are idempotent because Refresh checks the cache
// before fetching and the cache write is an upsert.
type RefetchQueue struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	refresher  Refresher
	workers    int
	log        *zap.Logger
}

func NewRefetchQueue(pub message.Publisher, sub message.Subscriber, refresher Refresher, workers int, log *zap.Logger) *RefetchQueue {
	if workers <= 0 {
		workers = 1
	}
	return &RefetchQueue{
		publisher:  pub,
		subscriber: sub,
		refresher:  refresher,
		workers:    workers,
		log:        log.With(zap.String("component", "refetch_queue")),
	}
}

func (q *RefetchQueue) Submit(ref PlaceRef) {
	payload, err := json.Marshal(ref)
	if err != nil {
		q.log.Error("encode refetch job", zap.Uint("id", ref.ID), zap.Error(err))
		metrics.RefetchQueueTotal.WithLabelValues("dropped").Inc()
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := q.publisher.Publish(RefetchTopic, msg); err != nil {
		q.log.Warn("publish refetch job", zap.Uint("id", ref.ID), zap.Error(err))
		metrics.RefetchQueueTotal.WithLabelValues("dropped").Inc()
		return
	}
	metrics.RefetchQueueTotal.WithLabelValues("submitted").Inc()
}

// Run consumes jobs until ctx is cancelled or the subscription closes.
func (q *RefetchQueue) Run(ctx context.Context) error {
	messages, err := q.subscriber.Subscribe(ctx, RefetchTopic)
	if err != nil {
		return err
	}

	q.log.Info("refetch workers started", zap.Int("workers", q.workers))

	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range messages {
				q.handle(ctx, msg)
			}
		}()
	}
	wg.Wait()
	return nil
}

// handle always acks: a failed refetch is recorded and left for the next
// request to resubmit.
func (q *RefetchQueue) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var ref PlaceRef
	if err := json.Unmarshal(msg.Payload, &ref); err != nil {
		q.log.Warn("decode refetch job", zap.String("message_id", msg.UUID), zap.Error(err))
		metrics.RefetchQueueTotal.WithLabelValues("failed").Inc()
		return
	}

	fetched, err := q.refresher.Refresh(ctx, ref)
	switch {
	case err != nil:
		q.log.Warn("refetch image",
			zap.String("category", string(ref.Category)),
			zap.Uint("id", ref.ID),
			zap.Error(err),
		)
		metrics.RefetchQueueTotal.WithLabelValues("failed").Inc()
	case !fetched:
		metrics.RefetchQueueTotal.WithLabelValues("skipped").Inc()
	default:
		metrics.RefetchQueueTotal.WithLabelValues("stored").Inc()
	}
}
