package services

import (
	"context"
	"errors"
	"time"

	"github.com/travel-point/api-go/logger"
	"github.com/travel-point/api-go/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RefetchSubmitter accepts places whose image lookup should be retried later.
type RefetchSubmitter interface {
	Submit(ref PlaceRef)
}

// Enricher resolves images for a page of places concurrently. Each lookup has
// its own deadline; a slow or failing lookup yields the placeholder and never
// fails the batch.
type Enricher struct {
	fetcher ImageFetcher
	timeout time.Duration
	limit   int
	queue   RefetchSubmitter
}

func NewEnricher(fetcher ImageFetcher, timeout time.Duration, limit int, queue RefetchSubmitter) *Enricher {
	if limit <= 0 {
		limit = 100
	}
	return &Enricher{fetcher: fetcher, timeout: timeout, limit: limit, queue: queue}
}

// Enrich returns one URL per ref; result[i] belongs to refs[i].
func (e *Enricher) Enrich(ctx context.Context, refs []PlaceRef) []string {
	urls := make([]string, len(refs))
	if len(refs) == 0 {
		return urls
	}
	if e == nil || e.fetcher == nil {
		for i := range urls {
			urls[i] = PlaceholderImage
		}
		return urls
	}

	var g errgroup.Group
	g.SetLimit(e.limit)
	for i, ref := range refs {
		g.Go(func() error {
			urls[i] = e.fetchOne(ctx, ref)
			return nil
		})
	}
	_ = g.Wait()
	return urls
}

type fetchResult struct {
	url string
	err error
}

func (e *Enricher) fetchOne(ctx context.Context, ref PlaceRef) string {
	callCtx := ctx
	cancel := context.CancelFunc(func() {})
	if e.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
	}
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		url, err := e.fetcher.FetchImage(callCtx, ref)
		done <- fetchResult{url: url, err: err}
	}()

	log := logger.FromContext(ctx)
	select {
	case res := <-done:
		if res.err == nil {
			if res.url == "" {
				return PlaceholderImage
			}
			return res.url
		}
		outcome := "error"
		if errors.Is(res.err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		log.Warn("image lookup failed",
			zap.String("category", string(ref.Category)),
			zap.Uint("id", ref.ID),
			zap.Error(res.err),
		)
		metrics.ImageEnrichmentTotal.WithLabelValues(outcome).Inc()
	case <-callCtx.Done():
		log.Warn("image lookup timed out",
			zap.String("category", string(ref.Category)),
			zap.Uint("id", ref.ID),
			zap.Duration("timeout", e.timeout),
		)
		metrics.ImageEnrichmentTotal.WithLabelValues("timeout").Inc()
	}

	if e.queue != nil {
		e.queue.Submit(ref)
	}
	return PlaceholderImage
}
