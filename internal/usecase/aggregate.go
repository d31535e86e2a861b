package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/domain"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"github.com/CesarOsorioP/StateView-sub000/internal/platform/metrics"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy bounds the retries of catalog aggregate writes.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy is used when a zero RetryPolicy is configured.
var DefaultRetryPolicy = RetryPolicy{
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     500 * time.Millisecond,
	MaxElapsedTime:  3 * time.Second,
}

func (p RetryPolicy) orDefault() RetryPolicy {
	if p.MaxElapsedTime <= 0 {
		return DefaultRetryPolicy
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = DefaultRetryPolicy.MaxInterval
	}
	return p
}

// aggregateWriter applies rating deltas to catalog items, retrying transient failures.
type aggregateWriter struct {
	catalog domain.CatalogRepository
	policy  RetryPolicy
	metrics *metrics.MetricsManager
	logger  *logger.Logger
}

func newAggregateWriter(catalog domain.CatalogRepository, policy RetryPolicy, m *metrics.MetricsManager, log *logger.Logger) *aggregateWriter {
	return &aggregateWriter{
		catalog: catalog,
		policy:  policy.orDefault(),
		metrics: m,
		logger:  log.Named("AggregateWriter"),
	}
}

func (w *aggregateWriter) apply(ctx context.Context, variant domain.ItemVariant, itemID string, deltaTotal float64, deltaCount int64) (*domain.RatingAggregate, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.policy.InitialInterval
	b.MaxInterval = w.policy.MaxInterval
	b.MaxElapsedTime = w.policy.MaxElapsedTime

	var agg *domain.RatingAggregate
	op := func() error {
		var err error
		agg, err = w.catalog.ApplyRatingDelta(ctx, variant, itemID, deltaTotal, deltaCount)
		if err != nil && !errors.Is(err, domain.ErrTransient) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		w.metrics.IncAggregateRetry()
		w.logger.Warn("Retrying rating aggregate write",
			zap.String("item_id", itemID), zap.Duration("wait", wait), zap.Error(err))
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return agg, nil
}

// conflictRetries bounds how often a read-modify-write of a review is re-run after losing
// the optimistic lock to a concurrent writer.
const conflictRetries = 5

// retryOnConflict re-runs op, which must re-read what it writes, while it fails with ErrOptimisticLock.
// Any other error stops immediately. The last conflict is returned when retries run out.
func retryOnConflict(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Millisecond
	b.MaxInterval = 50 * time.Millisecond
	b.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		err := op()
		if err != nil && !errors.Is(err, domain.ErrOptimisticLock) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(b, conflictRetries), ctx))
}
