// Package retry повторяет операции хранилища после временного отказа.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/metrics"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// Policy задаёт число повторов и начальную паузу.
type Policy struct {
	MaxRetries uint64
	Initial    time.Duration
}

// Default — один повтор через 100 мс.
var Default = Policy{MaxRetries: 1, Initial: 100 * time.Millisecond}

// Do выполняет fn и повторяет её только при models.ErrStorageUnavailable.
// Остальные ошибки возвращаются сразу. Отмена или таймаут контекста
// вызывающего всегда приводятся к models.ErrStorageUnavailable.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)

	var lastErr error
	attempt := 0
	v, err := backoff.RetryWithData(func() (T, error) {
		if attempt > 0 {
			metrics.StorageRetries.Inc()
		}
		attempt++
		v, err := fn(ctx)
		lastErr = err
		if err != nil && !errors.Is(err, models.ErrStorageUnavailable) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, policy)
	if err == nil || errors.Is(err, models.ErrStorageUnavailable) {
		return v, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		// backoff отдаёт голый ctx.Err(), когда контекст закончился между попытками
		if lastErr != nil && errors.Is(lastErr, models.ErrStorageUnavailable) {
			return v, lastErr
		}
		return v, fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	return v, err
}

// Run — Do для операций без результата.
func Run(ctx context.Context, p Policy, fn func(context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
