package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/sethvargo/go-retry"
	"uk.co.dudmesh.emprendenet/internal/model"
)

const DefaultAttempts = 50

// Invalidator removes entries from a Store, retrying each operation up to a
// fixed number of attempts. Failures are logged and reported as false, a
// stale entry is acceptable because the user database is authoritative.
type Invalidator struct {
	store    Store
	attempts int
	delay    time.Duration
}

func NewInvalidator(store Store, attempts int, delay time.Duration) *Invalidator {
	if attempts < 1 {
		attempts = DefaultAttempts
	}
	if delay <= 0 {
		delay = time.Millisecond
	}
	return &Invalidator{store, attempts, delay}
}

// Invalidate deletes one key (string), several keys ([]string) or, when keys
// is nil, everything. Any other argument type is rejected without touching
// the store.
func (i *Invalidator) Invalidate(ctx context.Context, keys any) (bool, error) {
	switch k := keys.(type) {
	case nil:
		return i.Flush(ctx), nil
	case string:
		return i.Delete(ctx, k), nil
	case []string:
		return i.DeleteMulti(ctx, k), nil
	default:
		return false, fmt.Errorf("%w: %T", model.ErrorInvalidKeys, keys)
	}
}

func (i *Invalidator) Delete(ctx context.Context, key string) bool {
	return i.do(ctx, "delete", func(ctx context.Context) error {
		return i.store.Delete(ctx, key)
	})
}

func (i *Invalidator) DeleteMulti(ctx context.Context, keys []string) bool {
	return i.do(ctx, "delete multi", func(ctx context.Context) error {
		return i.store.DeleteMulti(ctx, keys)
	})
}

func (i *Invalidator) Flush(ctx context.Context) bool {
	return i.do(ctx, "flush", func(ctx context.Context) error {
		return i.store.Flush(ctx)
	})
}

func (i *Invalidator) do(ctx context.Context, op string, f retry.RetryFunc) bool {
	attempts := 0
	backoff := retry.WithMaxRetries(uint64(i.attempts-1), retry.NewConstant(i.delay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := f(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		log.Warnf("cache %s failed after %d attempts: %v", op, attempts, err)
		return false
	}
	return true
}
