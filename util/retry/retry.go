package retry

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultSleepTime = time.Second * 5

var log = logrus.WithField("prefix", "retry")

// UntilSucceeds retries the given function until it succeeds or the context
// is cancelled, sleeping five seconds between attempts.
func UntilSucceeds[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	return UntilSucceedsWithInterval(ctx, fn, defaultSleepTime)
}

// UntilSucceedsWithInterval is UntilSucceeds with a caller-chosen sleep
// between attempts.
func UntilSucceedsWithInterval[T any](ctx context.Context, fn func() (T, error), interval time.Duration) (T, error) {
	for {
		if ctx.Err() != nil {
			return zeroVal[T](), ctx.Err()
		}
		got, err := fn()
		if err != nil {
			log.Error(err)
			select {
			case <-ctx.Done():
				return zeroVal[T](), ctx.Err()
			case <-time.After(interval):
			}
			continue
		}
		return got, nil
	}
}

func zeroVal[T any]() T {
	var result T
	return result
}
