package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUntilSucceeds(t *testing.T) {
	ctx := context.Background()
	calls := 0
	got, err := UntilSucceedsWithInterval(ctx, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	}, time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 42, got)
	require.Equal(t, 3, calls)
}

func TestUntilSucceedsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := UntilSucceeds(ctx, func() (int, error) {
		return 0, errors.New("never")
	})
	require.ErrorIs(t, err, context.Canceled)
}
