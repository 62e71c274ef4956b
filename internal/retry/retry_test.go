package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errTemporary = errors.New("temporary")

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	var seen []int
	err := WithRetry(context.Background(), 3, time.Millisecond, nil, func(attempt int) error {
		seen = append(seen, attempt)
		if attempt < 3 {
			return errTemporary
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := WithRetry(context.Background(), 5, time.Millisecond, func(err error) bool {
		return errors.Is(err, errTemporary)
	}, func(int) error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), 2, 0, nil, func(int) error {
		calls++
		return errTemporary
	})

	assert.ErrorIs(t, err, errTemporary)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := WithRetry(ctx, 3, time.Millisecond, nil, func(int) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
