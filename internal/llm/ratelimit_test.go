package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("tokens available up to capacity", func(t *testing.T) {
		rl := newRateLimiter(10)
		defer rl.Close()
		ctx := context.Background()

		for i := 0; i < 10; i++ {
			require.NoError(t, rl.wait(ctx))
		}
		assert.False(t, rl.tryAcquire(), "bucket should be empty after capacity acquisitions")
	})

	t.Run("context cancellation unblocks wait", func(t *testing.T) {
		rl := newRateLimiter(1)
		defer rl.Close()

		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		err := rl.wait(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("zero rate falls back to default", func(t *testing.T) {
		rl := newRateLimiter(0)
		defer rl.Close()
		assert.Equal(t, 60, rl.capacity)
	})
}
