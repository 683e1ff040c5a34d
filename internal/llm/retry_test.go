package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigardalal/databridge/internal/model"
)

type flakyClient struct {
	failures int
	calls    int
	err      error
}

func (c *flakyClient) Complete(ctx context.Context, system, user string, opts Options) (Completion, error) {
	c.calls++
	if c.calls <= c.failures {
		return Completion{}, c.err
	}
	return Completion{Content: "ok"}, nil
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	inner := &flakyClient{failures: 2, err: model.ErrLLMCallFailed}
	client := WithRetry(inner, fastRetryConfig())

	comp, err := client.Complete(context.Background(), "s", "u", Options{})
	require.NoError(t, err)
	assert.Equal(t, "ok", comp.Content)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	inner := &flakyClient{failures: 10, err: model.ErrLLMCallFailed}
	client := WithRetry(inner, fastRetryConfig())

	_, err := client.Complete(context.Background(), "s", "u", Options{})
	require.Error(t, err)
	assert.Equal(t, model.CodeLLMCallFailed, model.CodeOf(err))
	assert.Equal(t, 3, inner.calls)
}

func TestRetryDoesNotRetryBudgetExhaustion(t *testing.T) {
	inner := &flakyClient{failures: 10, err: model.ErrBudgetExceeded}
	client := WithRetry(inner, fastRetryConfig())

	_, err := client.Complete(context.Background(), "s", "u", Options{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryDoesNotRetryInvalidInput(t *testing.T) {
	inner := &flakyClient{failures: 10, err: model.ErrInvalidInput}
	client := WithRetry(inner, fastRetryConfig())

	_, err := client.Complete(context.Background(), "s", "u", Options{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &flakyClient{failures: 10, err: model.ErrLLMCallFailed}
	client := WithRetry(inner, RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      time.Hour,
		BackoffMultiplier: 2.0,
	})

	_, err := client.Complete(ctx, "s", "u", Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}
