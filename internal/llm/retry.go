package llm

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jigardalal/databridge/internal/model"
)

// RetryConfig defines retry behavior for transient completion failures.
type RetryConfig struct {
	MaxAttempts       int           `json:"max_attempts"`
	InitialDelay      time.Duration `json:"initial_delay"`
	MaxDelay          time.Duration `json:"max_delay"`
	BackoffMultiplier float64       `json:"backoff_multiplier"`
	Jitter            bool          `json:"jitter"`
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
}

// WithRetry wraps a client with exponential-backoff retries. Only transport
// failures are retried; budget exhaustion and invalid input never succeed
// on a second attempt.
func WithRetry(inner Client, cfg RetryConfig) Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = 1
	}
	return &retryingClient{inner: inner, cfg: cfg}
}

type retryingClient struct {
	inner Client
	cfg   RetryConfig
}

func (c *retryingClient) Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (Completion, error) {
	delay := c.cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		comp, err := c.inner.Complete(ctx, systemPrompt, userPrompt, opts)
		if err == nil {
			return comp, nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.cfg.MaxAttempts {
			break
		}

		wait := delay
		if c.cfg.Jitter && wait > 0 {
			wait += time.Duration(rand.Int63n(int64(wait)/2 + 1))
		}
		select {
		case <-ctx.Done():
			return Completion{}, ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * c.cfg.BackoffMultiplier)
		if c.cfg.MaxDelay > 0 && delay > c.cfg.MaxDelay {
			delay = c.cfg.MaxDelay
		}
	}

	return Completion{}, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, model.ErrBudgetExceeded) {
		return false
	}
	return model.CodeOf(err) == model.CodeLLMCallFailed
}
