package llm

import (
	"context"
	"sync"
	"time"

	"github.com/jigardalal/databridge/internal/model"
)

// Budget is a daily token budget. Check-and-increment is serialized so
// concurrent calls cannot slip past the limit; accounting rolls over at UTC
// midnight. It is advisory capacity control, not a security boundary.
type Budget struct {
	mu         sync.Mutex
	dailyLimit int
	day        string
	used       int
	now        func() time.Time
}

// NewBudget creates a budget with the given daily token limit. A limit of
// zero or less disables enforcement.
func NewBudget(dailyLimit int) *Budget {
	return &Budget{dailyLimit: dailyLimit, now: time.Now}
}

func (b *Budget) bucket() string {
	return b.now().UTC().Format("2006-01-02")
}

// Reserve checks that n more tokens fit in today's budget and records them.
func (b *Budget) Reserve(n int) error {
	if b.dailyLimit <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	day := b.bucket()
	if day != b.day {
		b.day = day
		b.used = 0
	}
	if b.used+n > b.dailyLimit {
		return model.NewError(model.CodeBudgetExceeded, "daily token budget exceeded: %d used of %d", b.used, b.dailyLimit)
	}
	b.used += n
	return nil
}

// Used returns today's consumed tokens.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bucket() != b.day {
		return 0
	}
	return b.used
}

// budgetedClient wraps a Client with daily budget accounting. The reserve is
// an estimate before the call; actual usage is reconciled afterwards.
type budgetedClient struct {
	inner  Client
	budget *Budget
}

// WithBudget wraps a client so every completion is charged against the
// budget. A nil budget returns the client unchanged.
func WithBudget(inner Client, budget *Budget) Client {
	if budget == nil {
		return inner
	}
	return &budgetedClient{inner: inner, budget: budget}
}

// reserveEstimate is the up-front charge per call; actual token usage is
// added on top once the response reports it.
const reserveEstimate = 500

func (c *budgetedClient) Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (Completion, error) {
	if err := c.budget.Reserve(reserveEstimate); err != nil {
		return Completion{}, err
	}
	comp, err := c.inner.Complete(ctx, systemPrompt, userPrompt, opts)
	if err != nil {
		return Completion{}, err
	}
	actual := comp.PromptTokens + comp.CompletionTokens
	if actual > reserveEstimate {
		// Best effort: record the overshoot, ignore a limit breach after the
		// fact since the call already happened.
		_ = c.budget.Reserve(actual - reserveEstimate)
	}
	return comp, nil
}
