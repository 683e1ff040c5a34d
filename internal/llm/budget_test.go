package llm

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigardalal/databridge/internal/model"
)

func TestBudget_ReserveWithinLimit(t *testing.T) {
	b := NewBudget(1000)

	require.NoError(t, b.Reserve(400))
	require.NoError(t, b.Reserve(600))
	assert.Equal(t, 1000, b.Used())

	err := b.Reserve(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrBudgetExceeded))
}

func TestBudget_ZeroLimitDisablesEnforcement(t *testing.T) {
	b := NewBudget(0)
	assert.NoError(t, b.Reserve(1_000_000))
}

func TestBudget_RollsOverAtMidnightUTC(t *testing.T) {
	b := NewBudget(100)
	current := time.Date(2026, 3, 1, 23, 50, 0, 0, time.UTC)
	b.now = func() time.Time { return current }

	require.NoError(t, b.Reserve(100))
	require.Error(t, b.Reserve(1))

	current = current.Add(20 * time.Minute) // next UTC day
	assert.NoError(t, b.Reserve(100))
	assert.Equal(t, 100, b.Used())
}

func TestBudget_ConcurrentReserveNeverExceedsLimit(t *testing.T) {
	b := NewBudget(1000)

	var wg sync.WaitGroup
	granted := make(chan int, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.Reserve(50) == nil {
				granted <- 50
			}
		}()
	}
	wg.Wait()
	close(granted)

	total := 0
	for n := range granted {
		total += n
	}
	assert.LessOrEqual(t, total, 1000)
	assert.Equal(t, total, b.Used())
}
