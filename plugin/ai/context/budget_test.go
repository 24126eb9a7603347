package context

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/parley/store"
)

// runeEstimator counts one token per rune, keeping budget math exact.
type runeEstimator struct{}

func (runeEstimator) Estimate(text string) int {
	return len([]rune(text))
}

func TestRatioAllocationPolicy(t *testing.T) {
	policy := NewDefaultAllocationPolicy()

	t.Run("standard split", func(t *testing.T) {
		// ceiling 4000, reserve 1000, system 200 -> 2800 available
		budget := policy.Allocate(2800)
		require.Equal(t, 2800, budget.Available)
		require.Equal(t, 280, budget.Notebook)
		require.Equal(t, 420, budget.Interjections)
		require.Equal(t, 2100, budget.Messages)
	})

	t.Run("floor rounding", func(t *testing.T) {
		budget := policy.Allocate(99)
		require.Equal(t, 9, budget.Notebook)
		require.Equal(t, 14, budget.Interjections)
		require.Equal(t, 74, budget.Messages)
	})

	t.Run("zero available", func(t *testing.T) {
		require.Equal(t, Budget{}, policy.Allocate(0))
	})

	t.Run("negative available", func(t *testing.T) {
		require.Equal(t, Budget{}, policy.Allocate(-500))
	})
}

func TestEstimateCompactMemoryTokens(t *testing.T) {
	est := runeEstimator{}

	require.Equal(t, 0, EstimateCompactMemoryTokens(nil, est))

	mem := &store.CompactMemory{
		Summary: "0123456789", // 10 tokens
		Stance:  "01234",      // 5 tokens
		PinnedFacts: []store.PinnedFact{
			{Content: "a"},
			{Content: "b"},
		},
	}
	require.Equal(t, 10+5+2*pinnedFactOverheadTokens, EstimateCompactMemoryTokens(mem, est))
}
