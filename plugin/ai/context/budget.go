package context

import (
	"github.com/hrygo/parley/plugin/ai/tokenizer"
	"github.com/hrygo/parley/store"
)

// Default token budget values.
const (
	DefaultContextCeiling  = 8000
	DefaultResponseReserve = 1000

	DefaultNotebookRatio     = 0.10
	DefaultInterjectionRatio = 0.15
	DefaultMessageRatio      = 0.75

	// pinnedFactOverheadTokens approximates the rendered size of one
	// pinned fact inside the compact-memory block.
	pinnedFactOverheadTokens = 20
)

// Budget is the token allocation plan for one turn.
type Budget struct {
	// Available is ceiling − response reserve − system prompt.
	Available     int
	Notebook      int
	Interjections int
	Messages      int
}

// AllocationPolicy splits the available token pool into sub-budgets.
// Policies are swappable so alternative splits can be tested
// independently of selection logic.
type AllocationPolicy interface {
	Allocate(available int) Budget
}

// RatioAllocationPolicy splits the pool by fixed ratios with floor rounding.
type RatioAllocationPolicy struct {
	NotebookRatio     float64
	InterjectionRatio float64
	MessageRatio      float64
}

// NewDefaultAllocationPolicy returns the standard 10/15/75 split.
func NewDefaultAllocationPolicy() *RatioAllocationPolicy {
	return &RatioAllocationPolicy{
		NotebookRatio:     DefaultNotebookRatio,
		InterjectionRatio: DefaultInterjectionRatio,
		MessageRatio:      DefaultMessageRatio,
	}
}

// Allocate splits the available pool. A non-positive pool yields all-zero
// sub-budgets; callers degrade to a system-only prompt instead of failing.
func (p *RatioAllocationPolicy) Allocate(available int) Budget {
	if available <= 0 {
		return Budget{}
	}
	return Budget{
		Available:     available,
		Notebook:      int(float64(available) * p.NotebookRatio),
		Interjections: int(float64(available) * p.InterjectionRatio),
		Messages:      int(float64(available) * p.MessageRatio),
	}
}

// EstimateCompactMemoryTokens approximates the token footprint of the
// compact-memory block. Compact memory and raw recent history share the
// messages budget, so this amount is reserved out of it before selection.
func EstimateCompactMemoryTokens(m *store.CompactMemory, est tokenizer.Estimator) int {
	if m == nil {
		return 0
	}
	tokens := est.Estimate(m.Summary) + est.Estimate(m.Stance)
	tokens += len(m.PinnedFacts) * pinnedFactOverheadTokens
	return tokens
}

var _ AllocationPolicy = (*RatioAllocationPolicy)(nil)
