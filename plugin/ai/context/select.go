package context

import (
	"sort"

	"github.com/hrygo/parley/plugin/ai/tokenizer"
	"github.com/hrygo/parley/store"
)

// SelectMessages chooses the highest-value subset of scored candidates
// that fits the budget.
//
// Critical candidates are admitted first, in their original relative
// order, whenever they individually fit the remaining budget. Regular
// candidates then compete by score in a greedy pass. This is a
// deliberately greedy, non-optimal knapsack heuristic: content is
// non-adversarial and relative ordering matters more than exact budget
// utilization.
//
// The returned slice is sorted ascending by creation time so the prompt
// reads as a real conversation regardless of selection order.
func SelectMessages(scored []ScoredUtterance, budget int) []ScoredUtterance {
	if budget <= 0 || len(scored) == 0 {
		return nil
	}

	remaining := budget
	selected := make([]ScoredUtterance, 0, len(scored))

	for _, c := range scored {
		if c.Critical && c.Tokens <= remaining {
			selected = append(selected, c)
			remaining -= c.Tokens
		}
	}

	regular := make([]ScoredUtterance, 0, len(scored))
	for _, c := range scored {
		if !c.Critical {
			regular = append(regular, c)
		}
	}
	sort.SliceStable(regular, func(i, j int) bool {
		return regular[i].Score > regular[j].Score
	})

	for _, c := range regular {
		if c.Tokens <= remaining {
			selected = append(selected, c)
			remaining -= c.Tokens
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i].Utterance, selected[j].Utterance
		if a.CreatedTs != b.CreatedTs {
			return a.CreatedTs < b.CreatedTs
		}
		return a.ID < b.ID
	})

	return selected
}

// SelectInterjections chooses the most recent interjections that fit the
// budget and returns them in chronological order.
func SelectInterjections(candidates []*store.Interjection, est tokenizer.Estimator, budget int) []*store.Interjection {
	if budget <= 0 || len(candidates) == 0 {
		return nil
	}

	byRecency := make([]*store.Interjection, len(candidates))
	copy(byRecency, candidates)
	sort.SliceStable(byRecency, func(i, j int) bool {
		if byRecency[i].CreatedTs != byRecency[j].CreatedTs {
			return byRecency[i].CreatedTs > byRecency[j].CreatedTs
		}
		return byRecency[i].ID > byRecency[j].ID
	})

	remaining := budget
	selected := make([]*store.Interjection, 0, len(byRecency))
	for _, in := range byRecency {
		tokens := est.Estimate(in.Content)
		if tokens <= remaining {
			selected = append(selected, in)
			remaining -= tokens
		}
	}

	// Reverse back to chronological order.
	for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
		selected[i], selected[j] = selected[j], selected[i]
	}

	return selected
}
