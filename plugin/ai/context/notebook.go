package context

import (
	"github.com/hrygo/parley/plugin/ai/tokenizer"
	"github.com/hrygo/parley/store"
)

// TruncateNotebook trims the speaker's notebook to the budget, keeping
// the most recent entries. Entries are an explicit ordered list (newest
// last); trimming accumulates from newest to oldest and stops at the
// first entry that would exceed the budget, then restores original order.
func TruncateNotebook(entries []*store.NotebookEntry, est tokenizer.Estimator, budget int) []*store.NotebookEntry {
	if budget <= 0 || len(entries) == 0 {
		return nil
	}

	total := 0
	for _, e := range entries {
		total += est.Estimate(e.Content)
	}
	if total <= budget {
		return entries
	}

	remaining := budget
	keepFrom := len(entries)
	for i := len(entries) - 1; i >= 0; i-- {
		tokens := est.Estimate(entries[i].Content)
		if tokens > remaining {
			break
		}
		remaining -= tokens
		keepFrom = i
	}

	if keepFrom == len(entries) {
		return nil
	}
	return entries[keepFrom:]
}
