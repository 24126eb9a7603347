package distill

import (
	"context"

	"github.com/hrygo/parley/store"
)

// maxUndistilledUtterances is how much raw history may pile up within
// the current window before distillation is forced. Every kind counts
// toward the pileup; only compaction itself filters to distillableKinds.
const maxUndistilledUtterances = 10

// distillableKinds are the utterance kinds that feed compaction.
// Summaries are derived content and system notices carry no discussion
// substance, so neither is distilled.
var distillableKinds = []store.UtteranceKind{
	store.UtteranceKindResponse,
	store.UtteranceKindInterjection,
	store.UtteranceKindOpening,
}

// ShouldDistill reports whether the conversation has accumulated enough
// undistilled history to warrant a compaction pass before currentRound.
func (c *Compactor) ShouldDistill(ctx context.Context, conversationID int32, currentRound int32) (bool, error) {
	mem, err := c.store.GetCompactMemory(ctx, &store.FindCompactMemory{ConversationID: &conversationID})
	if err != nil && err != store.ErrNotFound {
		return false, err
	}

	if mem == nil || mem.DistilledCount == 0 {
		return currentRound >= 2, nil
	}
	if currentRound > mem.LastDistilledRound+1 {
		return true, nil
	}

	minRound := mem.LastDistilledRound + 1
	pending, err := c.store.ListUtterances(ctx, &store.FindUtterance{
		ConversationID: &conversationID,
		MinRound:       &minRound,
	})
	if err != nil {
		return false, err
	}
	return len(pending) > maxUndistilledUtterances, nil
}
