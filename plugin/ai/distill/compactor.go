package distill

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/hrygo/parley/plugin/ai"
	"github.com/hrygo/parley/store"
)

// MemoryStore is the slice of the store the compactor needs.
type MemoryStore interface {
	GetCompactMemory(ctx context.Context, find *store.FindCompactMemory) (*store.CompactMemory, error)
	CreateCompactMemory(ctx context.Context, create *store.CompactMemory) (*store.CompactMemory, error)
	UpdateCompactMemory(ctx context.Context, update *store.UpdateCompactMemory) (*store.CompactMemory, error)
	ListUtterances(ctx context.Context, find *store.FindUtterance) ([]*store.Utterance, error)
	ListParticipants(ctx context.Context, find *store.FindParticipant) ([]*store.Participant, error)
}

// Compactor folds finished rounds into a conversation's compact memory.
// Distill is idempotent per target round and safe to call concurrently;
// duplicate in-flight calls for the same conversation share one result.
type Compactor struct {
	store MemoryStore
	llm   ai.LLMService

	group singleflight.Group
	now   func() time.Time
}

func NewCompactor(memoryStore MemoryStore, llm ai.LLMService) *Compactor {
	return &Compactor{
		store: memoryStore,
		llm:   llm,
		now:   time.Now,
	}
}

// Distill compacts all undistilled utterances up to and including
// targetRound into the conversation's compact memory and advances the
// distillation cursor. If the cursor already covers targetRound the
// stored memory is returned without calling the model.
//
// Concurrent calls for the same conversation and target share one
// result. A call with a different target runs on its own; the version
// check on update keeps the racing passes from clobbering each other.
func (c *Compactor) Distill(ctx context.Context, conversationID int32, targetRound int32) (*store.CompactMemory, error) {
	key := fmt.Sprintf("distill-%d-r%d", conversationID, targetRound)
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.distill(ctx, conversationID, targetRound)
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.CompactMemory), nil
}

// DistillBefore compacts every finished round, leaving the current one
// as raw history.
func (c *Compactor) DistillBefore(ctx context.Context, conversationID int32, currentRound int32) (*store.CompactMemory, error) {
	return c.Distill(ctx, conversationID, currentRound-1)
}

func (c *Compactor) distill(ctx context.Context, conversationID int32, targetRound int32) (*store.CompactMemory, error) {
	mem, err := c.store.GetCompactMemory(ctx, &store.FindCompactMemory{ConversationID: &conversationID})
	if err != nil {
		if err != store.ErrNotFound {
			return nil, errors.Wrap(err, "failed to get compact memory")
		}
		mem, err = c.store.CreateCompactMemory(ctx, &store.CompactMemory{
			ConversationID: conversationID,
			CreatedTs:      c.now().Unix(),
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create compact memory")
		}
	}

	if mem.LastDistilledRound >= targetRound {
		return mem, nil
	}

	eligible, err := c.store.ListUtterances(ctx, &store.FindUtterance{
		ConversationID: &conversationID,
		AfterID:        &mem.LastDistilledUtteranceID,
		MaxRound:       &targetRound,
		Kinds:          distillableKinds,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list undistilled utterances")
	}
	if len(eligible) == 0 {
		return mem, nil
	}

	names, err := c.speakerNames(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	raw, err := c.llm.Chat(ctx, buildMessages(mem, eligible, names))
	if err != nil {
		return nil, errors.Wrap(err, "distillation model call failed")
	}
	result, err := ParseResult(raw)
	if err != nil {
		return nil, err
	}

	update := c.mergeResult(mem, result, eligible, targetRound)
	updated, err := c.store.UpdateCompactMemory(ctx, update)
	if err != nil {
		return nil, errors.Wrap(err, "failed to persist compact memory")
	}

	slog.Info("distilled conversation rounds",
		slog.Int("conversationID", int(conversationID)),
		slog.Int("targetRound", int(targetRound)),
		slog.Int("utterances", len(eligible)))
	return updated, nil
}

// mergeResult folds a parse result into the stored memory. The summary
// and stance are replacements; list fields and pinned facts accumulate
// with case-insensitive content dedupe.
func (c *Compactor) mergeResult(mem *store.CompactMemory, result *Result, eligible []*store.Utterance, targetRound int32) *store.UpdateCompactMemory {
	stance := mem.Stance
	if strings.TrimSpace(result.CurrentStance) != "" {
		stance = result.CurrentStance
	}

	facts := mem.PinnedFacts
	seen := make(map[string]bool, len(facts))
	for _, f := range facts {
		seen[factKey(f.Content)] = true
	}
	added := 0
	for _, rf := range result.PinnedFacts {
		if strings.TrimSpace(rf.Content) == "" || seen[factKey(rf.Content)] {
			continue
		}
		seen[factKey(rf.Content)] = true
		added++
		facts = append(facts, store.PinnedFact{
			ID:         fmt.Sprintf("pf-r%d-%d", targetRound, added),
			Content:    rf.Content,
			Category:   store.PinnedFactCategory(rf.Category),
			Source:     rf.Source,
			Round:      targetRound,
			Importance: rf.Importance,
		})
	}

	lastID := eligible[len(eligible)-1].ID
	count := mem.DistilledCount + int32(len(eligible))
	updatedTs := c.now().Unix()
	return &store.UpdateCompactMemory{
		ConversationID: mem.ConversationID,
		Version:        mem.Version,

		Summary:       &result.DistilledSummary,
		Stance:        &stance,
		KeyDecisions:  mergeList(mem.KeyDecisions, result.KeyDecisions),
		OpenQuestions: mergeList(mem.OpenQuestions, result.OpenQuestions),
		Constraints:   mergeList(mem.Constraints, result.Constraints),
		ActionItems:   mergeList(mem.ActionItems, result.ActionItems),
		PinnedFacts:   facts,

		LastDistilledRound:       &targetRound,
		LastDistilledUtteranceID: &lastID,
		DistilledCount:           &count,
		UpdatedTs:                &updatedTs,
	}
}

func (c *Compactor) speakerNames(ctx context.Context, conversationID int32) (map[int32]string, error) {
	participants, err := c.store.ListParticipants(ctx, &store.FindParticipant{ConversationID: &conversationID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list participants")
	}
	names := make(map[int32]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}
	return names, nil
}

// mergeList appends additions to existing, skipping blanks and entries
// already present under case-insensitive comparison.
func mergeList(existing, additions []string) []string {
	merged := existing
	seen := make(map[string]bool, len(existing))
	for _, item := range existing {
		seen[factKey(item)] = true
	}
	for _, item := range additions {
		if strings.TrimSpace(item) == "" || seen[factKey(item)] {
			continue
		}
		seen[factKey(item)] = true
		merged = append(merged, item)
	}
	return merged
}

func factKey(content string) string {
	return strings.ToLower(strings.TrimSpace(content))
}
