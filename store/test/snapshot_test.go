package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/parley/store"
)

func TestContextSnapshotStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateContextSnapshot(ctx, &store.ContextSnapshot{
		UID:               nextUID("snap"),
		TurnUID:           "turn-7",
		ConversationID:    1,
		UsedCompactMemory: true,
		InjectedSummary:   "earlier rounds settled on caching",
		InjectedDecisions: []string{"use a cache"},
		InjectedFacts: []store.PinnedFact{
			{ID: "pf-r1-1", Content: "latency budget is 5ms", Category: store.PinnedFactConstraint, Round: 1, Importance: 8},
		},
		UtteranceCount: 6,
		NotebookUsed:   true,
		CreatedTs:      1700000000,
	})
	require.NoError(t, err)
	require.Greater(t, created.ID, int32(0))

	t.Run("get by turn uid", func(t *testing.T) {
		turnUID := "turn-7"
		snap, err := ts.GetContextSnapshot(ctx, &store.FindContextSnapshot{TurnUID: &turnUID})
		require.NoError(t, err)
		require.True(t, snap.UsedCompactMemory)
		require.Equal(t, "earlier rounds settled on caching", snap.InjectedSummary)
		require.Equal(t, []string{"use a cache"}, snap.InjectedDecisions)
		require.Len(t, snap.InjectedFacts, 1)
		require.Equal(t, int32(8), snap.InjectedFacts[0].Importance)
		require.Equal(t, int32(6), snap.UtteranceCount)
		require.True(t, snap.NotebookUsed)
	})

	t.Run("latest per conversation", func(t *testing.T) {
		_, err := ts.CreateContextSnapshot(ctx, &store.ContextSnapshot{
			UID:            nextUID("snap"),
			TurnUID:        "turn-8",
			ConversationID: 1,
			UtteranceCount: 2,
			CreatedTs:      1700000100,
		})
		require.NoError(t, err)

		conversationID := int32(1)
		snap, err := ts.GetContextSnapshot(ctx, &store.FindContextSnapshot{ConversationID: &conversationID})
		require.NoError(t, err)
		require.Equal(t, "turn-8", snap.TurnUID)
		require.False(t, snap.UsedCompactMemory)
		require.Empty(t, snap.InjectedFacts)
	})

	t.Run("missing snapshot", func(t *testing.T) {
		turnUID := "turn-404"
		_, err := ts.GetContextSnapshot(ctx, &store.FindContextSnapshot{TurnUID: &turnUID})
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
