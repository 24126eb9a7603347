package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/parley/store"
)

func TestParticipantStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	ada, err := ts.CreateParticipant(ctx, &store.Participant{
		UID: nextUID("part"), ConversationID: 1, Name: "Ada", CreatedTs: 1700000000,
	})
	require.NoError(t, err)
	_, err = ts.CreateParticipant(ctx, &store.Participant{
		UID: nextUID("part"), ConversationID: 1, Name: "Chair", Coordinator: true, CreatedTs: 1700000000,
	})
	require.NoError(t, err)
	_, err = ts.CreateParticipant(ctx, &store.Participant{
		UID: nextUID("part"), ConversationID: 2, Name: "Elsewhere", CreatedTs: 1700000000,
	})
	require.NoError(t, err)

	conversationID := int32(1)
	list, err := ts.ListParticipants(ctx, &store.FindParticipant{ConversationID: &conversationID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Ada", list[0].Name)
	require.False(t, list[0].Coordinator)
	require.True(t, list[1].Coordinator)

	byID, err := ts.ListParticipants(ctx, &store.FindParticipant{ID: &ada.ID})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	require.Equal(t, ada.UID, byID[0].UID)
}
