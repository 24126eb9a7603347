package context

import (
	stdcontext "context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/parley/plugin/ai"
	"github.com/hrygo/parley/store"
)

type capturingSnapshotStore struct {
	created []*store.ContextSnapshot
	err     error
}

func (s *capturingSnapshotStore) CreateContextSnapshot(_ stdcontext.Context, create *store.ContextSnapshot) (*store.ContextSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, create)
	return create, nil
}

func testParticipants() []*store.Participant {
	return []*store.Participant{
		{ID: 1, Name: "Ada"},
		{ID: 2, Name: "Boole"},
		{ID: 3, Name: "Chair", Coordinator: true},
	}
}

func testRequest(speaker *store.Participant) *BuildRequest {
	participants := testParticipants()
	return &BuildRequest{
		ConversationID: 10,
		TurnUID:        "turn-1",
		Speaker:        speaker,
		Participants:   participants,
		CurrentRound:   2,
		TotalRounds:    6,
	}
}

func messageContents(messages []ai.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(m.Content + "\n")
	}
	return sb.String()
}

func TestBuildContextOrdering(t *testing.T) {
	svc := NewService(DefaultConfig()).WithEstimator(runeEstimator{})
	participants := testParticipants()

	req := testRequest(participants[0])
	req.FirstTurn = true
	req.CurrentRound = 1
	req.RunningSummary = "Round one covered scope."
	req.Notebook = []*store.NotebookEntry{{ID: 1, SpeakerID: 1, Content: "watch the budget argument"}}
	req.Interjections = []*store.Interjection{{ID: 1, Content: "stay concrete", CreatedTs: 100}}
	req.History = []*store.Utterance{
		{ID: 1, Kind: store.UtteranceKindOpening, Content: "Today we discuss caching.", Round: 1, CreatedTs: 100},
		{ID: 2, Kind: store.UtteranceKindResponse, SpeakerID: int32Ptr(2), Content: "I favor write-through.", Round: 1, CreatedTs: 200},
	}

	result, err := svc.BuildContext(stdcontext.Background(), req)
	require.NoError(t, err)

	msgs := result.Messages
	require.GreaterOrEqual(t, len(msgs), 7)

	// Identity block leads for a non-coordinator speaker.
	require.Equal(t, ai.RoleSystem, msgs[0].Role)
	require.Contains(t, msgs[0].Content, "You are Ada")
	require.Contains(t, msgs[0].Content, "Boole")

	// First turn adds the opening context, then the phase note.
	require.Contains(t, msgs[1].Content, "first turn")
	require.Contains(t, msgs[2].Content, "round 1 of 6")
	require.Contains(t, msgs[2].Content, string(PhaseExploration))

	// Notebook, interjections, then history in chronological order.
	content := messageContents(msgs)
	require.Contains(t, content, "Your private notes")
	require.Contains(t, content, "[USER GUIDANCE] stay concrete")
	require.Contains(t, content, "[DISCUSSION OPENING] Today we discuss caching.")
	require.Contains(t, content, "Boole: I favor write-through.")
	require.Less(t,
		strings.Index(content, "Your private notes"),
		strings.Index(content, "[USER GUIDANCE]"))
	require.Less(t,
		strings.Index(content, "[USER GUIDANCE]"),
		strings.Index(content, "[DISCUSSION OPENING]"))

	// Final instruction closes the prompt as a user message.
	last := msgs[len(msgs)-1]
	require.Equal(t, ai.RoleUser, last.Role)
	require.Contains(t, last.Content, "Ada, give your opening statement")

	require.False(t, result.UsedCompactMemory)
	require.True(t, result.NotebookUsed)
	require.Equal(t, int32(2), result.UtteranceCount)
}

func TestBuildContextRoleMapping(t *testing.T) {
	svc := NewService(DefaultConfig()).WithEstimator(runeEstimator{})
	participants := testParticipants()

	req := testRequest(participants[0])
	req.History = []*store.Utterance{
		{ID: 1, Kind: store.UtteranceKindResponse, SpeakerID: int32Ptr(1), Content: "my own earlier point", Round: 1, CreatedTs: 100},
		{ID: 2, Kind: store.UtteranceKindInterjection, Content: "please compare costs", Round: 1, CreatedTs: 200},
		{ID: 3, Kind: store.UtteranceKindSystem, Content: "Round 2 begins.", Round: 2, CreatedTs: 300},
		{ID: 4, Kind: store.UtteranceKindSummary, SpeakerID: int32Ptr(3), Content: "positions diverge", Round: 2, CreatedTs: 400},
		{ID: 5, Kind: store.UtteranceKindResponse, SpeakerID: int32Ptr(2), AddressedTo: int32Ptr(1), Weight: 3, Content: "costs favor redis", Round: 2, CreatedTs: 500},
	}

	result, err := svc.BuildContext(stdcontext.Background(), req)
	require.NoError(t, err)

	byContent := make(map[string]ai.Message)
	for _, m := range result.Messages {
		byContent[m.Content] = m
	}

	own, ok := byContent["my own earlier point"]
	require.True(t, ok)
	require.Equal(t, ai.RoleAssistant, own.Role)

	interjection, ok := byContent["[USER] please compare costs"]
	require.True(t, ok)
	require.Equal(t, ai.RoleUser, interjection.Role)

	system, ok := byContent["Round 2 begins."]
	require.True(t, ok)
	require.Equal(t, ai.RoleSystem, system.Role)

	summary, ok := byContent["[SUMMARY by Chair] positions diverge"]
	require.True(t, ok)
	require.Equal(t, ai.RoleSystem, summary.Role)

	rated, ok := byContent["Boole (to Ada) [highly rated]: costs favor redis"]
	require.True(t, ok)
	require.Equal(t, ai.RoleUser, rated.Role)
}

func TestBuildContextCoordinator(t *testing.T) {
	svc := NewService(DefaultConfig()).WithEstimator(runeEstimator{})
	participants := testParticipants()

	req := testRequest(participants[2])
	result, err := svc.BuildContext(stdcontext.Background(), req)
	require.NoError(t, err)

	// No identity block; the final instruction carries the coordinator role.
	require.Zero(t, result.SystemPromptTokens)
	require.NotContains(t, messageContents(result.Messages), "You are Chair")

	last := result.Messages[len(result.Messages)-1]
	require.Contains(t, last.Content, "As coordinator")
}

func TestShouldUseCompactMemory(t *testing.T) {
	history := []*store.Utterance{{ID: 5}, {ID: 6}}

	t.Run("nil memory", func(t *testing.T) {
		require.False(t, ShouldUseCompactMemory(nil, history))
	})

	t.Run("empty summary", func(t *testing.T) {
		m := &store.CompactMemory{Summary: "  ", DistilledCount: 3}
		require.False(t, ShouldUseCompactMemory(m, history))
	})

	t.Run("nothing distilled", func(t *testing.T) {
		m := &store.CompactMemory{Summary: "s"}
		require.False(t, ShouldUseCompactMemory(m, history))
	})

	t.Run("cursor covers all history", func(t *testing.T) {
		m := &store.CompactMemory{Summary: "s", DistilledCount: 6, LastDistilledUtteranceID: 6}
		require.False(t, ShouldUseCompactMemory(m, history))
	})

	t.Run("fresh history after cursor", func(t *testing.T) {
		m := &store.CompactMemory{Summary: "s", DistilledCount: 6, LastDistilledUtteranceID: 5}
		require.True(t, ShouldUseCompactMemory(m, history))
	})
}

func TestBuildContextCompactMemoryGating(t *testing.T) {
	svc := NewService(DefaultConfig()).WithEstimator(runeEstimator{})
	participants := testParticipants()

	history := []*store.Utterance{
		{ID: 5, Kind: store.UtteranceKindResponse, SpeakerID: int32Ptr(2), Content: "old distilled remark", Round: 1, CreatedTs: 100},
		{ID: 6, Kind: store.UtteranceKindResponse, SpeakerID: int32Ptr(2), Content: "fresh remark", Round: 2, CreatedTs: 200},
	}
	mem := &store.CompactMemory{
		ConversationID:           10,
		Summary:                  "Earlier rounds settled on caching.",
		Stance:                   "Leaning write-through.",
		KeyDecisions:             []string{"use a cache"},
		DistilledCount:           4,
		LastDistilledRound:       1,
		LastDistilledUtteranceID: 5,
	}

	req := testRequest(participants[0])
	req.History = history
	req.CompactMemory = mem

	result, err := svc.BuildContext(stdcontext.Background(), req)
	require.NoError(t, err)
	require.True(t, result.UsedCompactMemory)
	require.Equal(t, mem, result.InjectedMemory)

	// The distilled utterance is displaced by the memory block; only
	// post-cursor history competes for the messages budget.
	content := messageContents(result.Messages)
	require.Contains(t, content, "Earlier rounds settled on caching.")
	require.Contains(t, content, "Leaning write-through.")
	require.Contains(t, content, "use a cache")
	require.Contains(t, content, "fresh remark")
	require.NotContains(t, content, "old distilled remark")
	require.Equal(t, int32(1), result.UtteranceCount)
}

func TestBuildContextZeroBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContextCeiling = 1000
	cfg.ResponseReserve = 999
	svc := NewService(cfg).WithEstimator(runeEstimator{})
	participants := testParticipants()

	req := testRequest(participants[0])
	req.Notebook = []*store.NotebookEntry{{ID: 1, Content: "notes"}}
	req.Interjections = []*store.Interjection{{ID: 1, Content: "guidance"}}
	req.History = []*store.Utterance{
		{ID: 1, Kind: store.UtteranceKindResponse, SpeakerID: int32Ptr(2), Content: "remark", Round: 1, CreatedTs: 100},
	}

	// The identity block alone exceeds what is left; the prompt degrades
	// to system blocks plus the final instruction instead of failing.
	result, err := svc.BuildContext(stdcontext.Background(), req)
	require.NoError(t, err)
	require.Zero(t, result.UtteranceCount)
	require.False(t, result.NotebookUsed)

	content := messageContents(result.Messages)
	require.NotContains(t, content, "remark")
	require.NotContains(t, content, "guidance")
}

func TestBuildContextRequiresSpeaker(t *testing.T) {
	svc := NewService(DefaultConfig())
	_, err := svc.BuildContext(stdcontext.Background(), &BuildRequest{})
	require.Error(t, err)
}

func TestBuildContextRecordsSnapshot(t *testing.T) {
	snapshots := &capturingSnapshotStore{}
	svc := NewService(DefaultConfig()).
		WithEstimator(runeEstimator{}).
		WithRecorder(NewSnapshotRecorder(snapshots))
	participants := testParticipants()

	req := testRequest(participants[0])
	req.History = []*store.Utterance{
		{ID: 6, Kind: store.UtteranceKindResponse, SpeakerID: int32Ptr(2), Content: "fresh remark", Round: 2, CreatedTs: 200},
	}
	req.CompactMemory = &store.CompactMemory{
		Summary:                  "Earlier rounds settled on caching.",
		DistilledCount:           4,
		LastDistilledUtteranceID: 5,
	}

	_, err := svc.BuildContext(stdcontext.Background(), req)
	require.NoError(t, err)

	require.Len(t, snapshots.created, 1)
	snap := snapshots.created[0]
	require.Equal(t, "turn-1", snap.TurnUID)
	require.Equal(t, int32(10), snap.ConversationID)
	require.True(t, snap.UsedCompactMemory)
	require.Equal(t, "Earlier rounds settled on caching.", snap.InjectedSummary)
	require.NotEmpty(t, snap.UID)
}

func TestBuildContextSnapshotFailureDoesNotFailTurn(t *testing.T) {
	snapshots := &capturingSnapshotStore{err: errors.New("disk full")}
	svc := NewService(DefaultConfig()).
		WithEstimator(runeEstimator{}).
		WithRecorder(NewSnapshotRecorder(snapshots))
	participants := testParticipants()

	result, err := svc.BuildContext(stdcontext.Background(), testRequest(participants[0]))
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestGetStats(t *testing.T) {
	svc := NewService(DefaultConfig()).WithEstimator(runeEstimator{})
	participants := testParticipants()

	builds, avg := svc.GetStats()
	require.Zero(t, builds)
	require.Zero(t, avg)

	_, err := svc.BuildContext(stdcontext.Background(), testRequest(participants[0]))
	require.NoError(t, err)
	_, err = svc.BuildContext(stdcontext.Background(), testRequest(participants[0]))
	require.NoError(t, err)

	builds, avg = svc.GetStats()
	require.Equal(t, int64(2), builds)
	require.Greater(t, avg, 0.0)
}
