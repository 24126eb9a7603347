package context

import (
	stdcontext "context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hrygo/parley/store"
)

// SnapshotStore persists context snapshots.
type SnapshotStore interface {
	CreateContextSnapshot(ctx stdcontext.Context, create *store.ContextSnapshot) (*store.ContextSnapshot, error)
}

// SnapshotRecorder writes a best-effort audit record of what went into a
// turn's prompt. A write failure is logged and swallowed; it never fails
// the turn.
type SnapshotRecorder struct {
	store SnapshotStore
	now   func() time.Time
}

// NewSnapshotRecorder creates a recorder backed by the given store.
func NewSnapshotRecorder(s SnapshotStore) *SnapshotRecorder {
	return &SnapshotRecorder{store: s, now: time.Now}
}

// Record persists the snapshot for one turn. Compact-memory fields are
// copied only when the memory was actually injected into the prompt.
func (r *SnapshotRecorder) Record(ctx stdcontext.Context, turnUID string, conversationID int32, result *BuildResult) {
	snapshot := &store.ContextSnapshot{
		UID:               uuid.NewString(),
		TurnUID:           turnUID,
		ConversationID:    conversationID,
		UsedCompactMemory: result.UsedCompactMemory,
		UtteranceCount:    result.UtteranceCount,
		NotebookUsed:      result.NotebookUsed,
		CreatedTs:         r.now().Unix(),
	}

	if result.UsedCompactMemory && result.InjectedMemory != nil {
		m := result.InjectedMemory
		snapshot.InjectedSummary = m.Summary
		snapshot.InjectedStance = m.Stance
		snapshot.InjectedDecisions = m.KeyDecisions
		snapshot.InjectedQuestions = m.OpenQuestions
		snapshot.InjectedConstraints = m.Constraints
		snapshot.InjectedActionItems = m.ActionItems
		snapshot.InjectedFacts = m.PinnedFacts
	}

	if _, err := r.store.CreateContextSnapshot(ctx, snapshot); err != nil {
		slog.Warn("failed to record context snapshot",
			"turn_uid", turnUID,
			"conversation_id", conversationID,
			"error", err,
		)
	}
}
