package store

// PinnedFactCategory classifies a pinned fact in compact memory.
type PinnedFactCategory string

const (
	PinnedFactDecision     PinnedFactCategory = "decision"
	PinnedFactConstraint   PinnedFactCategory = "constraint"
	PinnedFactDefinition   PinnedFactCategory = "definition"
	PinnedFactConsensus    PinnedFactCategory = "consensus"
	PinnedFactDisagreement PinnedFactCategory = "disagreement"
	PinnedFactAction       PinnedFactCategory = "action"
)

// IsValidPinnedFactCategory reports whether c is one of the fixed categories.
func IsValidPinnedFactCategory(c PinnedFactCategory) bool {
	switch c {
	case PinnedFactDecision, PinnedFactConstraint, PinnedFactDefinition,
		PinnedFactConsensus, PinnedFactDisagreement, PinnedFactAction:
		return true
	}
	return false
}

// PinnedFact is a durable fact extracted during distillation.
// Importance is clamped to [1, 10].
type PinnedFact struct {
	ID         string             `json:"id"`
	Content    string             `json:"content"`
	Category   PinnedFactCategory `json:"category"`
	Source     string             `json:"source,omitempty"`
	Round      int32              `json:"round"`
	Importance int32              `json:"importance"`
}

// CompactMemory is the distilled record of older discussion rounds,
// one per conversation. The cursor (LastDistilledRound,
// LastDistilledUtteranceID) only moves forward; utterances at or before
// it are never re-selected once compaction has passed them.
type CompactMemory struct {
	ID             int32
	ConversationID int32
	Summary        string
	Stance         string
	KeyDecisions   []string
	OpenQuestions  []string
	Constraints    []string
	ActionItems    []string
	PinnedFacts    []PinnedFact

	LastDistilledRound       int32
	LastDistilledUtteranceID int32
	DistilledCount           int32

	// Version supports optimistic locking on update. Concurrent
	// read-merge-write cycles fail with ErrStaleCompactMemory instead
	// of silently clobbering each other.
	Version   int32
	CreatedTs int64
	UpdatedTs int64
}

type FindCompactMemory struct {
	ConversationID *int32
}

// UpdateCompactMemory replaces the distilled fields of a compact memory
// record. Version must match the currently persisted version.
type UpdateCompactMemory struct {
	ConversationID int32
	Version        int32

	Summary       *string
	Stance        *string
	KeyDecisions  []string
	OpenQuestions []string
	Constraints   []string
	ActionItems   []string
	PinnedFacts   []PinnedFact

	LastDistilledRound       *int32
	LastDistilledUtteranceID *int32
	DistilledCount           *int32
	UpdatedTs                *int64
}
