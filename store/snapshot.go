package store

// ContextSnapshot is a write-once audit record of what went into a
// single turn's prompt. It stores compact-memory fields only when they
// were actually injected into the prompt.
type ContextSnapshot struct {
	ID             int32
	UID            string
	TurnUID        string
	ConversationID int32

	UsedCompactMemory   bool
	InjectedSummary     string
	InjectedStance      string
	InjectedDecisions   []string
	InjectedQuestions   []string
	InjectedConstraints []string
	InjectedActionItems []string
	InjectedFacts       []PinnedFact

	UtteranceCount int32
	NotebookUsed   bool
	CreatedTs      int64
}

type FindContextSnapshot struct {
	ID             *int32
	TurnUID        *string
	ConversationID *int32
}
