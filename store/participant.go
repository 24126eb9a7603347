package store

// Participant is a speaker reference used to resolve display names
// during prompt assembly. Participants are owned by the discussion
// orchestrator, not by this engine.
type Participant struct {
	ID             int32
	UID            string
	ConversationID int32
	Name           string
	Coordinator    bool
	CreatedTs      int64
}

type FindParticipant struct {
	ID             *int32
	ConversationID *int32
}
