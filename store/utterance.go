package store

// UtteranceKind classifies a single message within a discussion round.
type UtteranceKind string

const (
	UtteranceKindResponse     UtteranceKind = "RESPONSE"
	UtteranceKindSummary      UtteranceKind = "SUMMARY"
	UtteranceKindInterjection UtteranceKind = "INTERJECTION"
	UtteranceKindSystem       UtteranceKind = "SYSTEM"
	UtteranceKindOpening      UtteranceKind = "OPENING"
)

// Utterance is one message attributable to a speaker, the system, or a
// user event within a single round. Immutable after creation except Weight.
type Utterance struct {
	ID             int32
	UID            string
	ConversationID int32
	SpeakerID      *int32
	Content        string
	AddressedTo    *int32
	Round          int32
	Weight         int32
	Kind           UtteranceKind
	CreatedTs      int64
}

type FindUtterance struct {
	ID             *int32
	UID            *string
	ConversationID *int32
	Round          *int32
	MinRound       *int32
	MaxRound       *int32
	// AfterID restricts results to utterances created strictly after the
	// given utterance ID. Used to exclude already-distilled history.
	AfterID *int32
	Kinds   []UtteranceKind
}

// UpdateUtterance carries the only mutable utterance field.
type UpdateUtterance struct {
	ID     int32
	Weight *int32
}
