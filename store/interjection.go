package store

// Interjection is a user guidance note injected into the discussion.
type Interjection struct {
	ID             int32
	UID            string
	ConversationID int32
	Content        string
	// AfterRound is the round number after which the interjection applies.
	AfterRound int32
	Processed  bool
	CreatedTs  int64
}

type FindInterjection struct {
	ID             *int32
	ConversationID *int32
	Processed      *bool
}

type UpdateInterjection struct {
	ID        int32
	Processed *bool
}
