package store

// NotebookEntry is one note in a speaker's per-conversation notebook.
// Entries form an explicit append-only ordered list, newest last; the
// notebook is never stored as separator-joined text so note content can
// contain any character sequence.
type NotebookEntry struct {
	ID             int32
	ConversationID int32
	SpeakerID      int32
	Content        string
	CreatedTs      int64
}

type FindNotebookEntry struct {
	ConversationID *int32
	SpeakerID      *int32
}
