package store

import (
	"context"
	"database/sql"
	"errors"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStaleCompactMemory is returned when a versioned compact-memory
	// update loses a write race.
	ErrStaleCompactMemory = errors.New("compact memory version is stale")
	// ErrNoFieldsToUpdate is returned when an update carries no fields.
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// Driver is an interface for store drivers.
type Driver interface {
	GetDB() *sql.DB
	Close() error
	Migrate(ctx context.Context) error

	CreateUtterance(ctx context.Context, create *Utterance) (*Utterance, error)
	ListUtterances(ctx context.Context, find *FindUtterance) ([]*Utterance, error)
	UpdateUtterance(ctx context.Context, update *UpdateUtterance) (*Utterance, error)

	CreateParticipant(ctx context.Context, create *Participant) (*Participant, error)
	ListParticipants(ctx context.Context, find *FindParticipant) ([]*Participant, error)

	CreateInterjection(ctx context.Context, create *Interjection) (*Interjection, error)
	ListInterjections(ctx context.Context, find *FindInterjection) ([]*Interjection, error)
	UpdateInterjection(ctx context.Context, update *UpdateInterjection) (*Interjection, error)

	CreateNotebookEntry(ctx context.Context, create *NotebookEntry) (*NotebookEntry, error)
	ListNotebookEntries(ctx context.Context, find *FindNotebookEntry) ([]*NotebookEntry, error)

	CreateCompactMemory(ctx context.Context, create *CompactMemory) (*CompactMemory, error)
	GetCompactMemory(ctx context.Context, find *FindCompactMemory) (*CompactMemory, error)
	UpdateCompactMemory(ctx context.Context, update *UpdateCompactMemory) (*CompactMemory, error)

	CreateContextSnapshot(ctx context.Context, create *ContextSnapshot) (*ContextSnapshot, error)
	GetContextSnapshot(ctx context.Context, find *FindContextSnapshot) (*ContextSnapshot, error)
}
