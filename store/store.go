package store

import (
	"context"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/parley/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// Migrate applies the schema for the configured driver.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) CreateUtterance(ctx context.Context, create *Utterance) (*Utterance, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	return s.driver.CreateUtterance(ctx, create)
}

func (s *Store) ListUtterances(ctx context.Context, find *FindUtterance) ([]*Utterance, error) {
	return s.driver.ListUtterances(ctx, find)
}

func (s *Store) UpdateUtterance(ctx context.Context, update *UpdateUtterance) (*Utterance, error) {
	return s.driver.UpdateUtterance(ctx, update)
}

func (s *Store) CreateParticipant(ctx context.Context, create *Participant) (*Participant, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	return s.driver.CreateParticipant(ctx, create)
}

func (s *Store) ListParticipants(ctx context.Context, find *FindParticipant) ([]*Participant, error) {
	return s.driver.ListParticipants(ctx, find)
}

func (s *Store) CreateInterjection(ctx context.Context, create *Interjection) (*Interjection, error) {
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	return s.driver.CreateInterjection(ctx, create)
}

func (s *Store) ListInterjections(ctx context.Context, find *FindInterjection) ([]*Interjection, error) {
	return s.driver.ListInterjections(ctx, find)
}

func (s *Store) UpdateInterjection(ctx context.Context, update *UpdateInterjection) (*Interjection, error) {
	return s.driver.UpdateInterjection(ctx, update)
}

func (s *Store) CreateNotebookEntry(ctx context.Context, create *NotebookEntry) (*NotebookEntry, error) {
	return s.driver.CreateNotebookEntry(ctx, create)
}

func (s *Store) ListNotebookEntries(ctx context.Context, find *FindNotebookEntry) ([]*NotebookEntry, error) {
	return s.driver.ListNotebookEntries(ctx, find)
}

func (s *Store) CreateCompactMemory(ctx context.Context, create *CompactMemory) (*CompactMemory, error) {
	return s.driver.CreateCompactMemory(ctx, create)
}

func (s *Store) GetCompactMemory(ctx context.Context, find *FindCompactMemory) (*CompactMemory, error) {
	return s.driver.GetCompactMemory(ctx, find)
}

func (s *Store) UpdateCompactMemory(ctx context.Context, update *UpdateCompactMemory) (*CompactMemory, error) {
	return s.driver.UpdateCompactMemory(ctx, update)
}

func (s *Store) CreateContextSnapshot(ctx context.Context, create *ContextSnapshot) (*ContextSnapshot, error) {
	return s.driver.CreateContextSnapshot(ctx, create)
}

func (s *Store) GetContextSnapshot(ctx context.Context, find *FindContextSnapshot) (*ContextSnapshot, error) {
	return s.driver.GetContextSnapshot(ctx, find)
}
