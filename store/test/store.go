// Package test hosts store integration tests against the sqlite backend.
package test

import (
	"context"
	"fmt"
	"testing"

	"github.com/hrygo/parley/internal/profile"
	"github.com/hrygo/parley/store"
	"github.com/hrygo/parley/store/db"
)

// NewTestingStore opens a migrated store on a throwaway sqlite database.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   t.TempDir(),
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("invalid testing profile: %v", err)
	}

	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(driver, p)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate testing db: %v", err)
	}

	t.Cleanup(func() {
		if err := ts.Close(); err != nil {
			t.Logf("failed to close testing store: %v", err)
		}
	})
	return ts
}

var uidCounter int

func nextUID(prefix string) string {
	uidCounter++
	return fmt.Sprintf("%s-%d", prefix, uidCounter)
}
