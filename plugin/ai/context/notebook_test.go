package context

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/parley/store"
)

func TestTruncateNotebook(t *testing.T) {
	entry := func(id int32, content string) *store.NotebookEntry {
		return &store.NotebookEntry{ID: id, Content: content}
	}

	t.Run("everything fits", func(t *testing.T) {
		entries := []*store.NotebookEntry{entry(1, "aaaa"), entry(2, "bbbb")}
		kept := TruncateNotebook(entries, runeEstimator{}, 100)
		require.Equal(t, entries, kept)
	})

	t.Run("keeps newest entries", func(t *testing.T) {
		entries := []*store.NotebookEntry{
			entry(1, strings.Repeat("a", 50)),
			entry(2, strings.Repeat("b", 30)),
			entry(3, strings.Repeat("c", 30)),
		}
		kept := TruncateNotebook(entries, runeEstimator{}, 70)
		require.Len(t, kept, 2)
		require.Equal(t, int32(2), kept[0].ID)
		require.Equal(t, int32(3), kept[1].ID)
	})

	t.Run("stops at first oversized entry", func(t *testing.T) {
		// The middle entry blocks accumulation even though the oldest
		// would fit on its own; partial gaps would misrepresent the notes.
		entries := []*store.NotebookEntry{
			entry(1, strings.Repeat("a", 10)),
			entry(2, strings.Repeat("b", 80)),
			entry(3, strings.Repeat("c", 30)),
		}
		kept := TruncateNotebook(entries, runeEstimator{}, 50)
		require.Len(t, kept, 1)
		require.Equal(t, int32(3), kept[0].ID)
	})

	t.Run("nothing fits", func(t *testing.T) {
		entries := []*store.NotebookEntry{entry(1, strings.Repeat("a", 100))}
		require.Nil(t, TruncateNotebook(entries, runeEstimator{}, 50))
	})

	t.Run("zero budget", func(t *testing.T) {
		entries := []*store.NotebookEntry{entry(1, "aaaa")}
		require.Nil(t, TruncateNotebook(entries, runeEstimator{}, 0))
	})
}
