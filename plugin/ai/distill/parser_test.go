package distill

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/parley/store"
)

func TestParseResult(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		result, err := ParseResult(`{"distilledSummary": "we agreed on caching", "keyDecisions": ["use redis"]}`)
		require.NoError(t, err)
		require.Equal(t, "we agreed on caching", result.DistilledSummary)
		require.Equal(t, []string{"use redis"}, result.KeyDecisions)
	})

	t.Run("fenced block", func(t *testing.T) {
		raw := "```json\n{\"distilledSummary\": \"fenced\"}\n```"
		result, err := ParseResult(raw)
		require.NoError(t, err)
		require.Equal(t, "fenced", result.DistilledSummary)
	})

	t.Run("surrounding commentary", func(t *testing.T) {
		raw := `Here is the merged memory you asked for:
{"distilledSummary": "with commentary", "currentStance": "undecided"}
Let me know if you need anything else.`
		result, err := ParseResult(raw)
		require.NoError(t, err)
		require.Equal(t, "with commentary", result.DistilledSummary)
		require.Equal(t, "undecided", result.CurrentStance)
	})

	t.Run("schema echoed before the object", func(t *testing.T) {
		raw := "Per the schema {distilledSummary, pinnedFacts} you gave me:\n" +
			`{"distilledSummary": "rounds merged"}`
		result, err := ParseResult(raw)
		require.NoError(t, err)
		require.Equal(t, "rounds merged", result.DistilledSummary)
	})

	t.Run("unbalanced brace before the object", func(t *testing.T) {
		raw := "see {section 2\n" + `{"distilledSummary": "still found"}`
		result, err := ParseResult(raw)
		require.NoError(t, err)
		require.Equal(t, "still found", result.DistilledSummary)
	})

	t.Run("braces inside strings", func(t *testing.T) {
		result, err := ParseResult(`{"distilledSummary": "code {x: 1} was discussed"}`)
		require.NoError(t, err)
		require.Equal(t, "code {x: 1} was discussed", result.DistilledSummary)
	})

	t.Run("no object", func(t *testing.T) {
		_, err := ParseResult("I could not summarize this discussion.")
		require.True(t, errors.Is(err, ErrDistillationParse))
	})

	t.Run("malformed object", func(t *testing.T) {
		_, err := ParseResult(`{"distilledSummary": }`)
		require.True(t, errors.Is(err, ErrDistillationParse))
	})

	t.Run("missing summary", func(t *testing.T) {
		_, err := ParseResult(`{"keyDecisions": ["use redis"]}`)
		require.True(t, errors.Is(err, ErrDistillationParse))
	})

	t.Run("blank summary", func(t *testing.T) {
		_, err := ParseResult(`{"distilledSummary": "   "}`)
		require.True(t, errors.Is(err, ErrDistillationParse))
	})
}

func TestParseResultFactNormalization(t *testing.T) {
	raw := `{
		"distilledSummary": "s",
		"pinnedFacts": [
			{"content": "a", "category": "decision", "importance": 7},
			{"content": "b", "category": "hunch", "importance": 0},
			{"content": "c", "category": "constraint", "importance": 99},
			{"content": "d", "category": "action", "importance": -3}
		]
	}`
	result, err := ParseResult(raw)
	require.NoError(t, err)
	require.Len(t, result.PinnedFacts, 4)

	require.Equal(t, "decision", result.PinnedFacts[0].Category)
	require.Equal(t, int32(7), result.PinnedFacts[0].Importance)

	// Unknown categories fall back to definition, zero importance to the default.
	require.Equal(t, string(store.PinnedFactDefinition), result.PinnedFacts[1].Category)
	require.Equal(t, int32(defaultFactImportance), result.PinnedFacts[1].Importance)

	require.Equal(t, int32(10), result.PinnedFacts[2].Importance)
	require.Equal(t, int32(1), result.PinnedFacts[3].Importance)
}
