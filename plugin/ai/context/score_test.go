package context

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/parley/store"
)

func int32Ptr(v int32) *int32 { return &v }

// scoreClock is a fixed whole-second instant so age-based decay is exact.
var scoreClock = time.Unix(1700000000, 0)

// legacyCriticalBar is the score above which earlier revisions inferred
// criticality; bonus stacking can clear it without setting the flag.
const legacyCriticalBar = 100

func newTestScorer(now time.Time) *Scorer {
	s := NewScorer(runeEstimator{})
	s.now = func() time.Time { return now }
	return s
}

func utteranceAt(id int32, kind store.UtteranceKind, round int32, ts time.Time) *store.Utterance {
	return &store.Utterance{
		ID:        id,
		Content:   "content",
		Round:     round,
		Kind:      kind,
		CreatedTs: ts.Unix(),
	}
}

func TestScoreBases(t *testing.T) {
	now := scoreClock
	scorer := newTestScorer(now)

	// Five fresh utterances in the current round: no decay applies, so
	// only bases and position bonuses separate them.
	candidates := []*store.Utterance{
		utteranceAt(1, store.UtteranceKindOpening, 1, now),
		utteranceAt(2, store.UtteranceKindSummary, 1, now),
		utteranceAt(3, store.UtteranceKindInterjection, 1, now),
		utteranceAt(4, store.UtteranceKindSystem, 1, now),
		utteranceAt(5, store.UtteranceKindResponse, 1, now),
	}
	scored := scorer.Score(candidates, 99, 1)
	require.Len(t, scored, 5)

	// Position bonuses: recency is bonusRecencyMax*i/(n-1), first +30,
	// last three +25.
	require.Equal(t, 150+0+30, scored[0].Score)
	require.Equal(t, 120+5, scored[1].Score)
	require.Equal(t, 80+10+25, scored[2].Score)
	require.Equal(t, 70+15+25, scored[3].Score)
	require.Equal(t, 30+20+25, scored[4].Score)
}

func TestScoreBonuses(t *testing.T) {
	now := scoreClock
	scorer := newTestScorer(now)
	speakerID := int32(7)

	own := utteranceAt(1, store.UtteranceKindResponse, 1, now)
	own.SpeakerID = int32Ptr(speakerID)

	addressed := utteranceAt(2, store.UtteranceKindResponse, 1, now)
	addressed.SpeakerID = int32Ptr(3)
	addressed.AddressedTo = int32Ptr(speakerID)

	upvoted := utteranceAt(3, store.UtteranceKindResponse, 1, now)
	upvoted.Weight = 2

	downvoted := utteranceAt(4, store.UtteranceKindResponse, 1, now)
	downvoted.Weight = -1

	scored := scorer.Score([]*store.Utterance{own, addressed, upvoted, downvoted}, speakerID, 1)

	// i=0: +first(30), i>=1: recency 20*i/3, last three +25.
	require.Equal(t, 30+40+30, scored[0].Score)
	require.Equal(t, 30+50+6+25, scored[1].Score)
	require.Equal(t, 30+20+13+25, scored[2].Score)
	require.Equal(t, 30-10+20+25, scored[3].Score)
}

func TestScoreDecay(t *testing.T) {
	now := scoreClock
	scorer := newTestScorer(now)

	t.Run("half life", func(t *testing.T) {
		// One 30-minute-old response in the same round decays to half.
		u := utteranceAt(1, store.UtteranceKindResponse, 1, now.Add(-30*time.Minute))
		scored := scorer.Score([]*store.Utterance{u}, 99, 1)
		// single candidate: first +30, last three +25 -> raw 85, halved.
		require.Equal(t, 42, scored[0].Score)
	})

	t.Run("floor", func(t *testing.T) {
		// Ancient content many rounds back still keeps 30% of its raw
		// score: floor(85 * 0.3) = 25.
		u := utteranceAt(1, store.UtteranceKindResponse, 1, now.Add(-24*time.Hour))
		scored := scorer.Score([]*store.Utterance{u}, 99, 12)
		require.Equal(t, 25, scored[0].Score)
	})

	t.Run("criticals never decay", func(t *testing.T) {
		u := utteranceAt(1, store.UtteranceKindOpening, 1, now.Add(-24*time.Hour))
		scored := scorer.Score([]*store.Utterance{u}, 99, 12)
		require.Equal(t, 150+30+25, scored[0].Score)
		require.True(t, scored[0].Critical)
	})
}

func TestCriticalityIsKindBased(t *testing.T) {
	now := scoreClock
	scorer := newTestScorer(now)

	// A heavily upvoted, addressed response can out-score the old
	// criticality bar without becoming critical; only kind decides.
	u := utteranceAt(1, store.UtteranceKindResponse, 1, now)
	u.AddressedTo = int32Ptr(7)
	u.Weight = 5

	scored := scorer.Score([]*store.Utterance{u}, 7, 1)
	require.Greater(t, scored[0].Score, legacyCriticalBar)
	require.False(t, scored[0].Critical)

	summary := utteranceAt(2, store.UtteranceKindSummary, 1, now)
	scored = scorer.Score([]*store.Utterance{summary}, 7, 1)
	require.True(t, scored[0].Critical)
}

func TestScoreEmpty(t *testing.T) {
	require.Nil(t, newTestScorer(scoreClock).Score(nil, 1, 1))
}
