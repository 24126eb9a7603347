package context

import (
	"math"
	"time"

	"github.com/hrygo/parley/plugin/ai/tokenizer"
	"github.com/hrygo/parley/store"
)

// Base scores by utterance kind.
const (
	baseScoreOpening      = 150
	baseScoreSummary      = 120
	baseScoreInterjection = 80
	baseScoreSystem       = 70
	baseScoreResponse     = 30
)

// Bonuses and decay tuning.
const (
	bonusContinuity  = 40 // utterance by the acting speaker
	bonusAddressed   = 50 // utterance addressed to the acting speaker
	weightMultiplier = 10 // user vote delta
	bonusRecencyMax  = 20 // linear by position, oldest 0 .. newest 20
	bonusFirst       = 30 // conversation opener
	bonusLastThree   = 25 // immediate context
	decayHalfLife    = 30 * time.Minute
	roundDecayStep   = 0.1
	minDecayFactor   = 0.3
)

// ScoredUtterance is a selection candidate with its computed value.
// Critical is an explicit flag derived from the utterance kind, never
// inferred from the numeric score, so bonus stacking cannot promote an
// ordinary utterance into guaranteed inclusion.
type ScoredUtterance struct {
	Utterance *store.Utterance
	Score     int
	Critical  bool
	Tokens    int
}

// Scorer computes importance scores for selection candidates.
type Scorer struct {
	estimator tokenizer.Estimator
	now       func() time.Time
}

// NewScorer creates a scorer using the given token estimator.
func NewScorer(est tokenizer.Estimator) *Scorer {
	return &Scorer{estimator: est, now: time.Now}
}

func baseScore(kind store.UtteranceKind) int {
	switch kind {
	case store.UtteranceKindOpening:
		return baseScoreOpening
	case store.UtteranceKindSummary:
		return baseScoreSummary
	case store.UtteranceKindInterjection:
		return baseScoreInterjection
	case store.UtteranceKindSystem:
		return baseScoreSystem
	default:
		return baseScoreResponse
	}
}

func isCriticalKind(kind store.UtteranceKind) bool {
	return kind == store.UtteranceKindOpening || kind == store.UtteranceKindSummary
}

// Score ranks the candidate utterances for the acting speaker.
// Candidates must be in chronological order.
func (s *Scorer) Score(candidates []*store.Utterance, actingSpeakerID int32, currentRound int32) []ScoredUtterance {
	total := len(candidates)
	if total == 0 {
		return nil
	}

	now := s.now()
	scored := make([]ScoredUtterance, 0, total)
	for i, u := range candidates {
		score := baseScore(u.Kind)

		if u.SpeakerID != nil && *u.SpeakerID == actingSpeakerID {
			score += bonusContinuity
		}
		if u.AddressedTo != nil && *u.AddressedTo == actingSpeakerID {
			score += bonusAddressed
		}
		score += int(u.Weight) * weightMultiplier

		if total > 1 {
			score += bonusRecencyMax * i / (total - 1)
		}
		if i == 0 {
			score += bonusFirst
		}
		if i >= total-3 {
			score += bonusLastThree
		}

		critical := isCriticalKind(u.Kind)
		if !critical {
			score = decay(score, u, currentRound, now)
		}

		scored = append(scored, ScoredUtterance{
			Utterance: u,
			Score:     score,
			Critical:  critical,
			Tokens:    s.estimator.Estimate(u.Content),
		})
	}

	return scored
}

// decay discounts a score by age and round distance. The combined factor
// is floored at minDecayFactor so older content is discounted but never
// erased.
func decay(score int, u *store.Utterance, currentRound int32, now time.Time) int {
	ageMs := float64(now.UnixMilli() - u.CreatedTs*1000)
	if ageMs < 0 {
		ageMs = 0
	}
	timeDecay := math.Pow(0.5, ageMs/float64(decayHalfLife.Milliseconds()))

	roundsOld := float64(currentRound - u.Round)
	if roundsOld < 0 {
		roundsOld = 0
	}
	roundDecay := 1 - roundDecayStep*roundsOld
	if roundDecay < 0 {
		roundDecay = 0
	}

	factor := timeDecay * roundDecay
	if factor < minDecayFactor {
		factor = minDecayFactor
	}

	return int(math.Floor(float64(score) * factor))
}
