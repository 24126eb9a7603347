// Package context builds bounded prompts for discussion turns.
// It orchestrates token budgeting, importance-based message selection,
// notebook and interjection trimming, compact-memory injection, and
// snapshot recording into one ordered prompt per turn.
package context

import (
	"github.com/hrygo/parley/plugin/ai"
	"github.com/hrygo/parley/store"
)

// Phase describes the progression state of a discussion.
type Phase string

const (
	PhaseExploration Phase = "exploration"
	PhaseDevelopment Phase = "development"
	PhaseConvergence Phase = "convergence"
)

// PhaseForRound maps round progress onto a discussion phase.
// The first third of rounds explores, the second develops, the rest converges.
func PhaseForRound(round, totalRounds int32) Phase {
	if totalRounds <= 0 {
		return PhaseExploration
	}
	progress := float64(round) / float64(totalRounds)
	switch {
	case progress <= 0.33:
		return PhaseExploration
	case progress <= 0.66:
		return PhaseDevelopment
	default:
		return PhaseConvergence
	}
}

// BuildRequest contains everything needed to assemble one turn's prompt.
type BuildRequest struct {
	ConversationID int32
	TurnUID        string

	// Speaker is the participant about to act.
	Speaker      *store.Participant
	Participants []*store.Participant

	// History is the full utterance list, chronological. The assembler
	// restricts it to post-cursor utterances when compact memory is used.
	History       []*store.Utterance
	Interjections []*store.Interjection
	Notebook      []*store.NotebookEntry

	// CompactMemory is nil when the conversation has never been distilled.
	CompactMemory *store.CompactMemory

	// RunningSummary is an optional externally supplied round summary.
	RunningSummary string

	FirstTurn    bool
	CurrentRound int32
	TotalRounds  int32
}

// BuildResult is the assembled prompt plus audit information.
type BuildResult struct {
	Messages []ai.Message

	UsedCompactMemory bool
	// InjectedMemory holds the compact-memory record that was rendered
	// into the prompt; nil when compact memory was not used.
	InjectedMemory *store.CompactMemory

	UtteranceCount int32
	NotebookUsed   bool

	SystemPromptTokens int
	Budget             Budget
}
