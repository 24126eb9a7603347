package context

import (
	"fmt"
	"strings"

	"github.com/hrygo/parley/store"
)

// TemplateProvider supplies localized, pre-rendered prompt strings.
// Placeholder substitution happens on the provider side; this engine
// never parses template syntax.
type TemplateProvider interface {
	// Identity renders the identity/role system prompt for a speaker.
	Identity(speaker *store.Participant, participants []*store.Participant) string
	// WordLimit renders the word-limit instruction appended to the identity block.
	WordLimit(speaker *store.Participant) string
	// OpeningContext renders the first-turn opening-statement context block.
	OpeningContext() string
	// PhaseNote renders the round/phase state note.
	PhaseNote(phase Phase, round, totalRounds int32) string
	// CoordinatorPrompt renders the coordinator's summary request.
	CoordinatorPrompt() string
	// OpeningPrompt renders the first speaker's strategy-flavored opening instruction.
	OpeningPrompt(speaker *store.Participant) string
	// TurnPrompt renders the regular turn instruction naming the other participants.
	TurnPrompt(speaker *store.Participant, others []string) string
}

// DefaultTemplates is the built-in English template provider.
type DefaultTemplates struct{}

func (DefaultTemplates) Identity(speaker *store.Participant, participants []*store.Participant) string {
	names := make([]string, 0, len(participants))
	for _, p := range participants {
		if p.ID != speaker.ID {
			names = append(names, p.Name)
		}
	}
	return fmt.Sprintf("You are %s, a participant in a multi-round discussion together with %s. Stay in character and build on the conversation so far.",
		speaker.Name, strings.Join(names, ", "))
}

func (DefaultTemplates) WordLimit(speaker *store.Participant) string {
	return "Keep your contribution under 200 words."
}

func (DefaultTemplates) OpeningContext() string {
	return "This is the first turn of the discussion. Each participant gives an opening statement before the debate begins."
}

func (DefaultTemplates) PhaseNote(phase Phase, round, totalRounds int32) string {
	return fmt.Sprintf("The discussion is in round %d of %d, currently in the %s phase.", round, totalRounds, phase)
}

func (DefaultTemplates) CoordinatorPrompt() string {
	return "As coordinator, summarize the round: name the main positions, points of agreement and disagreement, and what should be addressed next."
}

func (DefaultTemplates) OpeningPrompt(speaker *store.Participant) string {
	return fmt.Sprintf("%s, give your opening statement. Stake out a clear position and the line of argument you intend to pursue.", speaker.Name)
}

func (DefaultTemplates) TurnPrompt(speaker *store.Participant, others []string) string {
	return fmt.Sprintf("It is your turn, %s. Respond to the discussion so far, engaging directly with %s where useful.",
		speaker.Name, strings.Join(others, ", "))
}

var _ TemplateProvider = DefaultTemplates{}
