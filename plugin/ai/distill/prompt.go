package distill

import (
	"fmt"
	"strings"

	"github.com/hrygo/parley/plugin/ai"
	"github.com/hrygo/parley/store"
)

const distillationInstruction = `You maintain the condensed memory of a multi-round discussion.
Merge the existing memory with the new transcript below. Preserve standing decisions, constraints and unresolved questions from the existing memory unless the new transcript supersedes them.

Respond with a single JSON object:
{
  "distilledSummary": "merged summary of the discussion so far (required)",
  "currentStance": "where the discussion currently stands",
  "keyDecisions": ["..."],
  "openQuestions": ["..."],
  "constraints": ["..."],
  "actionItems": ["..."],
  "pinnedFacts": [{"content": "...", "category": "decision|constraint|definition|consensus|disagreement|action", "source": "speaker name", "importance": 1-10}]
}`

// buildMessages renders the summarization request: the existing memory
// to merge with, then the eligible utterances as "[speaker]: content" lines.
func buildMessages(m *store.CompactMemory, utterances []*store.Utterance, names map[int32]string) []ai.Message {
	var sb strings.Builder

	sb.WriteString("Existing memory:\n")
	if strings.TrimSpace(m.Summary) == "" {
		sb.WriteString("(none yet)\n")
	} else {
		sb.WriteString(m.Summary + "\n")
		if m.Stance != "" {
			sb.WriteString("Current stance: " + m.Stance + "\n")
		}
		writeSection(&sb, "Key decisions", m.KeyDecisions)
		writeSection(&sb, "Open questions", m.OpenQuestions)
		writeSection(&sb, "Constraints", m.Constraints)
		writeSection(&sb, "Action items", m.ActionItems)
		if len(m.PinnedFacts) > 0 {
			sb.WriteString("Pinned facts:\n")
			for _, f := range m.PinnedFacts {
				sb.WriteString(fmt.Sprintf("- [%s] %s\n", f.Category, f.Content))
			}
		}
	}

	sb.WriteString("\nNew transcript:\n")
	for _, u := range utterances {
		sb.WriteString(fmt.Sprintf("[%s]: %s\n", transcriptSpeaker(u, names), u.Content))
	}

	return []ai.Message{
		{Role: ai.RoleSystem, Content: distillationInstruction},
		{Role: ai.RoleUser, Content: sb.String()},
	}
}

func writeSection(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(title + ":\n")
	for _, item := range items {
		sb.WriteString("- " + item + "\n")
	}
}

func transcriptSpeaker(u *store.Utterance, names map[int32]string) string {
	if u.Kind == store.UtteranceKindInterjection {
		return "user"
	}
	if u.SpeakerID == nil {
		return "system"
	}
	if name, ok := names[*u.SpeakerID]; ok {
		return name
	}
	return fmt.Sprintf("speaker %d", *u.SpeakerID)
}
