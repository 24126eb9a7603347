package context

import (
	stdcontext "context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/hrygo/parley/plugin/ai"
	"github.com/hrygo/parley/plugin/ai/tokenizer"
	"github.com/hrygo/parley/store"
)

// Config configures the context service.
type Config struct {
	// ContextCeiling is the hard token ceiling of the model window.
	ContextCeiling int
	// ResponseReserve is the token count held back for the model's reply.
	ResponseReserve int
	// HighRatingWeight marks utterances at or above this weight in the prompt.
	HighRatingWeight int32
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ContextCeiling:   DefaultContextCeiling,
		ResponseReserve:  DefaultResponseReserve,
		HighRatingWeight: 3,
	}
}

// Service assembles turn prompts. Collaborators are injected; all
// computation is synchronous and bounded by input size.
type Service struct {
	config    Config
	estimator tokenizer.Estimator
	policy    AllocationPolicy
	scorer    *Scorer
	templates TemplateProvider
	recorder  *SnapshotRecorder

	stats serviceStats
}

type serviceStats struct {
	totalBuilds int64
	totalTokens int64
}

// NewService creates a context service with default collaborators.
func NewService(cfg Config) *Service {
	if cfg.ContextCeiling <= 0 {
		cfg.ContextCeiling = DefaultContextCeiling
	}
	if cfg.ResponseReserve <= 0 {
		cfg.ResponseReserve = DefaultResponseReserve
	}
	if cfg.HighRatingWeight <= 0 {
		cfg.HighRatingWeight = 3
	}

	est := tokenizer.New()
	return &Service{
		config:    cfg,
		estimator: est,
		policy:    NewDefaultAllocationPolicy(),
		scorer:    NewScorer(est),
		templates: DefaultTemplates{},
	}
}

// WithEstimator sets the token estimator.
func (s *Service) WithEstimator(est tokenizer.Estimator) *Service {
	s.estimator = est
	s.scorer = NewScorer(est)
	return s
}

// WithPolicy sets the allocation policy.
func (s *Service) WithPolicy(p AllocationPolicy) *Service {
	s.policy = p
	return s
}

// WithTemplates sets the template provider.
func (s *Service) WithTemplates(t TemplateProvider) *Service {
	s.templates = t
	return s
}

// WithRecorder sets the snapshot recorder.
func (s *Service) WithRecorder(r *SnapshotRecorder) *Service {
	s.recorder = r
	return s
}

// ShouldUseCompactMemory reports whether the compact-memory block is
// injected for this turn. It is false when no usable memory exists and
// true only once at least one utterance lies strictly after the cursor,
// so distilled memory never displaces history it has not yet absorbed.
func ShouldUseCompactMemory(m *store.CompactMemory, history []*store.Utterance) bool {
	if m == nil || strings.TrimSpace(m.Summary) == "" || m.DistilledCount == 0 {
		return false
	}
	for _, u := range history {
		if u.ID > m.LastDistilledUtteranceID {
			return true
		}
	}
	return false
}

// BuildContext assembles the ordered prompt for one turn.
func (s *Service) BuildContext(ctx stdcontext.Context, req *BuildRequest) (*BuildResult, error) {
	if req.Speaker == nil {
		return nil, fmt.Errorf("build request has no acting speaker")
	}
	atomic.AddInt64(&s.stats.totalBuilds, 1)

	// 1. Identity block. The coordinator runs without one; its final
	// instruction carries the role.
	systemPrompt := ""
	if !req.Speaker.Coordinator {
		identity := s.templates.Identity(req.Speaker, req.Participants)
		wordLimit := s.templates.WordLimit(req.Speaker)
		systemPrompt = strings.TrimSpace(identity + "\n" + wordLimit)
	}
	systemTokens := s.estimator.Estimate(systemPrompt)

	// 2-3. Compact-memory gating and candidate restriction.
	useCompact := ShouldUseCompactMemory(req.CompactMemory, req.History)
	candidates := req.History
	if useCompact {
		fresh := make([]*store.Utterance, 0, len(candidates))
		for _, u := range candidates {
			if u.ID > req.CompactMemory.LastDistilledUtteranceID {
				fresh = append(fresh, u)
			}
		}
		candidates = fresh
	}

	// 4. Budgeting and selection.
	available := s.config.ContextCeiling - s.config.ResponseReserve - systemTokens
	budget := s.policy.Allocate(available)

	messagesBudget := budget.Messages
	if useCompact {
		messagesBudget -= EstimateCompactMemoryTokens(req.CompactMemory, s.estimator)
		if messagesBudget < 0 {
			messagesBudget = 0
		}
	}

	notebook := TruncateNotebook(req.Notebook, s.estimator, budget.Notebook)
	interjections := SelectInterjections(req.Interjections, s.estimator, budget.Interjections)
	scored := s.scorer.Score(candidates, req.Speaker.ID, req.CurrentRound)
	selected := SelectMessages(scored, messagesBudget)

	// 5. Ordered assembly.
	messages := make([]ai.Message, 0, len(selected)+len(interjections)+8)
	if systemPrompt != "" {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: systemPrompt})
	}
	if req.FirstTurn {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: s.templates.OpeningContext()})
	}
	phase := PhaseForRound(req.CurrentRound, req.TotalRounds)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: s.templates.PhaseNote(phase, req.CurrentRound, req.TotalRounds)})

	if useCompact {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: renderCompactMemory(req.CompactMemory)})
	}
	if req.RunningSummary != "" {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: "Summary of the discussion so far:\n" + req.RunningSummary})
	}
	if len(notebook) > 0 {
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: renderNotebook(notebook)})
	}
	for _, in := range interjections {
		messages = append(messages, ai.Message{Role: ai.RoleUser, Content: "[USER GUIDANCE] " + in.Content})
	}

	names := participantNames(req.Participants)
	for _, c := range selected {
		messages = append(messages, s.utteranceMessage(c.Utterance, req.Speaker, names))
	}

	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: s.finalInstruction(req, names)})

	result := &BuildResult{
		Messages:           messages,
		UsedCompactMemory:  useCompact,
		UtteranceCount:     int32(len(selected)),
		NotebookUsed:       len(notebook) > 0,
		SystemPromptTokens: systemTokens,
		Budget:             budget,
	}
	if useCompact {
		result.InjectedMemory = req.CompactMemory
	}

	// 6. Best-effort audit snapshot; never fails the turn.
	if s.recorder != nil {
		s.recorder.Record(ctx, req.TurnUID, req.ConversationID, result)
	}

	atomic.AddInt64(&s.stats.totalTokens, int64(promptTokens(s.estimator, messages)))
	return result, nil
}

// utteranceMessage maps one utterance onto a prompt message.
func (s *Service) utteranceMessage(u *store.Utterance, speaker *store.Participant, names map[int32]string) ai.Message {
	switch {
	case u.Kind == store.UtteranceKindOpening:
		return ai.Message{Role: ai.RoleSystem, Content: "[DISCUSSION OPENING] " + u.Content}
	case u.SpeakerID != nil && *u.SpeakerID == speaker.ID:
		// Own prior utterances come back as assistant turns for continuity.
		return ai.Message{Role: ai.RoleAssistant, Content: u.Content}
	case u.Kind == store.UtteranceKindInterjection:
		return ai.Message{Role: ai.RoleUser, Content: "[USER] " + u.Content}
	case u.Kind == store.UtteranceKindSystem:
		return ai.Message{Role: ai.RoleSystem, Content: u.Content}
	case u.Kind == store.UtteranceKindSummary:
		return ai.Message{Role: ai.RoleSystem, Content: fmt.Sprintf("[SUMMARY by %s] %s", speakerName(u.SpeakerID, names), u.Content)}
	default:
		tag := speakerName(u.SpeakerID, names)
		if u.AddressedTo != nil {
			tag += fmt.Sprintf(" (to %s)", speakerName(u.AddressedTo, names))
		}
		if u.Weight >= s.config.HighRatingWeight {
			tag += " [highly rated]"
		}
		return ai.Message{Role: ai.RoleUser, Content: tag + ": " + u.Content}
	}
}

func (s *Service) finalInstruction(req *BuildRequest, names map[int32]string) string {
	if req.Speaker.Coordinator {
		return s.templates.CoordinatorPrompt()
	}
	if req.FirstTurn {
		return s.templates.OpeningPrompt(req.Speaker)
	}
	others := make([]string, 0, len(req.Participants))
	for _, p := range req.Participants {
		if p.ID != req.Speaker.ID && !p.Coordinator {
			others = append(others, p.Name)
		}
	}
	return s.templates.TurnPrompt(req.Speaker, others)
}

// GetStats returns build statistics.
func (s *Service) GetStats() (builds int64, avgTokens float64) {
	builds = atomic.LoadInt64(&s.stats.totalBuilds)
	if builds == 0 {
		return 0, 0
	}
	return builds, float64(atomic.LoadInt64(&s.stats.totalTokens)) / float64(builds)
}

func participantNames(participants []*store.Participant) map[int32]string {
	names := make(map[int32]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}
	return names
}

func speakerName(id *int32, names map[int32]string) string {
	if id == nil {
		return "system"
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return fmt.Sprintf("speaker %d", *id)
}

func renderCompactMemory(m *store.CompactMemory) string {
	var sb strings.Builder
	sb.WriteString("Condensed memory of earlier rounds:\n")
	sb.WriteString(m.Summary)
	if m.Stance != "" {
		sb.WriteString("\n\nCurrent stance: " + m.Stance)
	}
	writeList(&sb, "Key decisions", m.KeyDecisions)
	writeList(&sb, "Open questions", m.OpenQuestions)
	writeList(&sb, "Constraints", m.Constraints)
	writeList(&sb, "Action items", m.ActionItems)
	if len(m.PinnedFacts) > 0 {
		sb.WriteString("\n\nPinned facts:")
		for _, f := range m.PinnedFacts {
			sb.WriteString(fmt.Sprintf("\n- [%s] %s", f.Category, f.Content))
		}
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n\n" + title + ":")
	for _, item := range items {
		sb.WriteString("\n- " + item)
	}
}

func renderNotebook(entries []*store.NotebookEntry) string {
	var sb strings.Builder
	sb.WriteString("Your private notes:\n")
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- " + e.Content)
	}
	return sb.String()
}

func promptTokens(est tokenizer.Estimator, messages []ai.Message) int {
	total := 0
	for _, m := range messages {
		total += est.Estimate(m.Content)
	}
	return total
}
