// Package distill folds older discussion rounds into compact memory.
package distill

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/parley/store"
)

// ErrDistillationParse marks an unusable summarization result. The
// caller must not advance the cursor when this is returned.
var ErrDistillationParse = errors.New("unusable distillation result")

const defaultFactImportance = 5

// Result is the structured outcome of one distillation call.
// DistilledSummary is required; everything else is optional.
type Result struct {
	DistilledSummary string       `json:"distilledSummary"`
	CurrentStance    string       `json:"currentStance"`
	KeyDecisions     []string     `json:"keyDecisions"`
	OpenQuestions    []string     `json:"openQuestions"`
	Constraints      []string     `json:"constraints"`
	ActionItems      []string     `json:"actionItems"`
	PinnedFacts      []ResultFact `json:"pinnedFacts"`
}

// ResultFact is a pinned fact as returned by the summarization model,
// before id assignment and normalization.
type ResultFact struct {
	Content    string `json:"content"`
	Category   string `json:"category"`
	Source     string `json:"source"`
	Importance int32  `json:"importance"`
}

// ParseResult extracts and validates the structured result from raw
// model output. The model may wrap the object in a fenced block or
// surround it with commentary; the first well-formed JSON object wins.
func ParseResult(raw string) (*Result, error) {
	result, ok := decodeFirstObject(raw)
	if !ok {
		return nil, errors.Wrap(ErrDistillationParse, "no well-formed JSON object in response")
	}

	result.DistilledSummary = strings.TrimSpace(result.DistilledSummary)
	if result.DistilledSummary == "" {
		return nil, errors.Wrap(ErrDistillationParse, "missing distilledSummary")
	}

	for i := range result.PinnedFacts {
		normalizeFact(&result.PinnedFacts[i])
	}

	return result, nil
}

// decodeFirstObject returns the first brace group in raw that decodes
// as a result object. Commentary around the payload may itself contain
// brace groups (an echoed schema, inline code), so candidates that are
// unbalanced or fail to decode are skipped and the scan resumes at the
// next opening brace.
func decodeFirstObject(raw string) (*Result, bool) {
	for start := strings.IndexByte(raw, '{'); start >= 0; {
		if object, ok := balancedObject(raw[start:]); ok {
			result := &Result{}
			if err := json.Unmarshal([]byte(object), result); err == nil {
				return result, true
			}
		}
		offset := strings.IndexByte(raw[start+1:], '{')
		if offset < 0 {
			return nil, false
		}
		start += 1 + offset
	}
	return nil, false
}

// normalizeFact coerces category and importance into their fixed ranges.
func normalizeFact(f *ResultFact) {
	if !store.IsValidPinnedFactCategory(store.PinnedFactCategory(f.Category)) {
		f.Category = string(store.PinnedFactDefinition)
	}
	switch {
	case f.Importance == 0:
		f.Importance = defaultFactImportance
	case f.Importance < 1:
		f.Importance = 1
	case f.Importance > 10:
		f.Importance = 10
	}
}

// balancedObject returns the leading balanced {...} group of s, which
// must start with an opening brace, ignoring braces inside JSON strings.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
