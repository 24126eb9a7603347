package store

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// List-valued compact-memory fields are persisted as JSON text columns.
// The helpers below are shared by the database drivers.

func EncodeStringList(list []string) (string, error) {
	if len(list) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode string list")
	}
	return string(raw), nil
}

func DecodeStringList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, errors.Wrap(err, "failed to decode string list")
	}
	return list, nil
}

func EncodePinnedFacts(facts []PinnedFact) (string, error) {
	if len(facts) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(facts)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode pinned facts")
	}
	return string(raw), nil
}

func DecodePinnedFacts(raw string) ([]PinnedFact, error) {
	if raw == "" {
		return nil, nil
	}
	var facts []PinnedFact
	if err := json.Unmarshal([]byte(raw), &facts); err != nil {
		return nil, errors.Wrap(err, "failed to decode pinned facts")
	}
	return facts, nil
}
