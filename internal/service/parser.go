package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pairlens/internal/model"
)

var (
	// ErrNoJSON means the provider reply contained no JSON object at all.
	ErrNoJSON = errors.New("no JSON object found in response")

	// ErrInvalidJSON means an object was located but failed to parse.
	ErrInvalidJSON = errors.New("response contained invalid JSON")
)

// ExtractJSON pulls the JSON object out of a free-form provider reply. The
// provider habitually wraps the payload in commentary, so everything before
// the first '{' and after the last '}' is discarded before parsing. Neither
// failure mode is transient, so neither is retried.
func ExtractJSON(raw string) (model.PassFragment, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSON
	}

	var fragment model.PassFragment
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fragment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return fragment, nil
}
