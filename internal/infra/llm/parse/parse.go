// Package parse turns free-form backend output into a classification.
//
// Extraction runs in stages: a fenced code block if present, otherwise the
// first balanced {...} span, then a strict JSON decode. Parse has no side
// effects.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

var (
	ErrNoJSON       = errors.New("no json object in response")
	ErrInvalidField = errors.New("invalid classification field")
)

var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*[ \t]*\r?\n?(.*?)```")

// ExtractJSON returns the JSON object candidate embedded in raw text.
func ExtractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrNoJSON
	}

	if m := fencePattern.FindStringSubmatch(text); m != nil {
		inner := strings.TrimSpace(m[1])
		if span, ok := braceSpan(inner); ok {
			return span, nil
		}
		if inner != "" {
			return inner, nil
		}
	}

	if span, ok := braceSpan(text); ok {
		return span, nil
	}
	return "", ErrNoJSON
}

// braceSpan finds the first balanced {...} span, skipping braces inside
// JSON string literals.
func braceSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

type rawClassification struct {
	IsEcosystemOrg json.RawMessage `json:"isEcosystemOrg"`
	Type           json.RawMessage `json:"type"`
	Category       json.RawMessage `json:"category"`
	Subcategory    json.RawMessage `json:"subcategory"`
	RoleSummary    json.RawMessage `json:"role_summary"`
	Confidence     json.RawMessage `json:"confidence"`
}

// Parse extracts and validates a classification from raw backend text.
// Confidence is clamped into [0,1]. Provider, model and review flags are left
// for the caller to fill in.
func Parse(raw string) (domain.Classification, error) {
	candidate, err := ExtractJSON(raw)
	if err != nil {
		return domain.Classification{}, err
	}

	var rc rawClassification
	if err := json.Unmarshal([]byte(candidate), &rc); err != nil {
		return domain.Classification{}, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}

	var c domain.Classification

	if err := decodeStrict(rc.IsEcosystemOrg, &c.IsEcosystemOrg); err != nil {
		return domain.Classification{}, fieldError("isEcosystemOrg", err)
	}
	if c.Category, err = nonEmptyString(rc.Category); err != nil {
		return domain.Classification{}, fieldError("category", err)
	}
	if c.Subcategory, err = nonEmptyString(rc.Subcategory); err != nil {
		return domain.Classification{}, fieldError("subcategory", err)
	}
	if c.RoleSummary, err = nonEmptyString(rc.RoleSummary); err != nil {
		return domain.Classification{}, fieldError("role_summary", err)
	}

	var confidence float64
	if err := decodeStrict(rc.Confidence, &confidence); err != nil {
		return domain.Classification{}, fieldError("confidence", err)
	}
	c.Confidence = clamp(confidence)

	var orgType string
	if len(rc.Type) > 0 {
		_ = json.Unmarshal(rc.Type, &orgType)
	}
	c.Type = domain.ParseOrgType(orgType)

	return c, nil
}

func decodeStrict(msg json.RawMessage, into any) error {
	if len(msg) == 0 || string(msg) == "null" {
		return errors.New("missing")
	}
	return json.Unmarshal(msg, into)
}

func nonEmptyString(msg json.RawMessage) (string, error) {
	var s string
	if err := decodeStrict(msg, &s); err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty")
	}
	return s, nil
}

func fieldError(field string, err error) error {
	return fmt.Errorf("%w %s: %v", ErrInvalidField, field, err)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
