package script

import (
	"fmt"
	"math"
)

// Violation describes one rule a candidate document broke.
type Violation struct {
	Path string // field path, e.g. "practice_mcq.correct_answer"
	Rule string // human-readable rule description
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Rule)
}

// Validator structurally checks candidate documents against the script
// schema contract. It is pure and total: it never mutates its input and
// never panics, whatever shape the candidate has — absence and wrong
// types are reported as violations, not crashes.
type Validator struct {
	// AllowExtraSections tolerates unknown top-level sections instead
	// of rejecting them. Off by default to catch vendor drift early.
	AllowExtraSections bool

	version string
}

// NewValidator returns a Validator enforcing the current SchemaVersion.
func NewValidator() *Validator {
	return &Validator{version: SchemaVersion}
}

// knownSections are the only top-level keys a document may carry.
var knownSections = map[string]bool{
	"metadata":     true,
	"intro":        true,
	"explanation":  true,
	"practice_mcq": true,
	"summary":      true,
}

// Validate checks an arbitrary decoded value against the contract.
// An empty result means the candidate is valid; otherwise every broken
// rule is reported, in document order.
func (v *Validator) Validate(candidate any) []Violation {
	doc, ok := candidate.(map[string]any)
	if !ok {
		return []Violation{{Path: "$", Rule: "document must be a JSON object"}}
	}

	var out []Violation

	out = append(out, v.checkMetadata(doc)...)
	out = append(out, checkSection(doc, "intro")...)
	out = append(out, checkSection(doc, "explanation")...)
	out = append(out, v.checkPracticeMCQ(doc)...)
	out = append(out, checkSection(doc, "summary")...)

	if !v.AllowExtraSections {
		for key := range doc {
			if !knownSections[key] {
				out = append(out, Violation{Path: key, Rule: "unexpected top-level section"})
			}
		}
	}

	return out
}

func (v *Validator) checkMetadata(doc map[string]any) []Violation {
	raw, ok := doc["metadata"]
	if !ok {
		return []Violation{{Path: "metadata", Rule: "required section is missing"}}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return []Violation{{Path: "metadata", Rule: "must be an object"}}
	}

	var out []Violation

	if version, ok := stringField(m, "version"); !ok {
		out = append(out, Violation{Path: "metadata.version", Rule: "must be a string"})
	} else if version != v.version {
		out = append(out, Violation{Path: "metadata.version", Rule: fmt.Sprintf("unsupported schema version %q (expected %q)", version, v.version)})
	}

	if s, ok := stringField(m, "language"); !ok || s == "" {
		out = append(out, Violation{Path: "metadata.language", Rule: "must be a non-empty string"})
	}
	if _, ok := stringField(m, "tone"); !ok {
		out = append(out, Violation{Path: "metadata.tone", Rule: "must be a string"})
	}
	if s, ok := stringField(m, "topic"); !ok || s == "" {
		out = append(out, Violation{Path: "metadata.topic", Rule: "must be a non-empty string"})
	}

	if d, ok := numberField(m, "duration_estimate"); !ok {
		out = append(out, Violation{Path: "metadata.duration_estimate", Rule: "must be a number"})
	} else if d < 0 {
		out = append(out, Violation{Path: "metadata.duration_estimate", Rule: "must be non-negative"})
	}

	return out
}

// checkSection validates a narration-bearing section (intro,
// explanation, summary).
func checkSection(doc map[string]any, name string) []Violation {
	raw, ok := doc[name]
	if !ok {
		return []Violation{{Path: name, Rule: "required section is missing"}}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return []Violation{{Path: name, Rule: "must be an object"}}
	}

	var out []Violation
	if _, ok := stringField(m, "title"); !ok {
		out = append(out, Violation{Path: name + ".title", Rule: "must be a string"})
	}
	if s, ok := stringField(m, "narration"); !ok {
		out = append(out, Violation{Path: name + ".narration", Rule: "must be a string"})
	} else if s == "" {
		out = append(out, Violation{Path: name + ".narration", Rule: "must not be empty"})
	}
	return out
}

func (v *Validator) checkPracticeMCQ(doc map[string]any) []Violation {
	raw, ok := doc["practice_mcq"]
	if !ok {
		return []Violation{{Path: "practice_mcq", Rule: "required section is missing"}}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return []Violation{{Path: "practice_mcq", Rule: "must be an object"}}
	}

	var out []Violation

	if _, ok := stringField(m, "title"); !ok {
		out = append(out, Violation{Path: "practice_mcq.title", Rule: "must be a string"})
	}
	if s, ok := stringField(m, "question"); !ok || s == "" {
		out = append(out, Violation{Path: "practice_mcq.question", Rule: "must be a non-empty string"})
	}
	if s, ok := stringField(m, "explanation"); !ok || s == "" {
		out = append(out, Violation{Path: "practice_mcq.explanation", Rule: "must be a non-empty string"})
	}

	options, optionsOK := optionStrings(m["options"])
	if !optionsOK {
		out = append(out, Violation{Path: "practice_mcq.options", Rule: "must be an array of strings"})
	} else {
		if len(options) != 4 {
			out = append(out, Violation{Path: "practice_mcq.options", Rule: fmt.Sprintf("must contain exactly 4 options, got %d", len(options))})
		}
		seen := make(map[string]bool, len(options))
		for _, opt := range options {
			if seen[opt] {
				out = append(out, Violation{Path: "practice_mcq.options", Rule: fmt.Sprintf("options must be distinct, %q repeats", opt)})
				break
			}
			seen[opt] = true
		}
	}

	idx, ok := numberField(m, "correct_answer")
	switch {
	case !ok || idx != math.Trunc(idx):
		out = append(out, Violation{Path: "practice_mcq.correct_answer", Rule: "must be an integer"})
	case optionsOK && (idx < 0 || int(idx) >= len(options)):
		out = append(out, Violation{Path: "practice_mcq.correct_answer", Rule: fmt.Sprintf("index %d out of range for %d options", int(idx), len(options))})
	}

	return out
}

func stringField(m map[string]any, key string) (string, bool) {
	raw, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// numberField reads a JSON number. Decoded JSON numbers arrive as
// float64; integers from typed Go structs arrive as their native kind
// after a marshal round-trip, so only float64 shows up in practice.
func numberField(m map[string]any, key string) (float64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := raw.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// optionStrings coerces the options value into a string slice.
// Returns false if the value is absent, not an array, or holds
// non-string entries.
func optionStrings(raw any) ([]string, bool) {
	items, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
