package script

import (
	"encoding/json"
	"fmt"
)

// TemplateError indicates a prompt template could not be rendered:
// missing placeholder or empty topic. A configuration defect — never
// retried.
type TemplateError struct {
	Domain string
	Reason string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("prompt template %q: %s", e.Domain, e.Reason)
}

// ParseError indicates the model response could not be decoded into a
// candidate document shape.
type ParseError struct {
	Raw json.RawMessage
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError indicates a decoded candidate failed the structural
// checks. Retriable within the attempt budget.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "script validation failed"
	}
	return fmt.Sprintf("script validation failed: %d violation(s) (first: %s)",
		len(e.Violations), e.Violations[0])
}

// GenerationError is the terminal failure after the attempt budget is
// exhausted. It carries the last validator report so callers can show
// the learner (or operator) exactly which fields were wrong.
type GenerationError struct {
	Topic      string
	Attempts   int
	Violations []Violation
	Err        error
}

func (e *GenerationError) Error() string {
	if len(e.Violations) > 0 {
		return fmt.Sprintf("script generation for %q failed after %d attempts: %d schema violations (first: %s)",
			e.Topic, e.Attempts, len(e.Violations), e.Violations[0])
	}
	return fmt.Sprintf("script generation for %q failed after %d attempts: %v", e.Topic, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
