package script

import (
	"fmt"

	"github.com/abhisek/eduscript/internal/llm"
)

// SchemaVersion is the script schema version this build enforces.
const SchemaVersion = "0.1"

// sectionSchema is the shared shape of intro, explanation, and summary.
func sectionSchema(desc string) map[string]any {
	return map[string]any{
		"type":        "object",
		"description": desc,
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short section heading (2-6 words)",
			},
			"narration": map[string]any{
				"type":        "string",
				"description": "The spoken narration text, age-appropriate and self-contained",
			},
		},
		"required":             []any{"title", "narration"},
		"additionalProperties": false,
	}
}

// ScriptSchema is the structured-output contract sent to the model.
// It covers the four content sections; metadata is stamped by the
// generator after the response comes back.
var ScriptSchema = &llm.Schema{
	Name:        "teaching-script",
	Description: "A narrated teaching script: intro, explanation, one multiple-choice practice question, and summary",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"intro":       sectionSchema("Opening that hooks the learner and states the topic"),
			"explanation": sectionSchema("The core teaching content, explained step by step"),
			"practice_mcq": map[string]any{
				"type":        "object",
				"description": "One multiple-choice question checking the explained concept",
				"properties": map[string]any{
					"title": map[string]any{
						"type":        "string",
						"description": "Short section heading",
					},
					"question": map[string]any{
						"type":        "string",
						"description": "The question read aloud to the learner",
					},
					"options": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"minItems":    4,
						"maxItems":    4,
						"description": "Exactly 4 distinct answer options",
					},
					"correct_answer": map[string]any{
						"type":        "integer",
						"minimum":     0,
						"maximum":     3,
						"description": "0-based index of the correct option",
					},
					"explanation": map[string]any{
						"type":        "string",
						"description": "Why the correct answer is right, read after the learner answers",
					},
				},
				"required":             []any{"title", "question", "options", "correct_answer", "explanation"},
				"additionalProperties": false,
			},
			"summary": sectionSchema("Recap of what was learned, ending on encouragement"),
		},
		"required":             []any{"intro", "explanation", "practice_mcq", "summary"},
		"additionalProperties": false,
	},
}

// SchemaFor returns the generation schema for the requested version
// tag. Requesting any version other than SchemaVersion is a
// configuration defect and fails.
func SchemaFor(version string) (*llm.Schema, error) {
	if version != SchemaVersion {
		return nil, fmt.Errorf("unsupported script schema version %q (this build enforces %q)", version, SchemaVersion)
	}
	return ScriptSchema, nil
}
