package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/abhisek/eduscript/internal/llm"
)

// modelResponseJSON is what the vendor returns: the four content
// sections, no metadata.
const modelResponseJSON = `{
	"intro": {
		"title": "Taking Away",
		"narration": "Today we are going to learn what happens when we take 4 away from 9."
	},
	"explanation": {
		"title": "Counting Back",
		"narration": "Start at 9 and count back four steps: 8, 7, 6, 5. So 9 - 4 = 5."
	},
	"practice_mcq": {
		"title": "Your Turn",
		"question": "What is 9 - 4?",
		"options": ["3", "4", "5", "6"],
		"correct_answer": 2,
		"explanation": "Counting back four from 9 lands on 5."
	},
	"summary": {
		"title": "What We Learned",
		"narration": "Subtraction means taking away. You counted back to find 9 - 4 = 5. Great work!"
	}
}`

const testTopic = "Subtraction within 10: 9 - 4"

func TestGenerate_Success(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(modelResponseJSON)})
	gen := New(mock, DefaultConfig())

	doc, err := gen.Generate(context.Background(), testTopic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Metadata.Topic != testTopic {
		t.Errorf("metadata.topic = %q, want the input topic verbatim", doc.Metadata.Topic)
	}
	if doc.Metadata.Version != SchemaVersion {
		t.Errorf("metadata.version = %q, want %q", doc.Metadata.Version, SchemaVersion)
	}
	if doc.Metadata.Language != "en-US" || doc.Metadata.Tone != "elementary" {
		t.Errorf("unexpected metadata: %+v", doc.Metadata)
	}
	if doc.Metadata.DurationEstimate <= 0 {
		t.Errorf("duration_estimate = %v, want > 0", doc.Metadata.DurationEstimate)
	}
	if doc.PracticeMCQ.CorrectAnswer != 2 {
		t.Errorf("correct_answer = %d, want 2", doc.PracticeMCQ.CorrectAnswer)
	}
	if len(doc.PracticeMCQ.Options) != 4 {
		t.Errorf("expected 4 options, got %d", len(doc.PracticeMCQ.Options))
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 model call, got %d", mock.CallCount())
	}
}

func TestGenerate_SendsSchemaAndMathTemplate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(modelResponseJSON)})
	gen := New(mock, DefaultConfig())

	if _, err := gen.Generate(context.Background(), testTopic); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := mock.Calls[0]
	if req.Schema == nil || req.Schema.Name != "teaching-script" {
		t.Fatalf("expected teaching-script schema in request, got: %+v", req.Schema)
	}
	if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "math topic") {
		t.Fatal("expected the math template for a subtraction topic")
	}
}

func TestGenerate_UnwrapsEnvelope(t *testing.T) {
	wrapped := fmt.Sprintf(`{"edu_script_v0.1": {"content": %s}}`, modelResponseJSON)
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(wrapped)})
	gen := New(mock, DefaultConfig())

	doc, err := gen.Generate(context.Background(), testTopic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Intro.Narration == "" {
		t.Fatal("expected sections after unwrapping envelope")
	}
}

func TestGenerate_RetriesInvalidThenSucceeds(t *testing.T) {
	badDoc := strings.Replace(modelResponseJSON, `"correct_answer": 2`, `"correct_answer": 4`, 1)
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(badDoc)},
		llm.MockResponse{Content: json.RawMessage(modelResponseJSON)},
	)
	gen := New(mock, DefaultConfig())

	doc, err := gen.Generate(context.Background(), testTopic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.PracticeMCQ.CorrectAnswer != 2 {
		t.Fatalf("expected the valid second response, got correct_answer=%d", doc.PracticeMCQ.CorrectAnswer)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 model calls, got %d", mock.CallCount())
	}
}

func TestGenerate_OutOfRangeAnswerExhaustsBudget(t *testing.T) {
	badDoc := strings.Replace(modelResponseJSON, `"correct_answer": 2`, `"correct_answer": 4`, 1)
	mock := llm.NewRepeatingMockProvider(llm.MockResponse{Content: json.RawMessage(badDoc)})

	cfg := DefaultConfig()
	cfg.MaxAttempts = 3
	gen := New(mock, cfg)

	_, err := gen.Generate(context.Background(), testTopic)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got: %v", err)
	}
	if genErr.Attempts != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", genErr.Attempts)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected exactly 3 model calls, got %d", mock.CallCount())
	}

	found := false
	for _, v := range genErr.Violations {
		if v.Path == "practice_mcq.correct_answer" && strings.Contains(v.Rule, "out of range") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a bounds violation on practice_mcq.correct_answer, got: %v", genErr.Violations)
	}
}

func TestGenerate_NonJSONResponse(t *testing.T) {
	mock := llm.NewRepeatingMockProvider(llm.MockResponse{
		Content: json.RawMessage(`Sorry, I cannot produce JSON today.`),
	})

	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	gen := New(mock, cfg)

	_, err := gen.Generate(context.Background(), testTopic)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got: %v", err)
	}
	var parseErr *ParseError
	if !errors.As(genErr.Err, &parseErr) {
		t.Fatalf("expected wrapped ParseError, got: %v", genErr.Err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 model calls, got %d", mock.CallCount())
	}
}

func TestGenerate_ModelRejectedSurfacesImmediately(t *testing.T) {
	mock := llm.NewRepeatingMockProvider(llm.MockResponse{
		Err: &llm.ErrModelRejected{StatusCode: 401, Err: errors.New("invalid api key")},
	})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), testTopic)
	var rejected *llm.ErrModelRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected ErrModelRejected, got: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 model call (no retry), got %d", mock.CallCount())
	}
}

func TestGenerate_EmptyTopicFailsFast(t *testing.T) {
	mock := llm.NewMockProvider()
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), "")
	var tmplErr *TemplateError
	if !errors.As(err, &tmplErr) {
		t.Fatalf("expected TemplateError, got: %v", err)
	}
	if mock.CallCount() != 0 {
		t.Fatalf("expected no model calls, got %d", mock.CallCount())
	}
}

func TestGenerate_GeneratedDocumentRoundTrips(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(modelResponseJSON)})
	gen := New(mock, DefaultConfig())

	doc, err := gen.Generate(context.Background(), testTopic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var reparsed map[string]any
	if err := json.Unmarshal(encoded, &reparsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if violations := NewValidator().Validate(reparsed); len(violations) != 0 {
		t.Fatalf("serialized document should still validate, got: %v", violations)
	}
}

func TestEstimateDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WordsPerSecond = 4.0
	cfg.SectionPause = 0.5
	gen := New(llm.NewMockProvider(), cfg)

	candidate := map[string]any{
		"intro":       map[string]any{"narration": "one two three four"},           // 4 words
		"explanation": map[string]any{"narration": "one two three four five six"},  // 6
		"practice_mcq": map[string]any{
			"question":    "one two",       // 2
			"explanation": "one two three", // 3
		},
		"summary": map[string]any{"narration": "one two three four five"}, // 5
	}

	// 20 words / 4 wps + 4 sections * 0.5s pause = 7.0
	if got := gen.estimateDuration(candidate); got != 7.0 {
		t.Fatalf("estimateDuration = %v, want 7.0", got)
	}
}

func TestSchemaFor(t *testing.T) {
	s, err := SchemaFor("0.1")
	if err != nil || s == nil {
		t.Fatalf("expected schema for version 0.1, got: %v", err)
	}
	if _, err := SchemaFor("0.2"); err == nil {
		t.Fatal("expected error for incompatible version")
	}
}
