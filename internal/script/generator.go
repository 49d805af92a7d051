package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/eduscript/internal/llm"
)

// Generator runs the full pipeline: render prompt, call the model,
// decode the response into an untyped candidate, validate, and promote
// to a typed Document. Each Generate call is independent; the
// Generator holds no per-request state and is safe for concurrent use.
type Generator struct {
	provider  llm.Provider
	templates *TemplateStore
	validator *Validator
	cfg       Config
}

// New creates a Generator using the built-in template store.
func New(provider llm.Provider, cfg Config) *Generator {
	validator := NewValidator()
	validator.AllowExtraSections = cfg.AllowExtraSections
	return &Generator{
		provider:  provider,
		templates: NewTemplateStore(),
		validator: validator,
		cfg:       cfg,
	}
}

// Templates exposes the template store for customization.
func (g *Generator) Templates() *TemplateStore {
	return g.templates
}

// Generate produces a validated Document for the topic, retrying
// parse and validation failures up to the configured attempt budget.
// Template defects and vendor rejections surface immediately; after
// the budget a *GenerationError carries the last validator report.
func (g *Generator) Generate(ctx context.Context, topic string) (*Document, error) {
	ctx = llm.WithPurpose(ctx, "script-gen")

	var lastErr error
	var lastViolations []Violation

	attempts := 0
	for attempts < g.cfg.MaxAttempts {
		attempts++

		prompt, err := g.templates.Render(topic)
		if err != nil {
			// Configuration defect — retrying cannot help.
			return nil, err
		}

		resp, err := g.provider.Generate(ctx, llm.Request{
			System: systemPrompt,
			Messages: []llm.Message{
				{Role: llm.RoleUser, Content: prompt},
			},
			Schema:      ScriptSchema,
			MaxTokens:   g.cfg.MaxTokens,
			Temperature: g.cfg.Temperature,
		})
		if err != nil {
			if !retriableGeneration(err) {
				return nil, fmt.Errorf("model call failed: %w", err)
			}
			// Schema-invalid vendor output: spend an attempt and go again.
			lastErr = err
			lastViolations = nil
			continue
		}

		candidate, err := g.buildCandidate(topic, resp.Content)
		if err != nil {
			lastErr = err
			lastViolations = nil
			continue
		}

		if violations := g.validator.Validate(candidate); len(violations) > 0 {
			lastViolations = violations
			lastErr = &ValidationError{Violations: violations}
			continue
		}

		doc, err := promote(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		return doc, nil
	}

	return nil, &GenerationError{
		Topic:      topic,
		Attempts:   attempts,
		Violations: lastViolations,
		Err:        lastErr,
	}
}

// retriableGeneration reports whether a provider error is worth
// spending another generation attempt on. Transport-level retries
// already happened inside the provider stack; at this layer only
// content-level failures justify a new cycle.
func retriableGeneration(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var invResp *llm.ErrInvalidResponse
	return errors.As(err, &invResp)
}

// buildCandidate decodes the raw response, unwraps the nesting some
// vendors emit, and stamps metadata. The result is still untyped —
// promotion to Document happens only after validation passes.
func (g *Generator) buildCandidate(topic string, raw json.RawMessage) (map[string]any, error) {
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	candidate := unwrapEnvelope(decoded)

	candidate["metadata"] = map[string]any{
		"version":           SchemaVersion,
		"language":          g.cfg.Language,
		"tone":              g.cfg.Tone,
		"topic":             topic,
		"duration_estimate": g.estimateDuration(candidate),
	}

	return candidate, nil
}

// unwrapEnvelope strips the "edu_script_v0.1"/"content" wrappers the
// model sometimes emits around the actual sections.
func unwrapEnvelope(decoded map[string]any) map[string]any {
	if inner, ok := decoded["edu_script_v"+SchemaVersion].(map[string]any); ok {
		decoded = inner
	}
	if inner, ok := decoded["content"].(map[string]any); ok && decoded["intro"] == nil {
		decoded = inner
	}
	return decoded
}

// narratedFields lists every (section, field) pair that will be read
// aloud, in document order.
var narratedFields = [][2]string{
	{"intro", "narration"},
	{"explanation", "narration"},
	{"practice_mcq", "question"},
	{"practice_mcq", "explanation"},
	{"summary", "narration"},
}

// estimateDuration approximates the narration length in seconds:
// total spoken word count over the assumed narration rate, plus a
// fixed pause per section. A design approximation — real synthesized
// audio will drift from this.
func (g *Generator) estimateDuration(candidate map[string]any) float64 {
	words := 0
	for _, f := range narratedFields {
		section, ok := candidate[f[0]].(map[string]any)
		if !ok {
			continue
		}
		if text, ok := section[f[1]].(string); ok {
			words += len(strings.Fields(text))
		}
	}

	sections := 4 // intro, explanation, practice_mcq, summary
	seconds := float64(words)/g.cfg.WordsPerSecond + float64(sections)*g.cfg.SectionPause
	return math.Round(seconds*10) / 10
}

// promote converts a validated candidate into the typed Document.
func promote(candidate map[string]any) (*Document, error) {
	buf, err := json.Marshal(candidate)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("re-encode candidate: %w", err)}
	}
	var doc Document
	if err := json.Unmarshal(buf, &doc); err != nil {
		return nil, &ParseError{Raw: buf, Err: err}
	}
	return &doc, nil
}
