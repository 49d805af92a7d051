package script

import "strings"

// topicPlaceholder is the slot the topic is substituted into.
const topicPlaceholder = "{topic}"

const systemPrompt = `You are a senior educational content author, specializing in teaching scripts for elementary students. You write warm, clear narration that sounds natural when read aloud. Always produce JSON conforming exactly to the requested schema.`

const defaultTemplate = `Write a complete teaching script for the topic: {topic}

Requirements:
- intro: a short, friendly opening (2-3 sentences of narration) that names the topic and why it matters.
- explanation: the core teaching content (4-8 sentences of narration), building the idea step by step with one concrete example.
- practice_mcq: one multiple-choice question testing the explained idea, with exactly 4 distinct options, the 0-based index of the correct one, and a short explanation of why it is correct.
- summary: a 2-3 sentence recap ending on encouragement.
- All narration must be plain spoken prose. No markdown, no bullet lists, no stage directions.`

const mathTemplate = `Write a complete teaching script for the math topic: {topic}

Requirements:
- intro: a short, friendly opening (2-3 sentences of narration) that names the topic using a real-life situation a child would recognize.
- explanation: walk through the computation step by step (4-8 sentences of narration). Use plain ASCII for all math: / for fractions, * for multiplication, standard + - = signs. Show the working, not just the answer.
- practice_mcq: one question applying the same operation with different numbers, exactly 4 distinct options where the wrong ones reflect common mistakes, the 0-based index of the correct one, and a short explanation.
- summary: a 2-3 sentence recap of the method, ending on encouragement.
- All narration must be plain spoken prose suitable for reading aloud to an elementary student.`

// mathKeywords route a topic to the math template.
var mathKeywords = []string{
	"add", "addition", "subtract", "subtraction", "multiply", "multiplication",
	"divide", "division", "fraction", "decimal", "number", "count", "math",
	"plus", "minus", "times", "+", "-", "×", "÷",
}

// TemplateStore maps topic-domain keys to prompt templates. The
// "default" template is always present.
type TemplateStore struct {
	templates map[string]string
}

// NewTemplateStore returns the built-in templates.
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{
		templates: map[string]string{
			"default": defaultTemplate,
			"math":    mathTemplate,
		},
	}
}

// Set registers or replaces a template for a domain key.
func (s *TemplateStore) Set(domain, template string) {
	s.templates[domain] = template
}

// DomainFor classifies a topic into a template domain. Topics that
// match no domain fall back to "default".
func (s *TemplateStore) DomainFor(topic string) string {
	lower := strings.ToLower(topic)
	for _, kw := range mathKeywords {
		if strings.Contains(lower, kw) {
			if _, ok := s.templates["math"]; ok {
				return "math"
			}
			break
		}
	}
	return "default"
}

// Render selects the template for the topic's domain and substitutes
// the topic in. Fails with *TemplateError if the topic is empty or the
// selected template has no placeholder.
func (s *TemplateStore) Render(topic string) (string, error) {
	domain := s.DomainFor(topic)
	return BuildPrompt(topic, s.templates[domain], domain)
}

// BuildPrompt substitutes topic into template's placeholder slot(s).
// Deterministic: identical inputs always yield the identical string.
func BuildPrompt(topic, template, domain string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", &TemplateError{Domain: domain, Reason: "topic is empty"}
	}
	if !strings.Contains(template, topicPlaceholder) {
		return "", &TemplateError{Domain: domain, Reason: "template is missing the {topic} placeholder"}
	}
	return strings.ReplaceAll(template, topicPlaceholder, topic), nil
}
