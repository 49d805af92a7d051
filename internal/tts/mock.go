package tts

import (
	"context"
	"sync"
)

// MockSynthesizer returns canned audio bytes and records every call.
// Set FailOn to make specific input texts fail.
type MockSynthesizer struct {
	mu     sync.Mutex
	calls  []MockCall
	Audio  []byte
	FailOn map[string]error
}

// MockCall records one Synthesize invocation.
type MockCall struct {
	Text  string
	Voice Voice
}

// NewMockSynthesizer returns a mock that produces placeholder bytes.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{Audio: []byte("mp3-bytes"), FailOn: map[string]error{}}
}

func (m *MockSynthesizer) Synthesize(_ context.Context, text string, voice Voice) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Text: text, Voice: voice})
	if err, ok := m.FailOn[text]; ok {
		return nil, err
	}
	return m.Audio, nil
}

// Calls returns a copy of the recorded invocations.
func (m *MockSynthesizer) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
