package tts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/eduscript/internal/script"
)

func testDoc() *script.Document {
	return &script.Document{
		Metadata: script.Metadata{
			Version: script.SchemaVersion, Language: "en-US", Tone: "elementary",
			Topic: "rainbows", DurationEstimate: 42.5,
		},
		Intro:       script.Section{Title: "Intro", Narration: "Today we learn about rainbows."},
		Explanation: script.Section{Title: "How it works", Narration: "Light bends in raindrops."},
		PracticeMCQ: script.PracticeMCQ{
			Title: "Quick check", Question: "What bends the light?",
			Options: []string{"Wind", "Raindrops", "Clouds", "Thunder"}, CorrectAnswer: 1,
			Explanation: "Raindrops act like tiny prisms.",
		},
		Summary: script.Section{Title: "Summary", Narration: "Rainbows come from bent light."},
	}
}

func TestResolveVoice(t *testing.T) {
	assert.Equal(t, VoiceNova, ResolveVoice(""))
	assert.Equal(t, VoiceEcho, ResolveVoice("echo"))
	// Unknown names fall back to the default voice.
	assert.Equal(t, VoiceNova, ResolveVoice("hal9000"))
}

func TestRenderScriptAllSegments(t *testing.T) {
	dir := t.TempDir()
	synth := NewMockSynthesizer()
	r := NewRenderer(synth, dir, nil)
	doc := testDoc()

	require.NoError(t, r.RenderScript(context.Background(), "abc123", doc, VoiceNova))

	assert.True(t, doc.Metadata.AudioGenerated)
	assert.Equal(t, "nova", doc.Metadata.VoiceUsed)
	assert.Len(t, doc.Metadata.AudioFiles, 5)

	assert.Equal(t, "abc123_intro_narration.mp3", doc.Intro.AudioNarration)
	assert.Equal(t, "abc123_explanation_narration.mp3", doc.Explanation.AudioNarration)
	assert.Equal(t, "abc123_practice_mcq_question.mp3", doc.PracticeMCQ.AudioQuestion)
	assert.Equal(t, "abc123_practice_mcq_explanation.mp3", doc.PracticeMCQ.AudioExplanation)
	assert.Equal(t, "abc123_summary_narration.mp3", doc.Summary.AudioNarration)

	for _, name := range doc.Metadata.AudioFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, synth.Audio, data)
	}
}

func TestRenderScriptSynthesizesNarrationText(t *testing.T) {
	synth := NewMockSynthesizer()
	r := NewRenderer(synth, t.TempDir(), nil)
	doc := testDoc()

	require.NoError(t, r.RenderScript(context.Background(), "id1", doc, VoiceAlloy))

	calls := synth.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, doc.Intro.Narration, calls[0].Text)
	assert.Equal(t, doc.PracticeMCQ.Question, calls[2].Text)
	for _, c := range calls {
		assert.Equal(t, VoiceAlloy, c.Voice)
	}
}

func TestRenderScriptPartialFailureTolerated(t *testing.T) {
	synth := NewMockSynthesizer()
	doc := testDoc()
	synth.FailOn[doc.Explanation.Narration] = errors.New("service hiccup")
	r := NewRenderer(synth, t.TempDir(), nil)

	require.NoError(t, r.RenderScript(context.Background(), "id2", doc, VoiceNova))

	assert.True(t, doc.Metadata.AudioGenerated)
	assert.Len(t, doc.Metadata.AudioFiles, 4)
	assert.Empty(t, doc.Explanation.AudioNarration)
	assert.NotEmpty(t, doc.Intro.AudioNarration)
}

func TestRenderScriptTotalFailure(t *testing.T) {
	synth := NewMockSynthesizer()
	doc := testDoc()
	boom := errors.New("quota exhausted")
	for _, text := range []string{
		doc.Intro.Narration, doc.Explanation.Narration,
		doc.PracticeMCQ.Question, doc.PracticeMCQ.Explanation,
		doc.Summary.Narration,
	} {
		synth.FailOn[text] = boom
	}
	r := NewRenderer(synth, t.TempDir(), nil)

	err := r.RenderScript(context.Background(), "id3", doc, VoiceNova)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, doc.Metadata.AudioGenerated)
	assert.Empty(t, doc.Metadata.AudioFiles)
}

func TestRenderScriptContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRenderer(NewMockSynthesizer(), t.TempDir(), nil)
	doc := testDoc()

	err := r.RenderScript(ctx, "id4", doc, VoiceNova)
	assert.ErrorIs(t, err, context.Canceled)
}
