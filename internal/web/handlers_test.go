package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/eduscript/internal/llm"
	"github.com/abhisek/eduscript/internal/script"
	"github.com/abhisek/eduscript/internal/store"
	"github.com/abhisek/eduscript/internal/tts"
)

const modelResponseJSON = `{
	"intro": {"title": "Why Rain Falls", "narration": "Today we find out why rain falls from clouds."},
	"explanation": {"title": "Heavy Drops", "narration": "Tiny droplets join until they are too heavy to float."},
	"practice_mcq": {
		"title": "Check In",
		"question": "What makes a raindrop fall?",
		"options": ["It gets too heavy", "The wind pushes it down", "The sun pulls it", "Clouds squeeze it"],
		"correct_answer": 0,
		"explanation": "When droplets merge and grow heavy, gravity wins."
	},
	"summary": {"title": "Summary", "narration": "Raindrops fall when they grow too heavy to stay up."}
}`

type testEnv struct {
	router   *chi.Mux
	store    *store.Store
	provider *llm.MockProvider
	synth    *tts.MockSynthesizer
	audioDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	provider := llm.NewRepeatingMockProvider(llm.MockResponse{
		Content: json.RawMessage(modelResponseJSON),
	})
	synth := tts.NewMockSynthesizer()
	audioDir := t.TempDir()

	h := NewHandlers(HandlersConfig{
		Store:     s,
		Generator: script.New(provider, script.DefaultConfig()),
		Renderer:  tts.NewRenderer(synth, audioDir, nil),
		AudioDir:  audioDir,
		ModelID:   "mock",
	})
	router := NewRouter(RouterConfig{Handlers: h, Store: s, RateLimit: 100})

	return &testEnv{router: router, store: s, provider: provider, synth: synth, audioDir: audioDir}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signup(t *testing.T) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/signup", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "s3cret-pw",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestSignupLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t)

	// Duplicate signup conflicts.
	rec := env.do(t, http.MethodPost, "/api/v1/signup", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "s3cret-pw",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Wrong password rejected.
	rec = env.do(t, http.MethodPost, "/api/v1/login", map[string]string{
		"username": "alice", "password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct login issues a fresh cookie.
	rec = env.do(t, http.MethodPost, "/api/v1/login", map[string]string{
		"username": "alice", "password": "s3cret-pw",
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Logout invalidates the session.
	rec = env.do(t, http.MethodPost, "/api/v1/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/v1/scripts", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupWeakPasswordRejected(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/signup", map[string]string{
		"username": "bob", "email": "bob@example.com", "password": "short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateScriptRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/scripts", map[string]string{"topic": "rain"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateScript(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t)

	rec := env.do(t, http.MethodPost, "/api/v1/scripts",
		map[string]any{"topic": "why does rain fall"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var saved store.ScriptRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "why does rain fall", saved.Topic)
	assert.Equal(t, "Why Rain Falls", saved.Title)

	var doc script.Document
	require.NoError(t, json.Unmarshal(saved.Content, &doc))
	assert.Equal(t, script.SchemaVersion, doc.Metadata.Version)
	assert.Equal(t, "why does rain fall", doc.Metadata.Topic)
	assert.False(t, doc.Metadata.AudioGenerated)
	assert.Empty(t, env.synth.Calls())
}

func TestCreateScriptWithNarration(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t)

	rec := env.do(t, http.MethodPost, "/api/v1/scripts",
		map[string]any{"topic": "rain", "narrate": true, "voice": "echo"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var saved store.ScriptRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	var doc script.Document
	require.NoError(t, json.Unmarshal(saved.Content, &doc))
	assert.True(t, doc.Metadata.AudioGenerated)
	assert.Equal(t, "echo", doc.Metadata.VoiceUsed)
	assert.Len(t, doc.Metadata.AudioFiles, 5)

	// The annotated document is what the store holds.
	loaded := env.do(t, http.MethodGet, "/api/v1/scripts/"+saved.ID, nil, cookie)
	require.Equal(t, http.StatusOK, loaded.Code)
	assert.Contains(t, loaded.Body.String(), "audio_narration")

	// Rendered audio is downloadable.
	audio := env.do(t, http.MethodGet, "/audio/"+doc.Intro.AudioNarration, nil, cookie)
	assert.Equal(t, http.StatusOK, audio.Code)
	assert.Equal(t, "mp3-bytes", audio.Body.String())
}

func TestCreateScriptUnknownVoiceFallsBack(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t)

	rec := env.do(t, http.MethodPost, "/api/v1/scripts",
		map[string]any{"topic": "rain", "narrate": true, "voice": "hal9000"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var saved store.ScriptRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	var doc script.Document
	require.NoError(t, json.Unmarshal(saved.Content, &doc))
	assert.Equal(t, "nova", doc.Metadata.VoiceUsed)
}

func TestCreateScriptInvalidModelOutput(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t)

	// Model insists on a three-option question; every attempt fails
	// validation and the handler reports the violations.
	env.provider.SetResponses(llm.MockResponse{
		Content: json.RawMessage(`{
			"intro": {"title": "T", "narration": "n"},
			"explanation": {"title": "T", "narration": "n"},
			"practice_mcq": {"title": "T", "question": "q",
				"options": ["a", "b", "c"], "correct_answer": 0, "explanation": "e"},
			"summary": {"title": "T", "narration": "n"}
		}`),
	}, true)

	rec := env.do(t, http.MethodPost, "/api/v1/scripts", map[string]string{"topic": "rain"}, cookie)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_SCRIPT", resp.Code)
	assert.NotEmpty(t, resp.Violations)
}

func TestCreateScriptUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t)

	env.provider.SetResponses(llm.MockResponse{
		Err: &llm.ErrModelRejected{StatusCode: 401},
	}, true)

	rec := env.do(t, http.MethodPost, "/api/v1/scripts", map[string]string{"topic": "rain"}, cookie)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestScriptListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t)

	rec := env.do(t, http.MethodGet, "/api/v1/scripts", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	created := env.do(t, http.MethodPost, "/api/v1/scripts", map[string]string{"topic": "rain"}, cookie)
	require.Equal(t, http.StatusCreated, created.Code)
	var saved store.ScriptRecord
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &saved))

	rec = env.do(t, http.MethodGet, "/api/v1/scripts", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []store.ScriptRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = env.do(t, http.MethodDelete, "/api/v1/scripts/"+saved.ID, nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/v1/scripts/"+saved.ID, nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAudioPathTraversalRejected(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t)

	rec := env.do(t, http.MethodGet, "/audio/..%2Fsecrets.mp3", nil, cookie)
	assert.NotEqual(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/audio/notes.txt", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateRateLimited(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t)

	h := NewHandlers(HandlersConfig{
		Store:     env.store,
		Generator: script.New(env.provider, script.DefaultConfig()),
		AudioDir:  env.audioDir,
		ModelID:   "mock",
	})
	router := NewRouter(RouterConfig{Handlers: h, Store: env.store, RateLimit: 2})
	limited := &testEnv{router: router}

	for i := 0; i < 2; i++ {
		rec := limited.do(t, http.MethodPost, "/api/v1/scripts",
			map[string]string{"topic": fmt.Sprintf("topic %d", i)}, cookie)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := limited.do(t, http.MethodPost, "/api/v1/scripts", map[string]string{"topic": "one more"}, cookie)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Reads are not rate limited.
	rec = limited.do(t, http.MethodGet, "/api/v1/scripts", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "ok", resp["db"])
	assert.Equal(t, "mock", resp["model"])
}
