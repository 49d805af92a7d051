package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/eduscript/internal/script"
	"github.com/abhisek/eduscript/internal/store"
	"github.com/abhisek/eduscript/internal/tts"
)

// ScriptGenerator produces a validated teaching script for a topic.
type ScriptGenerator interface {
	Generate(ctx context.Context, topic string) (*script.Document, error)
}

// NarrationRenderer attaches spoken audio to a generated script.
type NarrationRenderer interface {
	RenderScript(ctx context.Context, scriptID string, doc *script.Document, voice tts.Voice) error
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	users     store.UserRepo
	sessions  store.SessionRepo
	scripts   store.ScriptRepo
	generator ScriptGenerator
	renderer  NarrationRenderer // nil when narration is disabled
	audioDir  string
	modelID   string
	ping      func(ctx context.Context) error
	log       *zap.SugaredLogger
}

// HandlersConfig wires up a Handlers value.
type HandlersConfig struct {
	Store     *store.Store
	Generator ScriptGenerator
	Renderer  NarrationRenderer
	AudioDir  string
	ModelID   string
	Log       *zap.SugaredLogger
}

// NewHandlers builds the handler set.
func NewHandlers(cfg HandlersConfig) *Handlers {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handlers{
		users:     cfg.Store.UserRepo(),
		sessions:  cfg.Store.SessionRepo(),
		scripts:   cfg.Store.ScriptRepo(),
		generator: cfg.Generator,
		renderer:  cfg.Renderer,
		audioDir:  cfg.AudioDir,
		modelID:   cfg.ModelID,
		ping:      func(ctx context.Context) error { return cfg.Store.DB().PingContext(ctx) },
		log:       log,
	}
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Code       string   `json:"code,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/v1/signup.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "BAD_REQUEST")
		return
	}
	if req.Username == "" || req.Email == "" || len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest,
			"username, email and a password of at least 8 characters are required", "BAD_REQUEST")
		return
	}

	user, err := h.users.Create(r.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, store.ErrConflict) {
		writeError(w, http.StatusConflict, "username or email already taken", "CONFLICT")
		return
	}
	if err != nil {
		h.log.Errorw("signup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not create account", "INTERNAL")
		return
	}

	h.startSession(w, r, user)
}

// Login handles POST /api/v1/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "BAD_REQUEST")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid username or password", "UNAUTHENTICATED")
		return
	}
	if err != nil {
		h.log.Errorw("login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not log in", "INTERNAL")
		return
	}

	h.startSession(w, r, user)
}

func (h *Handlers) startSession(w http.ResponseWriter, r *http.Request, user *store.User) {
	sess, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.log.Errorw("session create failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not create session", "INTERNAL")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"username": user.Username,
		"email":    user.Email,
	})
}

// Logout handles POST /api/v1/logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		_ = h.sessions.Delete(r.Context(), cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

type generateRequest struct {
	Topic   string `json:"topic"`
	Narrate bool   `json:"narrate"`
	Voice   string `json:"voice"`
}

// CreateScript handles POST /api/v1/scripts. It runs the generation
// pipeline, persists the result, and optionally renders narration.
func (h *Handlers) CreateScript(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "BAD_REQUEST")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "topic is required", "BAD_REQUEST")
		return
	}

	if req.Narrate && h.renderer == nil {
		writeError(w, http.StatusBadRequest, "narration is disabled on this server", "TTS_DISABLED")
		return
	}
	voice := tts.ResolveVoice(req.Voice)

	doc, err := h.generator.Generate(r.Context(), req.Topic)
	if err != nil {
		h.writeGenerationError(w, req.Topic, err)
		return
	}

	content, err := json.Marshal(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not encode script", "INTERNAL")
		return
	}

	rec, err := h.scripts.Save(r.Context(), user.ID, doc.Intro.Title, req.Topic, content)
	if err != nil {
		h.log.Errorw("script save failed", "topic", req.Topic, "err", err)
		writeError(w, http.StatusInternalServerError, "could not save script", "INTERNAL")
		return
	}

	if req.Narrate {
		// Narration failure never loses the script.
		if err := h.renderer.RenderScript(r.Context(), rec.ID, doc, voice); err != nil {
			h.log.Warnw("narration failed", "script", rec.ID, "err", err)
		} else if updated, err := json.Marshal(doc); err == nil {
			if err := h.scripts.Update(r.Context(), rec.ID, user.ID, updated); err != nil {
				h.log.Warnw("audio annotation save failed", "script", rec.ID, "err", err)
			} else {
				rec.Content = updated
			}
		}
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handlers) writeGenerationError(w http.ResponseWriter, topic string, err error) {
	var genErr *script.GenerationError
	if errors.As(err, &genErr) {
		violations := make([]string, 0, len(genErr.Violations))
		for _, v := range genErr.Violations {
			violations = append(violations, v.String())
		}
		h.log.Warnw("generation rejected", "topic", topic, "attempts", genErr.Attempts, "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:      "the model did not produce a valid teaching script",
			Code:       "INVALID_SCRIPT",
			Violations: violations,
		})
		return
	}

	var tplErr *script.TemplateError
	if errors.As(err, &tplErr) {
		writeError(w, http.StatusBadRequest, tplErr.Error(), "BAD_REQUEST")
		return
	}

	h.log.Errorw("generation failed", "topic", topic, "err", err)
	writeError(w, http.StatusBadGateway, "script generation is temporarily unavailable", "UPSTREAM")
}

// ListScripts handles GET /api/v1/scripts.
func (h *Handlers) ListScripts(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	list, err := h.scripts.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.log.Errorw("script list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "could not list scripts", "INTERNAL")
		return
	}
	if list == nil {
		list = []*store.ScriptRecord{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetScript handles GET /api/v1/scripts/{id}.
func (h *Handlers) GetScript(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	rec, err := h.scripts.Load(r.Context(), chi.URLParam(r, "id"), user.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "script not found", "NOT_FOUND")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load script", "INTERNAL")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteScript handles DELETE /api/v1/scripts/{id}.
func (h *Handlers) DeleteScript(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	err := h.scripts.Delete(r.Context(), chi.URLParam(r, "id"), user.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "script not found", "NOT_FOUND")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete script", "INTERNAL")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Audio handles GET /audio/{filename}, serving rendered narration.
func (h *Handlers) Audio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ".mp3") {
		writeError(w, http.StatusBadRequest, "invalid audio filename", "BAD_REQUEST")
		return
	}
	http.ServeFile(w, r, filepath.Join(h.audioDir, name))
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "ok"
	if err := h.ping(r.Context()); err != nil {
		status = "degraded"
		dbStatus = err.Error()
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": status,
		"db":     dbStatus,
		"model":  h.modelID,
	})
}
