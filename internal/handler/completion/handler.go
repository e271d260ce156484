package completion

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/krittin/healthchat/backend/internal/agent"
	"github.com/krittin/healthchat/backend/internal/model/chat"
	chatService "github.com/krittin/healthchat/backend/internal/service/chat"
	"github.com/krittin/healthchat/backend/pkg/utils"
)

// Handler serves the OpenAI-compatible completion endpoint backed by the
// workflow engine and the session memory store.
type Handler struct {
	engine   *agent.Engine
	sessions *chatService.Service
}

// New creates the completion handler.
func New(engine *agent.Engine, sessions *chatService.Service) *Handler {
	return &Handler{engine: engine, sessions: sessions}
}

// RegisterRoutes mounts the endpoint; the caller decides the version prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/completions", h.handleCompletion)
}

type turnPayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []turnPayload `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
	// SessionID selects the conversation whose stored history seeds this
	// request. Absent id mints a fresh session, echoed via X-Session-ID.
	SessionID string `json:"session_id,omitempty"`
}

type completionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
}

type completionChoice struct {
	Index        int         `json:"index"`
	Message      turnPayload `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

func (h *Handler) handleCompletion(w http.ResponseWriter, r *http.Request) {
	var payload completionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(payload.Messages) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	// Only the last entry counts as the new user turn; stored history is the
	// source of truth for everything before it.
	userMessage := strings.TrimSpace(payload.Messages[len(payload.Messages)-1].Content)
	if userMessage == "" {
		utils.RespondError(w, http.StatusBadRequest, "last message content must not be empty")
		return
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = r.Header.Get("X-Session-ID")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// Serialize the whole request per session so two concurrent requests on
	// the same conversation cannot interleave their turn pairs.
	release := h.sessions.Acquire(sessionID)
	defer release()

	state := agent.NewState(chat.Messages(h.sessions.History(sessionID)), userMessage)

	completionID := "chatcmpl-" + uuid.NewString()
	w.Header().Set("X-Session-ID", sessionID)

	if payload.Stream {
		h.streamCompletion(w, r, state, completionID, payload.Model, sessionID, userMessage)
		return
	}

	final, err := h.engine.Run(r.Context(), state, nil)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "completion failed")
		return
	}

	h.sessions.AppendExchange(sessionID, userMessage, final.Content)

	utils.RespondJSON(w, http.StatusOK, completionResponse{
		ID:      completionID,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   payload.Model,
		Choices: []completionChoice{{
			Index:        0,
			Message:      turnPayload{Role: chat.RoleAssistant, Content: final.Content},
			FinishReason: "stop",
		}},
	})
}
