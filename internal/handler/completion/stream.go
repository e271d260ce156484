package completion

import (
	"log"
	"net/http"
	"time"

	"github.com/krittin/healthchat/backend/internal/agent"
	"github.com/krittin/healthchat/backend/internal/model/chat"
	"github.com/krittin/healthchat/backend/pkg/utils"
)

// doneSentinel terminates every stream, per the OpenAI SSE contract.
const doneSentinel = "[DONE]"

type chunkResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	// Status carries a step-log entry on progress frames; such frames have no
	// choices and are an observability side channel, not answer content.
	Status  string        `json:"status,omitempty"`
	Choices []chunkChoice `json:"choices,omitempty"`
}

type chunkChoice struct {
	Index int         `json:"index"`
	Delta turnPayload `json:"delta"`
}

// streamCompletion relays the run over SSE: one status frame per step-log
// append, then the answer content frame(s), then the [DONE] sentinel. Status
// frames always precede content frames because every step is logged before
// the final generation emits its first chunk.
func (h *Handler) streamCompletion(w http.ResponseWriter, r *http.Request, state *agent.State, completionID, model, sessionID, userMessage string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	sink := &sseSink{
		w:       w,
		flusher: flusher,
		id:      completionID,
		model:   model,
		created: time.Now().Unix(),
	}

	final, err := h.engine.Run(r.Context(), state, sink)
	if err != nil {
		// Only a dead request context reaches here; the stream is gone.
		log.Printf("[stream] run aborted for session=%s: %v", sessionID, err)
		return
	}

	// The engine relays deltas live only when the first generation is final;
	// otherwise the whole answer goes out as a single content frame here.
	if sink.deltaCount == 0 {
		sink.OnDelta(final.Content)
	}

	h.sessions.AppendExchange(sessionID, userMessage, final.Content)

	utils.SendSSERaw(w, flusher, doneSentinel)
	log.Printf("[stream] completed response for session=%s steps=%d", sessionID, len(state.Steps))
}

// sseSink adapts the engine's event callbacks to completion-chunk frames.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher

	id      string
	model   string
	created int64

	deltaCount int
}

func (s *sseSink) OnStep(step string) {
	utils.SendSSEChunk(s.w, s.flusher, chunkResponse{
		ID:      s.id,
		Object:  "chat.completion.chunk",
		Created: s.created,
		Model:   s.model,
		Status:  step,
	})
}

func (s *sseSink) OnDelta(content string) {
	s.deltaCount++
	utils.SendSSEChunk(s.w, s.flusher, chunkResponse{
		ID:      s.id,
		Object:  "chat.completion.chunk",
		Created: s.created,
		Model:   s.model,
		Choices: []chunkChoice{{
			Index: 0,
			Delta: turnPayload{Role: chat.RoleAssistant, Content: content},
		}},
	})
}
