package handlers

import (
	"context"
	"net/http"

	"github.com/markdave123-py/scipaper/internal/services"
)

// Answerer answers questions over ingested papers.
type Answerer interface {
	Answer(ctx context.Context, req services.AskRequest) (string, error)
}

type ChatHandler struct {
	chat Answerer
}

func NewChatHandler(chat Answerer) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req services.AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	answer, err := h.chat.Answer(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
