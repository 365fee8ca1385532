package handler

import (
	"encoding/json"
	"net/http"

	"github.com/deptboard-api/internal/application/chat"
	"github.com/deptboard-api/internal/transport/http/middleware"
)

// ChatHandler forwards messages to the rule-based chatbot. The JWT subject is
// the conversation key, so each user gets their own multi-turn state.
type ChatHandler struct {
	svc chat.Service
}

func NewChatHandler(svc chat.Service) *ChatHandler { return &ChatHandler{svc: svc} }

func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reply, err := h.svc.Handle(r.Context(), claims.UserID, req.Message)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
