package handlers

import (
	"encoding/json"
	"net/http"
)

type AskRequest struct {
	Message string `json:"message"`
}

type AskResponse struct {
	Response string `json:"response"`
}

func (h *Handlers) ChatbotPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "chatbot.html", PageData{Title: "Pairing bot"})
}

func (h *Handlers) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	reply, err := h.ChatService.Ask(r.Context(), req.Message)
	if err != nil {
		h.handleAPIError(w, r, err)
		return
	}

	writeJSON(w, AskResponse{Response: reply}, http.StatusOK)
}
