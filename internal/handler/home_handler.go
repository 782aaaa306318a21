package handlers

import (
	"log"
	"net/http"
)

type HealthResponse struct {
	Status string `json:"status"`
	Tables int    `json:"tables"`
}

func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index.html", PageData{})
}

func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderMessage(w, r, http.StatusNotFound, "page not found")
}

// Health pings the database by counting its tables.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.TablesService.CountTables(r.Context())
	if err != nil {
		log.Printf("health check failed: %v", err)
		WriteError(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, HealthResponse{Status: "ok", Tables: count}, http.StatusOK)
}
