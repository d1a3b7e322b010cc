package handlers

import "net/http"

// HealthResponse is the body of GET /api/healthcheck
type HealthResponse struct {
	Status string `json:"status"`
}

// Health reports liveness without touching any backend
// GET /api/healthcheck
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "pass"})
}
