package handlers

import "net/http"

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Health is the container liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: "backend"})
}
