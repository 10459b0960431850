package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"sessions": s.sessions.Count(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	for _, c := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		err := c.Ping(ctx)
		cancel()
		if err != nil {
			slog.Warn("readiness check failed", "check", c.Name, "error", err)
			respondError(w, http.StatusServiceUnavailable, "not_ready", c.Name+" not ready")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Page handlers

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	page, ok := s.pages[path]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "page not found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(page.HTML)); err != nil {
		slog.Debug("failed to write page", "path", path, "error", err)
	}
}
