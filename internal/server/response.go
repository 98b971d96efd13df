package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

type errorResponse struct {
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	Details       string `json:"details,omitempty"`
	RequestedPath string `json:"requestedPath,omitempty"`
}

type dataResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type rootResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("Failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message, details string) {
	s.writeJSON(w, status, errorResponse{Error: message, Details: details})
}

func (s *Server) writeData(w http.ResponseWriter, success bool, message string, data interface{}) {
	s.writeJSON(w, http.StatusOK, dataResponse{
		Success:   success,
		Message:   message,
		Data:      data,
		Timestamp: s.now().UTC().Format(timestampLayout),
	})
}
