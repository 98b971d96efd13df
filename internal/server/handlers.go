package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"api-test-generator/internal/history"
	"api-test-generator/internal/template"
	"api-test-generator/internal/types"
)

type executeRequest struct {
	ClassName string `json:"className"`
	JavaCode  string `json:"javaCode"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		s.notFound(w, r)
		return
	}
	s.writeJSON(w, http.StatusOK, rootResponse{
		Message: "RestAssured API Test Generator Backend is running!",
		Status:  "active",
		Endpoints: map[string]string{
			"generate":   "POST /api/generate-test",
			"execute":    "POST /api/execute-test",
			"javaStatus": "GET /api/java-status",
			"history":    "GET /api/history",
		},
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var desc types.RequestDescription
	if !s.decode(w, r, &desc) {
		return
	}

	unit, ok := s.generate(w, r, desc)
	if !ok {
		return
	}

	s.record(r, history.Entry{
		Kind:      history.KindGenerate,
		ClassName: unit.ClassName,
		Method:    desc.Method,
		Endpoint:  desc.Endpoint,
		Status:    "GENERATED",
		Success:   true,
	})
	s.writeData(w, true, "Test class generated successfully", unit)
}

// handleExecute accepts either a generated class ({className, javaCode}) or a
// request description, which is generated first
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if s.opts.Execute == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Test execution is not available", "")
		return
	}

	var raw json.RawMessage
	if !s.decode(w, r, &raw) {
		return
	}

	// anything that is not a well-formed class payload is read as a description
	var req executeRequest
	entry := history.Entry{Kind: history.KindExecute}
	if err := json.Unmarshal(raw, &req); err != nil || req.JavaCode == "" {
		var desc types.RequestDescription
		if err := json.Unmarshal(raw, &desc); err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
			return
		}
		unit, ok := s.generate(w, r, desc)
		if !ok {
			return
		}
		req = executeRequest{ClassName: unit.ClassName, JavaCode: unit.SourceText}
		entry.Method, entry.Endpoint = desc.Method, desc.Endpoint
	} else if req.ClassName == "" {
		s.writeError(w, http.StatusBadRequest, "Class name is required", "")
		return
	}

	s.log.Info("Received request to execute test", zap.String("className", req.ClassName))
	result, err := s.opts.Execute(r.Context(), req.ClassName, req.JavaCode)
	if err != nil {
		if errors.Is(err, types.ErrInvalidRequest) {
			s.writeError(w, http.StatusBadRequest, err.Error(), "")
			return
		}
		s.log.Error("Error executing test", zap.String("className", req.ClassName), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	entry.ClassName = req.ClassName
	entry.Status = result.Status
	entry.Success = result.Success
	entry.DurationMs = result.ExecutionTime
	s.record(r, entry)

	s.writeData(w, result.Success, "", result)
}

func (s *Server) handleJavaStatus(w http.ResponseWriter, r *http.Request) {
	if s.opts.Java == nil {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"available": false,
			"error":     "Test execution is not available",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, s.opts.Java.CheckJava(r.Context()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "History is not enabled", RequestedPath: r.URL.Path})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer", "")
			return
		}
		limit = n
	}

	entries, err := s.opts.History.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error("Failed to read history", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}
	s.writeData(w, true, "", entries)
}

// decode reads a JSON body into v, writing the error response itself when it
// cannot
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, s.opts.BodyLimit)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", "")
			return false
		}
		s.writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return false
	}
	return true
}

// generate validates desc and renders it, writing a 400 on rejection
func (s *Server) generate(w http.ResponseWriter, r *http.Request, desc types.RequestDescription) (types.GeneratedUnit, bool) {
	desc.Normalize()
	s.log.Info("Received request to generate test",
		zap.String("requestId", RequestID(r.Context())),
		zap.String("method", desc.Method),
		zap.String("endpoint", desc.Endpoint),
		zap.Int("expectedStatus", desc.ExpectedStatus))

	if err := desc.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error(), "")
		return types.GeneratedUnit{}, false
	}

	unit, err := template.Generate(desc)
	if err != nil {
		if errors.Is(err, types.ErrInvalidRequest) {
			s.writeError(w, http.StatusBadRequest, err.Error(), "")
			return types.GeneratedUnit{}, false
		}
		s.log.Error("Error processing request", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return types.GeneratedUnit{}, false
	}

	s.log.Debug("Generated Java test class", zap.String("className", unit.ClassName), zap.String("javaCode", unit.SourceText))
	return unit, true
}

func (s *Server) record(r *http.Request, e history.Entry) {
	if s.opts.History == nil {
		return
	}
	if err := s.opts.History.Record(r.Context(), e); err != nil {
		s.log.Warn("Failed to record history", zap.String("className", e.ClassName), zap.Error(err))
	}
}
