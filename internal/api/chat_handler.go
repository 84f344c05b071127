// File path: internal/api/chat_handler.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mtorres-dev/hackmate/internal/chat"
	"github.com/mtorres-dev/hackmate/internal/common"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: chat decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	logger.Info("api: chat request received", "message_length", len(req.Message), "context_type", req.ContextType)
	resp, err := s.chat.Respond(r.Context(), req)
	if err != nil {
		writeChatError(w, err)
		return
	}
	logger.Info("api: chat completion succeeded", "provider", s.provider.Name(), "sources", len(resp.Sources))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidateIdea(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: validate-idea decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.chat.ValidateIdea(r.Context(), req)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProgressReport(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	if s.activity == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("github integration not configured"))
		return
	}
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("api: progress-report decode failed", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := s.chat.ProgressReport(r.Context(), req)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeChatError(w http.ResponseWriter, err error) {
	var verr *chat.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}
