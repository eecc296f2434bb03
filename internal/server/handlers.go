// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ATreeShine/GEMINI-AGENT/internal/chat"
	"github.com/ATreeShine/GEMINI-AGENT/internal/conversation"
	"github.com/ATreeShine/GEMINI-AGENT/internal/format"
	"github.com/ATreeShine/GEMINI-AGENT/internal/index"
	"github.com/ATreeShine/GEMINI-AGENT/internal/responder"
	"github.com/ATreeShine/GEMINI-AGENT/internal/storage"
)

// ============================================================================
// REQUEST/RESPONSE TYPES
// ============================================================================

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Status        string `json:"status"`
	APIConfigured bool   `json:"apiConfigured"`
	Provider      string `json:"provider,omitempty"`
	Version       string `json:"version"`
}

// ChatListResponse is the body of GET /api/chats.
type ChatListResponse struct {
	Chats []index.Summary `json:"chats"`
}

// SendRequest is the body of POST /api/chat.
type SendRequest struct {
	Message  string         `json:"message"`
	ChatID   string         `json:"chatId,omitempty"`
	Settings *chat.Settings `json:"settings,omitempty"`
}

// SendResponse is the body returned for a completed turn.
type SendResponse struct {
	ChatID   string         `json:"chatId"`
	Message  string         `json:"message"`
	Messages []chat.Message `json:"messages"`
}

// ExportRequest is the body of POST /api/chats/{id}/export.
type ExportRequest struct {
	Format string `json:"format"`
}

// ExportResponse reports where the export was written.
type ExportResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

// SettingsRequest is the body of PUT /api/chats/{id}/settings.
type SettingsRequest struct {
	Settings chat.Settings `json:"settings"`
}

// TitleRequest is the body of POST /api/chats/{id}/title.
type TitleRequest struct {
	Title string `json:"title"`
}

// ChatResponse wraps a chat returned by a mutation.
type ChatResponse struct {
	Success bool       `json:"success"`
	Chat    *chat.Chat `json:"chat"`
}

// FormatRequest is the body of POST /api/format.
type FormatRequest struct {
	Text string `json:"text"`
}

// FormatResponse carries the rendered markup.
type FormatResponse struct {
	HTML string `json:"html"`
}

// ============================================================================
// STATUS
// ============================================================================

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:        "online",
		APIConfigured: responder.IsConfigured(s.svc.Responder()),
		Version:       Version,
	}
	if d, ok := s.svc.Responder().(responder.Describer); ok {
		resp.Provider = d.Provider()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// CHATS
// ============================================================================

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.index.List(r.Context())
	if err != nil {
		s.fail(w, r, err, "Failed to load chats")
		return
	}
	if summaries == nil {
		summaries = []index.Summary{}
	}
	writeJSON(w, http.StatusOK, ChatListResponse{Chats: summaries})
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, "Failed to load chat")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrChatNotFound) {
		failed := false
		writeJSON(w, http.StatusNotFound, errorResponse{Success: &failed, Error: "Chat not found"})
		return
	}
	if err != nil {
		s.fail(w, r, err, "Failed to delete chat")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}

	result, err := s.svc.Send(r.Context(), conversation.SendRequest{
		Message:  req.Message,
		ChatID:   req.ChatID,
		Settings: req.Settings,
	})
	if err != nil {
		s.fail(w, r, err, "Failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, SendResponse{
		ChatID:   result.ChatID,
		Message:  result.Message,
		Messages: result.Messages,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !s.decodeJSON(w, r, &req, true) {
		return
	}
	if req.Format == "" {
		req.Format = "json"
	}

	path, err := s.svc.Export(r.Context(), r.PathValue("id"), req.Format)
	if err != nil {
		s.fail(w, r, err, "Failed to export chat")
		return
	}
	writeJSON(w, http.StatusOK, ExportResponse{Success: true, Path: path})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !s.decodeJSON(w, r, &req, true) {
		return
	}

	c, err := s.svc.UpdateSettings(r.Context(), r.PathValue("id"), req.Settings)
	if err != nil {
		s.fail(w, r, err, "Failed to update settings")
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Success: true, Chat: c})
}

func (s *Server) handleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	var req TitleRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}

	c, err := s.svc.UpdateTitle(r.Context(), r.PathValue("id"), req.Title)
	if err != nil {
		s.fail(w, r, err, "Failed to update title")
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Success: true, Chat: c})
}

// ============================================================================
// FORMAT
// ============================================================================

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	writeJSON(w, http.StatusOK, FormatResponse{HTML: format.Format(req.Text)})
}

// ============================================================================
// ERROR MAPPING
// ============================================================================

// decodeJSON reads the request body into v. On failure it writes the error
// response and returns false. allowEmpty accepts a missing body.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	if allowEmpty && errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "Invalid JSON body")
	return false
}

// fail maps a service error to a response. Unexpected errors are logged and
// reported with the generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	var ve *conversation.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, storage.ErrChatNotFound):
		writeError(w, http.StatusNotFound, "Chat not found")
	default:
		s.logger.Error(message,
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromContext(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, message)
	}
}
