// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jeranaias/aura-tui/internal/model"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8002"

	// MaxRequestBodySize bounds JSON request bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// DefaultMaxUploadSize bounds multipart uploads (10MB).
	DefaultMaxUploadSize = 10 * 1024 * 1024

	// RateLimitDetail is the 429 detail for message sends.
	RateLimitDetail = "Too many requests. Rate limit is 10 messages per minute."

	// Version is the server version.
	Version = "0.1.0"
)

// ============================================================================
// SERVER
// ============================================================================

// Options configures a Server.
type Options struct {
	Addr           string
	RateLimit      int
	RateWindow     time.Duration
	MaxUploadBytes int64
	Responder      Responder
	Logger         zerolog.Logger
}

// Server is the HTTP front of a Store.
type Server struct {
	store     *Store
	responder Responder
	limiter   *RateLimiter
	log       zerolog.Logger
	addr      string
	maxUpload int64

	router *http.ServeMux
	server *http.Server
}

// New creates a Server over store.
func New(store *Store, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadSize
	}
	if opts.Responder == nil {
		opts.Responder = MockResponder{}
	}

	s := &Server{
		store:     store,
		responder: opts.Responder,
		limiter:   NewRateLimiter(opts.RateLimit, opts.RateWindow),
		log:       opts.Logger.With().Str("component", "server").Logger(),
		addr:      opts.Addr,
		maxUpload: opts.MaxUploadBytes,
		router:    http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	rateLimited := RateLimitMiddleware(s.limiter, s.rateLimitDetail(), s.log)

	s.router.HandleFunc("GET /{$}", s.handleRoot)

	s.router.HandleFunc("POST /conversations", s.handleCreateConversation)
	s.router.HandleFunc("GET /conversations", s.handleListConversations)
	s.router.HandleFunc("GET /conversations/{id}", s.handleGetConversation)
	s.router.HandleFunc("PATCH /conversations/{id}", s.handleUpdateConversation)
	s.router.HandleFunc("DELETE /conversations/{id}", s.handleDeleteConversation)
	s.router.Handle("POST /conversations/{id}/messages", rateLimited(http.HandlerFunc(s.handleSendMessage)))

	s.router.HandleFunc("POST /upload", s.handleUpload)
	s.router.HandleFunc("POST /feedback", s.handleFeedback)
	s.router.HandleFunc("GET /analytics", s.handleAnalytics)
}

func (s *Server) rateLimitDetail() string {
	if s.limiter.limit == 10 && s.limiter.window == time.Minute {
		return RateLimitDetail
	}
	return fmt.Sprintf("Too many requests. Rate limit is %d messages per %s.", s.limiter.limit, s.limiter.window)
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(s.log),
		RequestIDMiddleware(),
		LoggingMiddleware(s.log),
		CORSMiddleware(DefaultCORSConfig()),
	)(s.router)
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Aura API is running",
		"version": Version,
	})
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var in NewConversation
	if !s.decode(w, r, &in) {
		return
	}
	if in.Temperature != nil && (*in.Temperature < model.MinTemperature || *in.Temperature > model.MaxTemperature) {
		writeDetail(w, http.StatusUnprocessableEntity, "temperature must be between 0 and 2")
		return
	}

	conv, err := s.store.CreateConversation(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Debug().Str("conversation", conv.ID.String()).Str("title", conv.Title).Msg("conversation created")
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)
	list, err := s.store.ListConversations(r.Context(), skip, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.store.GetConversation(r.Context(), model.ID(r.PathValue("id")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleUpdateConversation(w http.ResponseWriter, r *http.Request) {
	var patch model.ConversationPatch
	if !s.decode(w, r, &patch) {
		return
	}
	if patch.Temperature != nil && (*patch.Temperature < model.MinTemperature || *patch.Temperature > model.MaxTemperature) {
		writeDetail(w, http.StatusUnprocessableEntity, "temperature must be between 0 and 2")
		return
	}
	conv, err := s.store.UpdateConversation(r.Context(), model.ID(r.PathValue("id")), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteConversation(r.Context(), model.ID(r.PathValue("id"))); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted"})
}

type sendMessageRequest struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	convID := model.ID(r.PathValue("id"))

	var req sendMessageRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Content == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "content is required")
		return
	}

	settings, err := s.store.Settings(ctx, convID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.store.AddMessage(ctx, convID, model.RoleUser, *req.Content); err != nil {
		s.fail(w, r, err)
		return
	}

	docs, err := s.store.AttachmentContext(ctx, convID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reply := s.responder.Reply(ReplyRequest{Message: *req.Content, Settings: settings, Context: docs})

	msg, err := s.store.AddMessage(ctx, convID, model.RoleAssistant, reply)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tokens := CountTokens(*req.Content, reply)
	if err := s.store.RecordUsage(ctx, "/chat", settings.Model, tokens); err != nil {
		s.log.Warn().Err(err).Msg("usage metric not recorded")
	}

	s.log.Debug().
		Str("conversation", convID.String()).
		Str("model", string(settings.Model)).
		Int("tokens", tokens).
		Msg("reply generated")
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	convID := model.ID(r.URL.Query().Get("conversation_id"))
	if convID.IsZero() {
		writeDetail(w, http.StatusUnprocessableEntity, "conversation_id is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeDetail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds maximum size of %d bytes", s.maxUpload))
			return
		}
		writeDetail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "could not read upload")
		return
	}

	att, err := s.store.AddAttachment(r.Context(), convID, header.Filename, ExtractText(header.Filename, data), int64(len(data)))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Debug().Str("conversation", convID.String()).Str("file", header.Filename).Int("bytes", len(data)).Msg("attachment stored")
	writeJSON(w, http.StatusOK, att)
}

type feedbackRequest struct {
	MessageID      model.ID `json:"message_id"`
	ConversationID model.ID `json:"conversation_id"`
	IsPositive     *bool    `json:"is_positive"`
	Comment        string   `json:"comment"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.MessageID.IsZero() || req.ConversationID.IsZero() || req.IsPositive == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "message_id, conversation_id and is_positive are required")
		return
	}
	rec, err := s.store.SetFeedback(r.Context(), req.MessageID, req.ConversationID, *req.IsPositive, req.Comment)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.Analytics(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Str("version", Version).Msg("server started")
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// ============================================================================
// HELPERS
// ============================================================================

// decode reads a JSON body; on failure it writes a 422 and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeDetail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds maximum size of %d bytes", MaxRequestBodySize))
			return false
		}
		s.log.Debug().Err(err).Str("path", r.URL.Path).Msg("invalid request body")
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return false
	}
	return true
}

// fail maps store errors to responses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		writeDetail(w, http.StatusNotFound, notFoundDetail(r))
		return
	}
	s.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	writeDetail(w, http.StatusInternalServerError, "Request processing failed. Please try again.")
}

func notFoundDetail(r *http.Request) string {
	if r.URL.Path == "/feedback" {
		return "Message not found"
	}
	return "Conversation not found"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
