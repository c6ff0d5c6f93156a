// Package api provides HTTP handlers for zulubot endpoints.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/zulu-club/zulubot/internal/models"
)

// pingHandler reports service health (GET /ping).
func (s *Server) pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage(models.APIStatusOK, "Zulu Club bot running"))
}

// webhookHandler receives provider webhook callbacks (POST /gallabox_webhook).
// The provider expects a fast 200 acknowledgment, so downstream delivery
// failures are logged and never surfaced here.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.webhookHandler: processing webhook request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.webhookHandler: method not allowed", "method", r.Method)
		writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		return
	}

	var envelope models.WebhookEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		// An empty body is a provider keepalive, not a client error.
		if errors.Is(err, io.EOF) {
			slog.Debug("Server.webhookHandler: empty body, ignoring")
			writeJSONResponse(w, http.StatusOK, models.Success(models.APIStatusIgnored))
			return
		}
		slog.Warn("Server.webhookHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON"))
		return
	}

	sender := envelope.SenderID()
	text := envelope.Text()
	if sender == "" {
		slog.Debug("Server.webhookHandler: missing sender, ignoring")
		writeJSONResponse(w, http.StatusOK, models.Success(models.APIStatusIgnored))
		return
	}

	sessionID, err := s.msgService.ValidateAndCanonicalizeRecipient(sender)
	if err != nil {
		slog.Warn("Server.webhookHandler: sender validation failed, ignoring", "error", err, "sender", sender)
		writeJSONResponse(w, http.StatusOK, models.Success(models.APIStatusIgnored))
		return
	}

	if text == "" {
		if !s.greetOnEmpty {
			slog.Debug("Server.webhookHandler: empty message text, ignoring", "session", sessionID)
			writeJSONResponse(w, http.StatusOK, models.Success(models.APIStatusIgnored))
			return
		}
		slog.Debug("Server.webhookHandler: empty message text, greeting", "session", sessionID)
		s.bot.Greet(r.Context(), sessionID)
		writeJSONResponse(w, http.StatusOK, models.Success(models.APIStatusSent))
		return
	}

	if len(text) > models.MaxMessageLength {
		text = text[:models.MaxMessageLength]
	}

	s.bot.HandleMessage(r.Context(), sessionID, text)
	slog.Info("Server.webhookHandler: message handled", "session", sessionID)
	writeJSONResponse(w, http.StatusOK, models.Success(models.APIStatusSent))
}

// notFoundHandler rejects every unknown method/path pair.
func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.notFoundHandler: rejecting request", "method", r.Method, "path", r.URL.Path)
	writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
}

// recoveryMiddleware converts handler panics into generic 500 responses.
// The panic detail stays in the server log.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Server.recoveryMiddleware: handler panic", "panic", rec, "method", r.Method, "path", r.URL.Path)
				writeJSONResponse(w, http.StatusInternalServerError, models.Error("Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
