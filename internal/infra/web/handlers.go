package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"mangopay-card-gateway/internal/domain"
	"mangopay-card-gateway/internal/domain/model"
)

// A struct to define the expected JSON request body for preparing a card
// registration.
type prepareRequest struct {
	PayerID      string          `json:"payer_id"`
	MangoUserID  string          `json:"mango_user_id"`
	CardType     string          `json:"card_type"`
	BusinessData json.RawMessage `json:"business_data"`
}

type prepareResponse struct {
	SessionID string `json:"session_id"`
	model.RegistrationResult
}

func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session := model.NewRegistrationSession()
	session.BusinessData = req.BusinessData
	payer := model.PayerRef{ID: req.PayerID, MangoID: req.MangoUserID}

	result, err := s.regUC.Prepare(ctx, payer, session, req.CardType)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMangoEntity) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.log.Error().Err(err).Str("payer_id", req.PayerID).Msg("prepare failed")
		http.Error(w, "Card registration could not be prepared", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(prepareResponse{
		SessionID:          session.SessionID,
		RegistrationResult: *result,
	})
}

// handleReturn is the endpoint the provider's redirect lands on. The same
// route resolves both outcomes: "data" marks the success path, "errorCode"
// the error path.
func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	q := r.URL.Query()
	sessionID := q.Get("registrationSessionId")
	if sessionID == "" {
		http.Error(w, "missing registrationSessionId", http.StatusBadRequest)
		return
	}

	respCtx := map[string]string{
		"request_id":  middleware.GetReqID(r.Context()),
		"remote_addr": r.RemoteAddr,
	}

	var err error
	switch {
	case q.Get("data") != "":
		err = s.regUC.ProcessSuccessCallback(ctx, sessionID, q.Get("data"), respCtx)
	case q.Get("errorCode") != "":
		err = s.regUC.ProcessErrorCallback(ctx, sessionID, q.Get("errorCode"), respCtx)
	default:
		http.Error(w, "missing data or errorCode", http.StatusBadRequest)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			http.Error(w, "Unknown registration session", http.StatusNotFound)
		case errors.Is(err, domain.ErrSessionAlreadyFinalized), errors.Is(err, domain.ErrSessionLocked):
			http.Error(w, "Registration already processed", http.StatusConflict)
		case errors.Is(err, domain.ErrBadMangoReturn), errors.Is(err, domain.ErrInvalidMangoEntity):
			http.Error(w, "Card registration could not be resolved", http.StatusBadGateway)
		default:
			s.log.Error().Err(err).Str("session_id", sessionID).Msg("callback processing failed")
			http.Error(w, "Callback processing failed", http.StatusBadGateway)
		}
		return
	}

	s.renderHTML(w, http.StatusOK, "Card registration received",
		"Your card registration has been processed. You can close this page.")
}

func (s *Server) renderHTML(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%s</title><meta charset="utf-8"></head>
<body><h1>%s</h1><p>%s</p></body>
</html>`, title, title, body)
}
