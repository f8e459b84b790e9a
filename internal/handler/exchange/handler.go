// Package exchange exposes the single relay operation the chat widget
// calls after every answer.
package exchange

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pitchbot/feedback-relay/internal/model/conversation"
	"github.com/pitchbot/feedback-relay/internal/service/completion"
	"github.com/pitchbot/feedback-relay/internal/service/orchestrator"
	"github.com/pitchbot/feedback-relay/pkg/utils"
)

// Handler serves the next-question boundary.
type Handler struct {
	svc *orchestrator.Service
}

// New creates the exchange handler.
func New(svc *orchestrator.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the exchange routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/next-question", h.handleNextQuestion)
}

type answerPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type exchangeRequest struct {
	Answers   []answerPair `json:"answers"`
	TeamID    string       `json:"teamId"`
	SessionID string       `json:"sessionId"`
}

type exchangeResponse struct {
	Question          string `json:"question"`
	ConversationEnded bool   `json:"conversationEnded"`
}

func (h *Handler) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	var payload exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.SessionID) == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	req := orchestrator.Request{
		TeamID:    strings.TrimSpace(payload.TeamID),
		SessionID: strings.TrimSpace(payload.SessionID),
	}
	for _, pair := range payload.Answers {
		req.Answers = append(req.Answers, conversation.Turn{Question: pair.Question, Answer: pair.Answer})
	}

	resp, err := h.svc.HandleExchange(r.Context(), req)
	switch {
	case errors.Is(err, completion.ErrRateLimited):
		utils.RespondError(w, http.StatusTooManyRequests, "the feedback coach is busy right now, please try again shortly")
	case errors.Is(err, completion.ErrAuthFailed):
		log.Printf("[exchange] completion credentials rejected: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "completion service credentials are misconfigured")
	case err != nil:
		log.Printf("[exchange] unexpected failure: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	default:
		utils.RespondJSON(w, http.StatusOK, exchangeResponse{
			Question:          resp.Question,
			ConversationEnded: resp.Ended,
		})
	}
}
