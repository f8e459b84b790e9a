// Package orchestrator runs one feedback exchange end to end: reconcile
// prior state, ask the completion service for the next bot line, detect
// conversation termination, persist the transcript.
package orchestrator

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/pitchbot/feedback-relay/internal/model/conversation"
	"github.com/pitchbot/feedback-relay/internal/service/completion"
	"github.com/pitchbot/feedback-relay/internal/service/reconcile"
	"github.com/pitchbot/feedback-relay/internal/store"
)

// FallbackReply is shown when the completion service cannot be reached;
// the chat never surfaces a raw upstream error.
const FallbackReply = "I'm having trouble connecting right now. Could you try again in a moment?"

// closingAnswer stands in for the user's reply on the final bot line,
// which the user never answers.
const closingAnswer = "[Conversation ended]"

// continuityNote extends the system prompt when cross-session context
// exists, so the model treats the earliest turns as remembered history.
const continuityNote = "You have talked with this team in earlier feedback sessions. " +
	"The earliest turns in this conversation come from those sessions: build on them, " +
	"avoid repeating questions you already covered in detail, and make this feel like " +
	"a natural continuation rather than a restart."

// Gateway produces the next bot line for a transcript.
type Gateway interface {
	NextTurn(ctx context.Context, systemPrompt string, turns []conversation.Turn) (string, error)
}

// Request is one incoming exchange from the chat widget.
type Request struct {
	TeamID    string
	SessionID string
	Answers   []conversation.Turn
}

// Response is what the widget receives back.
type Response struct {
	Question string
	Ended    bool
}

// Service wires reconciler, gateway and store together per exchange. It
// holds no cross-request state; all continuity lives in the store.
type Service struct {
	reconciler   *reconcile.Reconciler
	gateway      Gateway
	store        store.Store
	systemPrompt string
	sentinel     *regexp.Regexp
}

// New builds the orchestrator. sentinelPhrase is the fixed marker the
// prompt instructs the model to emit on its final message; matching is
// case-insensitive and swallows trailing punctuation.
func New(rec *reconcile.Reconciler, gw Gateway, st store.Store, systemPrompt, sentinelPhrase string) *Service {
	return &Service{
		reconciler:   rec,
		gateway:      gw,
		store:        st,
		systemPrompt: systemPrompt,
		sentinel:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(sentinelPhrase) + `[\s.!…]*`),
	}
}

// HandleExchange runs one exchange. Rate-limit and auth failures from
// the gateway propagate so the boundary can map them to distinct
// statuses; every other failure degrades to the fallback reply or a
// logged, skipped write.
func (s *Service) HandleExchange(ctx context.Context, req Request) (Response, error) {
	exchangeID := uuid.NewString()

	var incoming conversation.Transcript
	for _, pair := range req.Answers {
		if err := incoming.Append(pair); err != nil {
			log.Printf("[orchestrator] exchange=%s dropping empty answer pair", exchangeID)
		}
	}
	sessionStart := incoming.Len() == 0

	log.Printf("[orchestrator] exchange=%s session=%s team=%s turns=%d",
		exchangeID, req.SessionID, orAnonymous(req.TeamID), incoming.Len())

	reconciled := s.reconciler.Reconcile(ctx, req.TeamID, req.SessionID, incoming)

	merged := make([]conversation.Turn, 0, len(reconciled.Prior)+incoming.Len())
	merged = append(merged, reconciled.Prior...)
	merged = append(merged, incoming.Turns...)

	prompt := s.systemPrompt
	if len(reconciled.Prior) > 0 {
		prompt += "\n\n" + continuityNote
	}

	raw, err := s.gateway.NextTurn(ctx, prompt, merged)
	if err != nil {
		if errors.Is(err, completion.ErrRateLimited) || errors.Is(err, completion.ErrAuthFailed) {
			return Response{}, err
		}
		log.Printf("[orchestrator] exchange=%s completion failed, falling back: %v", exchangeID, err)
		return Response{Question: FallbackReply}, nil
	}

	ended := s.sentinel.MatchString(raw)
	cleaned := strings.TrimSpace(s.sentinel.ReplaceAllString(raw, ""))

	s.persist(ctx, exchangeID, req, incoming, reconciled, cleaned, ended, sessionStart)

	return Response{Question: cleaned, Ended: ended}, nil
}

// persist writes the merged transcript for this session. Failures are
// logged and swallowed: losing a write is less harmful than failing the
// user-facing turn.
func (s *Service) persist(ctx context.Context, exchangeID string, req Request, incoming conversation.Transcript, reconciled reconcile.Result, botLine string, ended, sessionStart bool) {
	status := conversation.StatusInProgress
	stored := incoming
	if ended {
		status = conversation.StatusCompleted
		// Capture the final bot line even though the user never answers it.
		if botLine != "" {
			if err := stored.Append(conversation.Turn{Question: botLine, Answer: closingAnswer}); err != nil {
				log.Printf("[orchestrator] exchange=%s skipping closing turn: %v", exchangeID, err)
			}
		}
	}

	var text string
	if sessionStart {
		text = stored.EncodeFirstWrite(status)
	} else {
		text = stored.Encode(status)
	}

	if reconciled.Current == nil {
		if _, err := s.store.Create(ctx, req.TeamID, req.SessionID, text); err != nil {
			log.Printf("[orchestrator] exchange=%s persist create failed: %v", exchangeID, err)
		}
		return
	}
	if err := s.store.Update(ctx, *reconciled.Current, text); err != nil {
		log.Printf("[orchestrator] exchange=%s persist update failed: %v", exchangeID, err)
	}
}

func orAnonymous(teamID string) string {
	if teamID == "" {
		return "anonymous"
	}
	return teamID
}
