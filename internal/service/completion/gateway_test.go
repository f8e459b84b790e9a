package completion

import (
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pitchbot/feedback-relay/internal/model/conversation"
)

func TestToMessagesRolesAndOrder(t *testing.T) {
	turns := []conversation.Turn{
		{Question: "Share your pitch.", Answer: "Here it is."},
		{Question: "Is the opening clear?", Answer: "Not sure."},
	}

	messages := toMessages("system text", turns)
	if len(messages) != 5 {
		t.Fatalf("got %d messages, want 5", len(messages))
	}
	if messages[0].Role != openai.ChatMessageRoleSystem || messages[0].Content != "system text" {
		t.Fatalf("unexpected system message: %+v", messages[0])
	}
	wantRoles := []string{
		openai.ChatMessageRoleAssistant,
		openai.ChatMessageRoleUser,
		openai.ChatMessageRoleAssistant,
		openai.ChatMessageRoleUser,
	}
	for i, role := range wantRoles {
		if messages[i+1].Role != role {
			t.Fatalf("message %d role: got %s want %s", i+1, messages[i+1].Role, role)
		}
	}
	if messages[1].Content != "Share your pitch." || messages[2].Content != "Here it is." {
		t.Fatalf("first turn rendered wrong: %+v %+v", messages[1], messages[2])
	}
}

func TestToMessagesEmptyTranscript(t *testing.T) {
	messages := toMessages("only the prompt", nil)
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want just the system prompt", len(messages))
	}
}

func TestClassifyRateLimited(t *testing.T) {
	err := classify(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
}

func TestClassifyAuthFailed(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		err := classify(&openai.APIError{HTTPStatusCode: code})
		if !errors.Is(err, ErrAuthFailed) {
			t.Fatalf("status %d: expected auth failure, got %v", code, err)
		}
	}
}

func TestClassifyGenericFailure(t *testing.T) {
	err := classify(errors.New("connection reset"))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrAuthFailed) {
		t.Fatalf("generic failure matched a distinguished error: %v", err)
	}
}
