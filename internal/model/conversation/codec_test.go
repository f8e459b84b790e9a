package conversation_test

import (
	"strings"
	"testing"

	"github.com/pitchbot/feedback-relay/internal/model/conversation"
)

func TestEncodeFormat(t *testing.T) {
	var tr conversation.Transcript
	if err := tr.Append(conversation.Turn{Question: "What does your invention do?", Answer: "It waters plants."}); err != nil {
		t.Fatalf("Append err: %v", err)
	}
	if err := tr.Append(conversation.Turn{Question: "Who is it for?", Answer: "Busy gardeners."}); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	got := tr.Encode(conversation.StatusInProgress)
	want := "Q1: What does your invention do?\nA: It waters plants.\n\n" +
		"Q2: Who is it for?\nA: Busy gardeners.\n\n" +
		"[CONVERSATION IN PROGRESS]"
	if got != want {
		t.Fatalf("unexpected encoding:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestEncodeFirstWriteLeadsWithMarker(t *testing.T) {
	var tr conversation.Transcript
	got := tr.EncodeFirstWrite(conversation.StatusInProgress)
	want := "[SESSION STARTED]\n\n[CONVERSATION IN PROGRESS]"
	if got != want {
		t.Fatalf("unexpected first write encoding: %q", got)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	var tr conversation.Transcript
	turns := []conversation.Turn{
		{Question: "Share your pitch as it is right now.", Answer: "We built a smart water bottle that reminds you to drink."},
		{Question: "Does the opening line explain the problem clearly?", Answer: "Maybe not, it jumps straight to the bottle."},
		{Question: "Want help tightening that first sentence?", Answer: "Yes please."},
	}
	for _, turn := range turns {
		if err := tr.Append(turn); err != nil {
			t.Fatalf("Append err: %v", err)
		}
	}

	for _, status := range []conversation.Status{
		conversation.StatusInProgress,
		conversation.StatusCompleted,
		conversation.StatusAbandoned,
	} {
		decoded, gotStatus := conversation.Decode(tr.Encode(status))
		if gotStatus != status {
			t.Fatalf("status %s: decoded as %s", status, gotStatus)
		}
		if len(decoded.Turns) != len(turns) {
			t.Fatalf("status %s: got %d turns, want %d", status, len(decoded.Turns), len(turns))
		}
		for i, turn := range turns {
			if decoded.Turns[i] != turn {
				t.Fatalf("status %s: turn %d mismatch: got %+v want %+v", status, i, decoded.Turns[i], turn)
			}
		}
	}
}

func TestDecodeStripsSessionStartedMarker(t *testing.T) {
	text := "[SESSION STARTED]\n\nQ1: First question?\nA: First answer.\n\n[CONVERSATION IN PROGRESS]"
	decoded, status := conversation.Decode(text)
	if status != conversation.StatusInProgress {
		t.Fatalf("unexpected status: %s", status)
	}
	if len(decoded.Turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(decoded.Turns))
	}
	if strings.Contains(decoded.Turns[0].Question, "[SESSION STARTED]") {
		t.Fatal("session marker leaked into question")
	}
}

func TestDecodeImplicitFirstTurn(t *testing.T) {
	// Legacy records sometimes lack the Q1 prefix on the opening turn.
	text := "Tell me about your prototype.\nA: It is a recycling robot.\n\n" +
		"Q2: What does it sort?\nA: Plastic and paper.\n\n" +
		"[CONVERSATION COMPLETED]"
	decoded, status := conversation.Decode(text)
	if status != conversation.StatusCompleted {
		t.Fatalf("unexpected status: %s", status)
	}
	if len(decoded.Turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(decoded.Turns))
	}
	if decoded.Turns[0].Question != "Tell me about your prototype." {
		t.Fatalf("unexpected implicit first question: %q", decoded.Turns[0].Question)
	}
	if decoded.Turns[0].Answer != "It is a recycling robot." {
		t.Fatalf("unexpected implicit first answer: %q", decoded.Turns[0].Answer)
	}
}

func TestDecodeWithoutStatusMarker(t *testing.T) {
	decoded, status := conversation.Decode("Q1: Anything to refine?\nA: The closing line.")
	if status != conversation.StatusInProgress {
		t.Fatalf("unexpected default status: %s", status)
	}
	if len(decoded.Turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(decoded.Turns))
	}
}

func TestDecodeEmptyRecord(t *testing.T) {
	decoded, status := conversation.Decode("[SESSION STARTED]\n\n[CONVERSATION ABANDONED]")
	if status != conversation.StatusAbandoned {
		t.Fatalf("unexpected status: %s", status)
	}
	if len(decoded.Turns) != 0 {
		t.Fatalf("got %d turns, want 0", len(decoded.Turns))
	}
}

func TestAppendRejectsEmptyTurns(t *testing.T) {
	var tr conversation.Transcript
	if err := tr.Append(conversation.Turn{Question: "  ", Answer: "fine"}); err == nil {
		t.Fatal("expected error for blank question")
	}
	if err := tr.Append(conversation.Turn{Question: "fine", Answer: "\t"}); err == nil {
		t.Fatal("expected error for blank answer")
	}
	if tr.Len() != 0 {
		t.Fatalf("rejected turns were stored: %d", tr.Len())
	}
}

func TestAppendTrimsStoredValues(t *testing.T) {
	var tr conversation.Transcript
	if err := tr.Append(conversation.Turn{Question: "  Spaced question?  ", Answer: " spaced answer \n"}); err != nil {
		t.Fatalf("Append err: %v", err)
	}
	if tr.Turns[0].Question != "Spaced question?" || tr.Turns[0].Answer != "spaced answer" {
		t.Fatalf("values not trimmed: %+v", tr.Turns[0])
	}
}
