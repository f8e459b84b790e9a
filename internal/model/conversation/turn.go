package conversation

import (
	"errors"
	"strings"
)

var ErrEmptyTurn = errors.New("turn question and answer must be non-empty")

// Turn is one bot-question/user-answer pair. Immutable once appended.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Transcript is the ordered, append-only list of turns for one logical
// conversation. Order is chronological and never rearranged.
type Transcript struct {
	Turns []Turn
}

// Append adds a turn at the end. Turns with an empty question or answer
// after trimming are rejected; values are stored trimmed.
func (t *Transcript) Append(turn Turn) error {
	question := strings.TrimSpace(turn.Question)
	answer := strings.TrimSpace(turn.Answer)
	if question == "" || answer == "" {
		return ErrEmptyTurn
	}
	t.Turns = append(t.Turns, Turn{Question: question, Answer: answer})
	return nil
}

// Len reports the number of turns.
func (t Transcript) Len() int {
	return len(t.Turns)
}

// Status tracks where a persisted conversation stands.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusAbandoned  Status = "ABANDONED"
)

// Marker returns the bracketed token appended to persisted transcripts.
func (s Status) Marker() string {
	switch s {
	case StatusCompleted:
		return "[CONVERSATION COMPLETED]"
	case StatusAbandoned:
		return "[CONVERSATION ABANDONED]"
	default:
		return "[CONVERSATION IN PROGRESS]"
	}
}
