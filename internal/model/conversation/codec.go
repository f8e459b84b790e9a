package conversation

import (
	"fmt"
	"regexp"
	"strings"
)

// SessionStartedMarker leads the persisted text only on the first write
// of a session.
const SessionStartedMarker = "[SESSION STARTED]"

var questionPrefix = regexp.MustCompile(`(?m)^Q\d+:[ \t]?`)

// Encode renders the transcript in the persisted text format: numbered
// Q/A blocks separated by blank lines, status marker last.
func (t Transcript) Encode(status Status) string {
	blocks := make([]string, 0, len(t.Turns)+1)
	for i, turn := range t.Turns {
		blocks = append(blocks, fmt.Sprintf("Q%d: %s\nA: %s", i+1, turn.Question, turn.Answer))
	}
	blocks = append(blocks, status.Marker())
	return strings.Join(blocks, "\n\n")
}

// EncodeFirstWrite is Encode with the session-start marker prepended.
func (t Transcript) EncodeFirstWrite(status Status) string {
	return SessionStartedMarker + "\n\n" + t.Encode(status)
}

// Decode parses the persisted text format back into a transcript and its
// status. It strips an optional leading session-start marker and any
// trailing status marker, and recovers a first turn that lacks the "Q1:"
// prefix: text before the first explicit question marker that still
// carries an "A: " separator is treated as an implicit first turn.
// Records without a status marker decode as in progress.
func Decode(text string) (Transcript, Status) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, SessionStartedMarker) {
		s = strings.TrimSpace(strings.TrimPrefix(s, SessionStartedMarker))
	}

	status := StatusInProgress
	for _, candidate := range []Status{StatusCompleted, StatusAbandoned, StatusInProgress} {
		marker := candidate.Marker()
		if idx := strings.LastIndex(s, marker); idx >= 0 {
			status = candidate
			s = strings.TrimSpace(s[:idx] + s[idx+len(marker):])
			break
		}
	}

	var transcript Transcript
	locs := questionPrefix.FindAllStringIndex(s, -1)

	head := s
	if len(locs) > 0 {
		head = s[:locs[0][0]]
	}
	if question, answer, ok := splitTurn(head); ok {
		transcript.Turns = append(transcript.Turns, Turn{Question: question, Answer: answer})
	}

	for i, loc := range locs {
		end := len(s)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		block := s[loc[1]:end]
		if question, answer, ok := splitTurn(block); ok {
			transcript.Turns = append(transcript.Turns, Turn{Question: question, Answer: answer})
		}
	}

	return transcript, status
}

// splitTurn divides a block at its "A: " separator. Blocks without both
// a question and an answer are dropped rather than guessed at.
func splitTurn(block string) (question, answer string, ok bool) {
	block = strings.TrimSpace(block)
	if block == "" {
		return "", "", false
	}

	if strings.HasPrefix(block, "A: ") {
		return "", "", false
	}
	idx := strings.Index(block, "\nA: ")
	if idx < 0 {
		return "", "", false
	}

	question = strings.TrimSpace(block[:idx])
	answer = strings.TrimSpace(block[idx+len("\nA: "):])
	if question == "" || answer == "" {
		return "", "", false
	}
	return question, answer, true
}
