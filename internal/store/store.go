package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnavailable wraps every transport failure talking to the record
// store. Callers treat it as "no results / skipped write", never as a
// reason to fail the user-facing exchange.
var ErrUnavailable = errors.New("record store unavailable")

// Record is one persisted conversation row.
type Record struct {
	ID        string
	TeamID    string
	SessionID string
	Text      string
	CreatedAt time.Time
}

// Filter selects records by session, team and status. Zero-value fields
// are not constrained.
type Filter struct {
	SessionID        string
	ExcludeSessionID string
	TeamID           string
	InProgressOnly   bool
}

// Formula compiles the filter into the store's native query formula.
func (f Filter) Formula() string {
	var clauses []string
	if f.SessionID != "" {
		clauses = append(clauses, fmt.Sprintf(`{Session ID} = %s`, quote(f.SessionID)))
	}
	if f.ExcludeSessionID != "" {
		clauses = append(clauses, fmt.Sprintf(`{Session ID} != %s`, quote(f.ExcludeSessionID)))
	}
	if f.TeamID != "" {
		clauses = append(clauses, fmt.Sprintf(`{Team ID} = %s`, quote(f.TeamID)))
	}
	if f.InProgressOnly {
		clauses = append(clauses, `FIND("[CONVERSATION IN PROGRESS]", {Conversation}) > 0`)
	}

	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	default:
		return "AND(" + strings.Join(clauses, ", ") + ")"
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// Disabled satisfies Store when no store credentials are configured.
// Every call reports ErrUnavailable so callers take their degraded path
// and the chat keeps working without persistence.
type Disabled struct{}

func (Disabled) Find(context.Context, Filter) ([]Record, error) {
	return nil, fmt.Errorf("%w: not configured", ErrUnavailable)
}

func (Disabled) Create(context.Context, string, string, string) (Record, error) {
	return Record{}, fmt.Errorf("%w: not configured", ErrUnavailable)
}

func (Disabled) Update(context.Context, Record, string) error {
	return fmt.Errorf("%w: not configured", ErrUnavailable)
}

// Store is the persistence surface the services consume.
type Store interface {
	// Find lists records matching the filter, oldest first. Each call
	// re-queries the store.
	Find(ctx context.Context, filter Filter) ([]Record, error)
	// Create inserts a new record and returns it with its assigned id.
	Create(ctx context.Context, teamID, sessionID, text string) (Record, error)
	// Update rewrites the transcript text of an existing record.
	Update(ctx context.Context, rec Record, text string) error
}
