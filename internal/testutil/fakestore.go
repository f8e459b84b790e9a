// Package testutil provides in-memory fakes shared by service tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pitchbot/feedback-relay/internal/store"
)

// FakeStore is an in-memory store.Store with the same filter semantics
// as the real adapter.
type FakeStore struct {
	mu sync.Mutex

	Records []store.Record

	FindErr   error
	CreateErr error
	UpdateErr error

	FindCalls   int
	CreateCalls int
	UpdateCalls int

	clock time.Time
}

// NewFakeStore returns an empty fake store.
func NewFakeStore() *FakeStore {
	return &FakeStore{clock: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

// Seed inserts a record directly, advancing the fake creation clock.
func (f *FakeStore) Seed(teamID, sessionID, text string) store.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(teamID, sessionID, text)
}

func (f *FakeStore) insert(teamID, sessionID, text string) store.Record {
	f.clock = f.clock.Add(time.Minute)
	rec := store.Record{
		ID:        fmt.Sprintf("rec%d", len(f.Records)+1),
		TeamID:    teamID,
		SessionID: sessionID,
		Text:      text,
		CreatedAt: f.clock,
	}
	f.Records = append(f.Records, rec)
	return rec
}

func (f *FakeStore) Find(_ context.Context, filter store.Filter) ([]store.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FindCalls++
	if f.FindErr != nil {
		return nil, f.FindErr
	}

	var matched []store.Record
	for _, rec := range f.Records {
		if filter.SessionID != "" && rec.SessionID != filter.SessionID {
			continue
		}
		if filter.ExcludeSessionID != "" && rec.SessionID == filter.ExcludeSessionID {
			continue
		}
		if filter.TeamID != "" && rec.TeamID != filter.TeamID {
			continue
		}
		if filter.InProgressOnly && !strings.Contains(rec.Text, "[CONVERSATION IN PROGRESS]") {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

func (f *FakeStore) Create(_ context.Context, teamID, sessionID, text string) (store.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateErr != nil {
		return store.Record{}, f.CreateErr
	}
	return f.insert(teamID, sessionID, text), nil
}

func (f *FakeStore) Update(_ context.Context, rec store.Record, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	for i := range f.Records {
		if f.Records[i].ID == rec.ID {
			f.Records[i].Text = text
			return nil
		}
	}
	return fmt.Errorf("record %s not found", rec.ID)
}

// BySession returns the stored records for a session id, oldest first.
func (f *FakeStore) BySession(sessionID string) []store.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Record
	for _, rec := range f.Records {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out
}
