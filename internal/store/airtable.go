package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mehanizm/airtable"
)

// Field names in the conversations table.
const (
	fieldTeamID       = "Team ID"
	fieldSessionID    = "Session ID"
	fieldConversation = "Conversation"
)

// AirtableStore persists conversation records in an Airtable table.
type AirtableStore struct {
	table *airtable.Table
}

// NewAirtable builds a store over the given base and table.
func NewAirtable(apiKey, baseID, tableName string) *AirtableStore {
	client := airtable.NewClient(apiKey)
	return &AirtableStore{table: client.GetTable(baseID, tableName)}
}

// Find lists records matching the filter, sorted oldest first by the
// store-assigned creation time.
func (s *AirtableStore) Find(_ context.Context, filter Filter) ([]Record, error) {
	result, err := s.table.GetRecords().
		WithFilterFormula(filter.Formula()).
		ReturnFields(fieldTeamID, fieldSessionID, fieldConversation).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrUnavailable, err)
	}

	records := make([]Record, 0, len(result.Records))
	for _, raw := range result.Records {
		if raw == nil || raw.Deleted {
			continue
		}
		records = append(records, fromAirtable(raw))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// Create inserts one record. The team field is left blank for anonymous
// sessions.
func (s *AirtableStore) Create(_ context.Context, teamID, sessionID, text string) (Record, error) {
	fields := map[string]any{
		fieldSessionID:    sessionID,
		fieldConversation: text,
	}
	if teamID != "" {
		fields[fieldTeamID] = teamID
	}

	result, err := s.table.AddRecords(&airtable.Records{
		Records: []*airtable.Record{{Fields: fields}},
	})
	if err != nil {
		return Record{}, fmt.Errorf("%w: create: %v", ErrUnavailable, err)
	}
	if len(result.Records) == 0 {
		return Record{}, fmt.Errorf("%w: create returned no record", ErrUnavailable)
	}
	return fromAirtable(result.Records[0]), nil
}

// Update rewrites the record's fields with the new transcript text. All
// key fields are resent so a full update cannot blank them.
func (s *AirtableStore) Update(_ context.Context, rec Record, text string) error {
	fields := map[string]any{
		fieldSessionID:    rec.SessionID,
		fieldConversation: text,
	}
	if rec.TeamID != "" {
		fields[fieldTeamID] = rec.TeamID
	}

	_, err := s.table.UpdateRecords(&airtable.Records{
		Records: []*airtable.Record{{ID: rec.ID, Fields: fields}},
	})
	if err != nil {
		return fmt.Errorf("%w: update: %v", ErrUnavailable, err)
	}
	return nil
}

func fromAirtable(raw *airtable.Record) Record {
	rec := Record{
		ID:        raw.ID,
		TeamID:    stringField(raw.Fields, fieldTeamID),
		SessionID: stringField(raw.Fields, fieldSessionID),
		Text:      stringField(raw.Fields, fieldConversation),
	}
	if created, err := time.Parse(time.RFC3339, raw.CreatedTime); err == nil {
		rec.CreatedAt = created
	}
	return rec
}

func stringField(fields map[string]any, name string) string {
	value, ok := fields[name].(string)
	if !ok {
		return ""
	}
	return value
}
