// Package reconcile reconstructs the single logically-current transcript
// of a session from whatever records the store holds for it, and decides
// whether the next persist should create or update.
package reconcile

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/pitchbot/feedback-relay/internal/model/conversation"
	"github.com/pitchbot/feedback-relay/internal/store"
)

// maxPriorRecords caps how many past conversations feed cross-session
// context for a returning team.
const maxPriorRecords = 10

// Result is the reconciled view of a session.
type Result struct {
	// Prior holds cross-session context turns for the team, oldest
	// session first. Always empty for anonymous sessions.
	Prior []conversation.Turn
	// Current is the authoritative in-progress record for this exact
	// session, nil when none exists.
	Current *store.Record
	// IsNew reports that no in-progress record exists for the session
	// yet, so the next persist must create one.
	IsNew bool
}

// Reconciler merges the store's view of a session into one transcript.
type Reconciler struct {
	store store.Store
}

// New builds a reconciler over the given store.
func New(st store.Store) *Reconciler {
	return &Reconciler{store: st}
}

// Reconcile inspects the store for the session. On a session start
// (no incoming turns yet) any lingering in-progress records for the same
// session id are first marked abandoned, so a reused id never leaves two
// live transcripts behind. Store failures degrade to an empty, new-session
// result; they never propagate.
//
// Concurrent session starts racing each other can still both observe "no
// record" and create duplicates; the store offers no conditional write,
// and the newest record stays authoritative on later exchanges.
func (r *Reconciler) Reconcile(ctx context.Context, teamID, sessionID string, incoming conversation.Transcript) Result {
	if incoming.Len() == 0 {
		r.abandonStale(ctx, sessionID)
	}

	result := Result{
		IsNew: true,
		Prior: r.priorContext(ctx, teamID, sessionID),
	}

	records, err := r.store.Find(ctx, store.Filter{SessionID: sessionID, InProgressOnly: true})
	if err != nil {
		log.Printf("[reconcile] current record lookup failed for session %s, assuming new: %v", sessionID, err)
		return result
	}
	if len(records) > 0 {
		// Most recently created record wins; older duplicates stay as
		// historical context and are never overwritten here.
		rec := records[len(records)-1]
		result.Current = &rec
		result.IsNew = false
	}
	return result
}

// abandonStale transitions every in-progress record for the session to
// abandoned. Best effort: a failed update is logged and skipped.
func (r *Reconciler) abandonStale(ctx context.Context, sessionID string) {
	records, err := r.store.Find(ctx, store.Filter{SessionID: sessionID, InProgressOnly: true})
	if err != nil {
		log.Printf("[reconcile] stale record lookup failed for session %s: %v", sessionID, err)
		return
	}
	for _, rec := range records {
		text := strings.ReplaceAll(rec.Text,
			conversation.StatusInProgress.Marker(),
			conversation.StatusAbandoned.Marker())
		if err := r.store.Update(ctx, rec, text); err != nil {
			log.Printf("[reconcile] failed to abandon record %s: %v", rec.ID, err)
			continue
		}
		log.Printf("[reconcile] marked stale record %s for session %s as abandoned", rec.ID, sessionID)
	}
}

// priorContext collects the team's past conversations from other
// sessions, oldest first, decoded and concatenated.
func (r *Reconciler) priorContext(ctx context.Context, teamID, sessionID string) []conversation.Turn {
	if teamID == "" {
		// Anonymous sessions never receive cross-session memory.
		return nil
	}

	records, err := r.store.Find(ctx, store.Filter{TeamID: teamID, ExcludeSessionID: sessionID})
	if err != nil {
		log.Printf("[reconcile] prior context lookup failed for team %s: %v", teamID, err)
		return nil
	}
	if len(records) == 0 {
		return nil
	}
	if len(records) > maxPriorRecords {
		records = records[len(records)-maxPriorRecords:]
	}

	var turns []conversation.Turn
	for _, rec := range records {
		decoded, _ := conversation.Decode(rec.Text)
		turns = append(turns, decoded.Turns...)
	}
	log.Printf("[reconcile] found %d past conversation(s) for team %s, latest at %s",
		len(records), teamID, records[len(records)-1].CreatedAt.Format(time.RFC3339))
	return turns
}
