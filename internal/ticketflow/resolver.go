// Package ticketflow computes the persisted effects of ticket lifecycle
// operations. It is pure: callers load the ticket, apply a transition and
// write the result back; authorization happens before this layer.
package ticketflow

import (
	"time"

	"campusdesk/internal/apperr"
	"campusdesk/internal/authz"
	"campusdesk/internal/models"
)

type Actor struct {
	ID    string
	Name  string
	Role  string
	Level authz.Level
}

// Apply transitions t to status and maintains the metadata counters and
// timestamps. Re-applying the current status is a no-op; this keeps
// reopen_count and resolved_at stable when a client retries.
func Apply(t *models.Ticket, actor Actor, status string, now time.Time) bool {
	if t.Status == status {
		return false
	}

	t.Status = status
	switch status {
	case models.StatusResolved:
		ts := now
		t.Metadata.ResolvedAt = &ts
	case models.StatusReopened:
		ts := now
		t.Metadata.ReopenedAt = &ts
		t.Metadata.ReopenCount++
	}

	// Whoever last touched a ticket owns it.
	if actor.Level.AdminLevel() {
		t.AssignedTo = actor.ID
	}
	t.UpdatedAt = now
	return true
}

// Forward moves t to forwarded and hands it to the target committee's head.
// A resolved ticket cannot be forwarded.
func Forward(t *models.Ticket, headID string, now time.Time) error {
	if t.Status == models.StatusResolved {
		return apperr.New(apperr.Validation, "cannot forward a resolved ticket")
	}
	t.Status = models.StatusForwarded
	t.AssignedTo = headID
	// forward_count is informational only; nothing reads it back to block
	// forwarding loops.
	t.Metadata.ForwardCount++
	t.UpdatedAt = now
	return nil
}

// AppendComment adds a comment record to the metadata document. Comments
// are append-only and never alter status.
func AppendComment(t *models.Ticket, text string, actor Actor, commentType string, now time.Time) {
	if commentType != models.CommentInternal {
		commentType = models.CommentPublic
	}
	t.Metadata.Comments = append(t.Metadata.Comments, models.Comment{
		Text:       text,
		AuthorName: actor.Name,
		AuthorRole: actor.Role,
		Source:     "web",
		Type:       commentType,
		CreatedAt:  now,
	})
	t.UpdatedAt = now
}

// Terminal reports whether a status counts as closed, for reopen
// eligibility and group archival.
func Terminal(status string) bool {
	return status == models.StatusResolved || status == models.StatusClosed
}
