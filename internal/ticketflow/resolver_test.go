package ticketflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusdesk/internal/apperr"
	"campusdesk/internal/authz"
	"campusdesk/internal/models"
)

func adminActor() Actor {
	return Actor{ID: "a1", Name: "Admin One", Role: models.RoleAdmin, Level: authz.LevelAdmin}
}

func studentActor() Actor {
	return Actor{ID: "s1", Name: "Student One", Role: models.RoleStudent, Level: authz.LevelStudent}
}

func TestApplyResolvedSetsTimestamp(t *testing.T) {
	now := time.Now()
	tk := &models.Ticket{ID: 1, Status: models.StatusOpen}

	changed := Apply(tk, adminActor(), models.StatusResolved, now)
	require.True(t, changed)
	require.Equal(t, models.StatusResolved, tk.Status)
	require.NotNil(t, tk.Metadata.ResolvedAt)
	require.True(t, tk.Metadata.ResolvedAt.Equal(now))
	require.Equal(t, "a1", tk.AssignedTo, "admin transition claims the ticket")
}

func TestApplyReopenIncrementsCount(t *testing.T) {
	now := time.Now()
	tk := &models.Ticket{ID: 1, Status: models.StatusResolved, Metadata: models.Metadata{ReopenCount: 2}}

	changed := Apply(tk, studentActor(), models.StatusReopened, now)
	require.True(t, changed)
	require.Equal(t, models.StatusReopened, tk.Status)
	require.Equal(t, 3, tk.Metadata.ReopenCount)
	require.NotNil(t, tk.Metadata.ReopenedAt)
	require.Empty(t, tk.AssignedTo, "non-admin transition leaves assignment alone")
}

func TestApplyIdempotentOnSameStatus(t *testing.T) {
	now := time.Now()
	tk := &models.Ticket{ID: 1, Status: models.StatusOpen}

	require.True(t, Apply(tk, adminActor(), models.StatusResolved, now))
	first := *tk.Metadata.ResolvedAt

	// Re-applying resolved is a no-op: no double timestamp, no counter bump.
	require.False(t, Apply(tk, adminActor(), models.StatusResolved, now.Add(time.Hour)))
	require.True(t, tk.Metadata.ResolvedAt.Equal(first))

	tk2 := &models.Ticket{ID: 2, Status: models.StatusReopened, Metadata: models.Metadata{ReopenCount: 1}}
	require.False(t, Apply(tk2, adminActor(), models.StatusReopened, now))
	require.Equal(t, 1, tk2.Metadata.ReopenCount)
}

func TestApplyOtherTransitionLeavesCounters(t *testing.T) {
	now := time.Now()
	tk := &models.Ticket{ID: 1, Status: models.StatusOpen, Metadata: models.Metadata{ReopenCount: 4}}

	require.True(t, Apply(tk, adminActor(), models.StatusInProgress, now))
	require.Equal(t, 4, tk.Metadata.ReopenCount)
	require.Nil(t, tk.Metadata.ResolvedAt)
}

func TestForward(t *testing.T) {
	now := time.Now()
	tk := &models.Ticket{ID: 1, Status: models.StatusOpen, AssignedTo: "a1"}

	require.NoError(t, Forward(tk, "head-42", now))
	require.Equal(t, models.StatusForwarded, tk.Status)
	require.Equal(t, "head-42", tk.AssignedTo)
	require.Equal(t, 1, tk.Metadata.ForwardCount)

	require.NoError(t, Forward(tk, "head-7", now))
	require.Equal(t, 2, tk.Metadata.ForwardCount)
}

func TestForwardRejectsResolved(t *testing.T) {
	tk := &models.Ticket{ID: 1, Status: models.StatusResolved}
	err := Forward(tk, "head-42", time.Now())
	require.Error(t, err)
	require.Equal(t, 400, apperr.Status(err))
	require.Equal(t, models.StatusResolved, tk.Status)
	require.Zero(t, tk.Metadata.ForwardCount)
}

func TestAppendComment(t *testing.T) {
	now := time.Now()
	tk := &models.Ticket{ID: 1, Status: models.StatusOpen}

	AppendComment(tk, "first", studentActor(), "", now)
	AppendComment(tk, "second", adminActor(), models.CommentInternal, now)

	require.Len(t, tk.Metadata.Comments, 2)
	require.Equal(t, "first", tk.Metadata.Comments[0].Text)
	require.Equal(t, models.CommentPublic, tk.Metadata.Comments[0].Type)
	require.Equal(t, models.RoleStudent, tk.Metadata.Comments[0].AuthorRole)
	require.Equal(t, models.CommentInternal, tk.Metadata.Comments[1].Type)
	require.Equal(t, models.StatusOpen, tk.Status, "comments never alter status")
}

func TestTerminal(t *testing.T) {
	require.True(t, Terminal(models.StatusResolved))
	require.True(t, Terminal(models.StatusClosed))
	require.False(t, Terminal(models.StatusOpen))
	require.False(t, Terminal(models.StatusForwarded))
}
