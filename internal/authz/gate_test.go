package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"campusdesk/internal/apperr"
	"campusdesk/internal/models"
)

func TestLevelOrdering(t *testing.T) {
	require.True(t, LevelFor(models.RoleSuperAdmin) > LevelFor(models.RoleAdmin))
	require.True(t, LevelFor(models.RoleAdmin) > LevelFor(models.RoleCommittee))
	require.True(t, LevelFor(models.RoleCommittee) > LevelFor(models.RoleStudent))
	require.Equal(t, LevelNone, LevelFor("intruder"))

	require.True(t, LevelFor(models.RoleSuperAdmin).AdminLevel())
	require.True(t, LevelFor(models.RoleAdmin).AdminLevel())
	require.False(t, LevelFor(models.RoleCommittee).AdminLevel())
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		in         Input
		wantStatus int // 0 = allowed
	}{
		{
			name:       "no identity",
			in:         Input{Op: OpView},
			wantStatus: 401,
		},
		{
			name: "super admin can delete",
			in:   Input{ActorID: "u1", Level: LevelSuperAdmin, Op: OpDelete},
		},
		{
			name:       "plain admin cannot delete",
			in:         Input{ActorID: "u1", Level: LevelAdmin, Op: OpDelete, AssignedToActor: true},
			wantStatus: 403,
		},
		{
			name: "admin assigned sets any status",
			in: Input{
				ActorID: "u1", Level: LevelAdmin, Op: OpSetStatus,
				RequestedStatus: models.StatusInProgress, AssignedToActor: true,
			},
		},
		{
			name: "admin scope match without assignment",
			in: Input{
				ActorID: "u1", Level: LevelAdmin, Op: OpSetStatus,
				RequestedStatus: models.StatusClosed, ScopeMatch: true,
			},
		},
		{
			name: "admin outside scope",
			in: Input{
				ActorID: "u1", Level: LevelAdmin, Op: OpView,
			},
			wantStatus: 403,
		},
		{
			name: "student views own ticket",
			in: Input{
				ActorID: "s1", Level: LevelStudent, Op: OpView, TicketCreator: "s1",
			},
		},
		{
			name: "student views foreign ticket",
			in: Input{
				ActorID: "s1", Level: LevelStudent, Op: OpView, TicketCreator: "s2",
			},
			wantStatus: 403,
		},
		{
			name: "student reopens own resolved ticket",
			in: Input{
				ActorID: "s1", Level: LevelStudent, Op: OpSetStatus,
				TicketCreator: "s1", TicketStatus: models.StatusResolved,
				RequestedStatus: models.StatusReopened,
			},
		},
		{
			name: "student reopens own closed ticket",
			in: Input{
				ActorID: "s1", Level: LevelStudent, Op: OpSetStatus,
				TicketCreator: "s1", TicketStatus: models.StatusClosed,
				RequestedStatus: models.StatusReopened,
			},
		},
		{
			name: "student cannot reopen an open ticket",
			in: Input{
				ActorID: "s1", Level: LevelStudent, Op: OpSetStatus,
				TicketCreator: "s1", TicketStatus: models.StatusOpen,
				RequestedStatus: models.StatusReopened,
			},
			wantStatus: 403,
		},
		{
			name: "student cannot set arbitrary status",
			in: Input{
				ActorID: "s1", Level: LevelStudent, Op: OpSetStatus,
				TicketCreator: "s1", TicketStatus: models.StatusResolved,
				RequestedStatus: models.StatusInProgress,
			},
			wantStatus: 403,
		},
		{
			name: "student comments while awaiting response",
			in: Input{
				ActorID: "s1", Level: LevelStudent, Op: OpComment,
				TicketCreator: "s1", TicketStatus: models.StatusAwaitingStudent,
			},
		},
		{
			name: "student comment rejected otherwise",
			in: Input{
				ActorID: "s1", Level: LevelStudent, Op: OpComment,
				TicketCreator: "s1", TicketStatus: models.StatusInProgress,
			},
			wantStatus: 403,
		},
		{
			name: "tagged committee resolves",
			in: Input{
				ActorID: "c1", Level: LevelCommittee, Op: OpSetStatus,
				TicketCreator: "s1", TicketStatus: models.StatusOpen,
				RequestedStatus: models.StatusResolved, TaggedMember: true,
			},
		},
		{
			name: "tagged committee closes",
			in: Input{
				ActorID: "c1", Level: LevelCommittee, Op: OpSetStatus,
				TicketCreator: "s1", TicketStatus: models.StatusOpen,
				RequestedStatus: models.StatusClosed, TaggedMember: true,
			},
		},
		{
			name: "tagged committee cannot set in_progress",
			in: Input{
				ActorID: "c1", Level: LevelCommittee, Op: OpSetStatus,
				TicketCreator: "s1", TicketStatus: models.StatusOpen,
				RequestedStatus: models.StatusInProgress, TaggedMember: true,
			},
			wantStatus: 403,
		},
		{
			name: "untagged committee denied",
			in: Input{
				ActorID: "c1", Level: LevelCommittee, Op: OpView, TicketCreator: "s1",
			},
			wantStatus: 403,
		},
		{
			name: "committee owner views own committee ticket",
			in: Input{
				ActorID: "c1", Level: LevelCommittee, Op: OpView,
				TicketCreator: "c1", Category: models.CategoryCommittee,
			},
		},
		{
			name: "committee cannot forward",
			in: Input{
				ActorID: "c1", Level: LevelCommittee, Op: OpForward,
				TicketCreator: "s1", TaggedMember: true,
			},
			wantStatus: 403,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Decide(tt.in)
			if tt.wantStatus == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, tt.wantStatus, apperr.Status(err))
		})
	}
}

func TestDecideCommitteeDenialMessage(t *testing.T) {
	err := Decide(Input{
		ActorID: "c1", Level: LevelCommittee, Op: OpSetStatus,
		TicketCreator: "s1", TicketStatus: models.StatusOpen,
		RequestedStatus: models.StatusInProgress, TaggedMember: true,
	})
	require.EqualError(t, err, "Committee members can only close or resolve tickets")
}
