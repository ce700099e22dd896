package authz

import (
	"campusdesk/internal/apperr"
	"campusdesk/internal/models"
)

type Op string

const (
	OpView      Op = "view"
	OpComment   Op = "comment"
	OpSetStatus Op = "set_status"
	OpForward   Op = "forward"
	OpDelete    Op = "delete"
	OpTag       Op = "tag"
)

// Input carries every fact the gate needs. It is assembled by the service
// layer; the gate itself touches no storage, so decisions are a pure
// function of this struct.
type Input struct {
	ActorID string
	Level   Level

	TicketCreator string
	TicketStatus  string
	Category      string

	Op              Op
	RequestedStatus string // only for OpSetStatus

	TaggedMember    bool // actor belongs to a committee tagged on the ticket
	ScopeMatch      bool // admin's category/location scope covers the ticket
	AssignedToActor bool
}

// Decide returns nil when the operation is allowed, or a typed denial.
// Precedence: identity, super_admin, admin, committee, student.
func Decide(in Input) error {
	if in.ActorID == "" {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}

	switch in.Level {
	case LevelSuperAdmin:
		return nil

	case LevelAdmin:
		if in.Op == OpDelete {
			return apperr.New(apperr.Forbidden, "only super admins can delete tickets")
		}
		if !in.AssignedToActor && !in.ScopeMatch {
			return apperr.New(apperr.Forbidden, "ticket is outside your assigned scope")
		}
		return nil

	case LevelCommittee:
		owned := in.Category == models.CategoryCommittee && in.TicketCreator == in.ActorID
		if owned {
			return decideOwner(in)
		}
		if !in.TaggedMember {
			return apperr.New(apperr.Forbidden, "your committee is not tagged on this ticket")
		}
		switch in.Op {
		case OpView, OpComment:
			return nil
		case OpSetStatus:
			if in.RequestedStatus == models.StatusResolved || in.RequestedStatus == models.StatusClosed {
				return nil
			}
			return apperr.New(apperr.Forbidden, "Committee members can only close or resolve tickets")
		default:
			return apperr.New(apperr.Forbidden, "committee members cannot perform this action")
		}

	case LevelStudent:
		if in.TicketCreator != in.ActorID {
			return apperr.New(apperr.Forbidden, "you can only access your own tickets")
		}
		return decideOwner(in)
	}

	return apperr.New(apperr.Forbidden, "unknown role")
}

// decideOwner covers a creator acting on their own ticket (student, or a
// committee member on a Committee-category ticket they submitted).
func decideOwner(in Input) error {
	switch in.Op {
	case OpView:
		return nil
	case OpSetStatus:
		if in.RequestedStatus != models.StatusReopened {
			return apperr.New(apperr.Forbidden, "you can only reopen a resolved ticket")
		}
		if in.TicketStatus != models.StatusResolved && in.TicketStatus != models.StatusClosed {
			return apperr.New(apperr.Forbidden, "only resolved tickets can be reopened")
		}
		return nil
	case OpComment:
		if in.TicketStatus != models.StatusAwaitingStudent {
			return apperr.New(apperr.Forbidden, "comments are only accepted while a response is awaited")
		}
		return nil
	default:
		return apperr.New(apperr.Forbidden, "you cannot perform this action on your ticket")
	}
}
