package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"campusdesk/internal/apperr"
	"campusdesk/internal/authz"
	"campusdesk/internal/models"
	"campusdesk/internal/monitoring"
	"campusdesk/internal/notify"
	"campusdesk/internal/repository"
	"campusdesk/internal/ticketflow"
)

type Notifier interface {
	StatusChanged(ctx context.Context, ev notify.Event)
}

// TicketService runs the full lifecycle path: gate, resolver, transactional
// write, group archival, best-effort fan-out.
type TicketService struct {
	log        zerolog.Logger
	tickets    repository.TicketRepository
	users      repository.UserRepository
	committees repository.CommitteeRepository
	statuses   repository.StatusRepository
	notifier   Notifier
}

func NewTicketService(
	log zerolog.Logger,
	tickets repository.TicketRepository,
	users repository.UserRepository,
	committees repository.CommitteeRepository,
	statuses repository.StatusRepository,
	notifier Notifier,
) *TicketService {
	return &TicketService{
		log: log, tickets: tickets, users: users,
		committees: committees, statuses: statuses, notifier: notifier,
	}
}

func (s *TicketService) actor(ctx context.Context, actorID string) (*models.User, authz.Level, error) {
	if actorID == "" {
		return nil, authz.LevelNone, apperr.New(apperr.Unauthorized, "authentication required")
	}
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, authz.LevelNone, err
	}
	if u == nil {
		return nil, authz.LevelNone, apperr.New(apperr.NotFound, "user not found")
	}
	return u, authz.LevelFor(u.Role), nil
}

func (s *TicketService) loadTicket(ctx context.Context, id int) (*models.Ticket, error) {
	t, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.New(apperr.NotFound, "ticket not found")
	}
	return t, nil
}

func (s *TicketService) gateInput(ctx context.Context, actor *models.User, level authz.Level, t *models.Ticket, op authz.Op, reqStatus string) (authz.Input, error) {
	in := authz.Input{
		ActorID:         actor.ID,
		Level:           level,
		TicketCreator:   t.CreatedBy,
		TicketStatus:    t.Status,
		Category:        t.Category,
		Op:              op,
		RequestedStatus: reqStatus,
		AssignedToActor: t.AssignedTo == actor.ID,
	}
	switch level {
	case authz.LevelCommittee:
		tagged, err := s.committees.MemberOfTagged(ctx, t.ID, actor.ID)
		if err != nil {
			return in, err
		}
		in.TaggedMember = tagged
	case authz.LevelAdmin:
		in.ScopeMatch = (actor.ScopeCategory != "" && actor.ScopeCategory == t.Category) ||
			(actor.ScopeLocation != "" && actor.ScopeLocation == t.Location)
	}
	return in, nil
}

// -----------------------------------------------------------------------------
// Read paths
// -----------------------------------------------------------------------------

func (s *TicketService) Get(ctx context.Context, actorID string, ticketID int) (*models.Ticket, error) {
	actor, level, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	t, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	in, err := s.gateInput(ctx, actor, level, t, authz.OpView, "")
	if err != nil {
		return nil, err
	}
	if err := authz.Decide(in); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TicketService) List(ctx context.Context, actorID string, f repository.TicketFilter) ([]models.Ticket, int, error) {
	actor, _, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	f.ViewerID = actor.ID
	f.ViewerRole = actor.Role
	f.ViewerScopeCategory = actor.ScopeCategory
	f.ViewerScopeLocation = actor.ScopeLocation
	return s.tickets.List(ctx, f)
}

// -----------------------------------------------------------------------------
// Create
// -----------------------------------------------------------------------------

type CreateInput struct {
	Title       string
	Description string
	Category    string
	Subcategory string
	Location    string
}

const defaultTAT = 7 * 24 * time.Hour

func (s *TicketService) Create(ctx context.Context, actorID string, in CreateInput) (*models.Ticket, error) {
	actor, _, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperr.New(apperr.Validation, "title is required")
	}

	// Auto-assignment: an admin whose scope covers the ticket, otherwise
	// the first active admin.
	assignee, err := s.users.ScopedAdminID(ctx, in.Category, in.Location)
	if err != nil {
		return nil, err
	}
	if assignee == "" {
		if assignee, err = s.users.FirstActiveAdminID(ctx); err != nil {
			return nil, err
		}
	}

	due := time.Now().Add(defaultTAT)
	t := &models.Ticket{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Subcategory: strings.TrimSpace(in.Subcategory),
		Location:    strings.TrimSpace(in.Location),
		Status:      models.StatusOpen,
		CreatedBy:   actor.ID,
		AssignedTo:  assignee,
		DueAt:       &due,
		Metadata:    models.Metadata{TATDue: &due},
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, err
	}
	return s.loadTicket(ctx, t.ID)
}

// -----------------------------------------------------------------------------
// Status transition + comment
// -----------------------------------------------------------------------------

func (s *TicketService) SetStatus(ctx context.Context, actorID string, ticketID int, status, comment, commentType string) (*models.Ticket, error) {
	actor, level, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	status = strings.TrimSpace(status)
	comment = strings.TrimSpace(comment)
	if status == "" && comment == "" {
		return nil, apperr.New(apperr.Validation, "status or comment is required")
	}
	if status != "" {
		ok, err := s.statuses.Exists(ctx, status)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Newf(apperr.Validation, "unknown status %q", status)
		}
	}

	t, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	op := authz.OpComment
	if status != "" {
		op = authz.OpSetStatus
	}
	in, err := s.gateInput(ctx, actor, level, t, op, status)
	if err != nil {
		return nil, err
	}
	if err := authz.Decide(in); err != nil {
		return nil, err
	}

	now := time.Now()
	flowActor := ticketflow.Actor{ID: actor.ID, Name: actor.Name, Role: actor.Role, Level: level}
	prev := t.Status

	changed := false
	if status != "" {
		changed = ticketflow.Apply(t, flowActor, status, now)
	}
	if comment != "" {
		ticketflow.AppendComment(t, comment, flowActor, commentType, now)
	}
	if !changed && comment == "" {
		// Re-applying the current status: nothing to persist, nothing to
		// notify.
		return t, nil
	}

	if err := s.tickets.Update(ctx, t); err != nil {
		return nil, err
	}

	if changed {
		monitoring.TicketTransitions.WithLabelValues(t.Status).Inc()
		s.afterTransition(ctx, t, prev, actor)
	}

	return s.loadTicket(ctx, t.ID)
}

// afterTransition runs the post-commit side effects: group archival and
// notification fan-out. Neither can fail the request.
func (s *TicketService) afterTransition(ctx context.Context, t *models.Ticket, prevStatus string, actor *models.User) {
	if ticketflow.Terminal(t.Status) && t.GroupID != nil {
		s.maybeArchiveGroup(ctx, *t.GroupID)
	}
	if s.notifier != nil {
		s.notifier.StatusChanged(ctx, notify.Event{
			Ticket:     *t,
			PrevStatus: prevStatus,
			NewStatus:  t.Status,
			ActorName:  actor.Name,
			ActorRole:  actor.Role,
		})
	}
}

func (s *TicketService) maybeArchiveGroup(ctx context.Context, groupID int) {
	statuses, err := s.tickets.GroupStatuses(ctx, groupID)
	if err != nil {
		s.log.Error().Err(err).Int("group", groupID).Msg("group status check failed")
		return
	}
	for _, v := range statuses {
		if !ticketflow.Terminal(v) {
			return
		}
	}
	if err := s.tickets.ArchiveGroup(ctx, groupID); err != nil {
		s.log.Error().Err(err).Int("group", groupID).Msg("group archive failed")
	}
}

// -----------------------------------------------------------------------------
// Forward
// -----------------------------------------------------------------------------

func (s *TicketService) Forward(ctx context.Context, actorID string, ticketID, committeeID int, reason string) (*models.Ticket, *models.Committee, error) {
	actor, level, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	in, err := s.gateInput(ctx, actor, level, t, authz.OpForward, "")
	if err != nil {
		return nil, nil, err
	}
	if err := authz.Decide(in); err != nil {
		return nil, nil, err
	}

	c, err := s.committees.Get(ctx, committeeID)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, apperr.New(apperr.NotFound, "committee not found")
	}

	now := time.Now()
	prev := t.Status
	if err := ticketflow.Forward(t, c.HeadID, now); err != nil {
		return nil, nil, err
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		flowActor := ticketflow.Actor{ID: actor.ID, Name: actor.Name, Role: actor.Role, Level: level}
		ticketflow.AppendComment(t, fmt.Sprintf("Forwarded to %s: %s", c.Name, reason), flowActor, models.CommentInternal, now)
	}

	ev := repository.OutboxEvent{
		TicketID:  t.ID,
		EventType: "ticket.forwarded",
		Payload: map[string]any{
			"committee_id": c.ID,
			"head_id":      c.HeadID,
			"reason":       reason,
			"actor_id":     actor.ID,
		},
	}
	if err := s.tickets.Forward(ctx, t, ev); err != nil {
		return nil, nil, err
	}

	monitoring.TicketTransitions.WithLabelValues(t.Status).Inc()
	s.afterTransition(ctx, t, prev, actor)

	updated, err := s.loadTicket(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	return updated, c, nil
}

// -----------------------------------------------------------------------------
// Delete
// -----------------------------------------------------------------------------

func (s *TicketService) Delete(ctx context.Context, actorID string, ticketID int) error {
	actor, level, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	t, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	in, err := s.gateInput(ctx, actor, level, t, authz.OpDelete, "")
	if err != nil {
		return err
	}
	if err := authz.Decide(in); err != nil {
		return err
	}

	ok, err := s.tickets.Delete(ctx, ticketID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.NotFound, "ticket not found")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Committee tags
// -----------------------------------------------------------------------------

func (s *TicketService) Tags(ctx context.Context, actorID string, ticketID int) ([]models.CommitteeTag, error) {
	actor, level, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	t, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	in, err := s.gateInput(ctx, actor, level, t, authz.OpView, "")
	if err != nil {
		return nil, err
	}
	if err := authz.Decide(in); err != nil {
		return nil, err
	}
	return s.committees.TagsForTicket(ctx, ticketID)
}

func (s *TicketService) AddTag(ctx context.Context, actorID string, ticketID, committeeID int, reason string) (*models.CommitteeTag, error) {
	actor, level, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	t, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	in, err := s.gateInput(ctx, actor, level, t, authz.OpTag, "")
	if err != nil {
		return nil, err
	}
	if err := authz.Decide(in); err != nil {
		return nil, err
	}

	c, err := s.committees.Get(ctx, committeeID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.New(apperr.NotFound, "committee not found")
	}
	exists, err := s.committees.TagExists(ctx, ticketID, committeeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.New(apperr.Validation, "committee is already tagged on this ticket")
	}

	tag := &models.CommitteeTag{
		TicketID:    ticketID,
		CommitteeID: committeeID,
		TaggedBy:    actor.ID,
		Reason:      strings.TrimSpace(reason),
	}
	if err := s.committees.AddTag(ctx, tag); err != nil {
		return nil, err
	}
	tag.Committee = c
	return tag, nil
}

func (s *TicketService) DeleteTag(ctx context.Context, actorID string, ticketID int, tagID, committeeID int) error {
	actor, level, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	t, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	in, err := s.gateInput(ctx, actor, level, t, authz.OpTag, "")
	if err != nil {
		return err
	}
	if err := authz.Decide(in); err != nil {
		return err
	}

	var ok bool
	switch {
	case tagID > 0:
		ok, err = s.committees.DeleteTagByID(ctx, ticketID, tagID)
	case committeeID > 0:
		ok, err = s.committees.DeleteTagByCommittee(ctx, ticketID, committeeID)
	default:
		return apperr.New(apperr.Validation, "tagId or committeeId is required")
	}
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.NotFound, "tag not found")
	}
	return nil
}
