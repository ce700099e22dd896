package repository

import (
	"context"
	"time"

	"campusdesk/internal/catalog"
	"campusdesk/internal/models"
)

type TicketRepository interface {
	List(ctx context.Context, f TicketFilter) ([]models.Ticket, int, error)
	Get(ctx context.Context, id int) (*models.Ticket, error)
	Create(ctx context.Context, t *models.Ticket) error
	Update(ctx context.Context, t *models.Ticket) error
	Delete(ctx context.Context, id int) (bool, error)

	// Forward persists the ticket mutation and its outbox record in one
	// transaction.
	Forward(ctx context.Context, t *models.Ticket, ev OutboxEvent) error

	GroupStatuses(ctx context.Context, groupID int) ([]string, error)
	ArchiveGroup(ctx context.Context, groupID int) error

	CountByStatuses(ctx context.Context, statuses []string, inclusive bool) (int, error)
	CountResolvedSince(ctx context.Context, since time.Time) (int, error)
	CountByCategory(ctx context.Context) (map[string]int, error)
}

// OutboxEvent is the append-only record written alongside a state change,
// consumed out-of-band by notification delivery.
type OutboxEvent struct {
	TicketID  int
	EventType string
	Payload   any
}

type UserRepository interface {
	Create(ctx context.Context, email, name, role, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, string /*passwordHash*/, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, q, role string, active *bool, limit, offset int) ([]models.User, int, error)
	UpdateRole(ctx context.Context, id, role string) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
	FirstActiveAdminID(ctx context.Context) (string, error)
	// ScopedAdminID finds an active admin whose scope covers the given
	// category or location; empty string when none matches.
	ScopedAdminID(ctx context.Context, category, location string) (string, error)
}

type CommitteeRepository interface {
	List(ctx context.Context) ([]models.Committee, error)
	Get(ctx context.Context, id int) (*models.Committee, error)
	Create(ctx context.Context, c *models.Committee) error
	Members(ctx context.Context, committeeID int) ([]models.User, error)
	AddMember(ctx context.Context, committeeID int, userID string) error

	TagsForTicket(ctx context.Context, ticketID int) ([]models.CommitteeTag, error)
	TagExists(ctx context.Context, ticketID, committeeID int) (bool, error)
	AddTag(ctx context.Context, tag *models.CommitteeTag) error
	DeleteTagByID(ctx context.Context, ticketID, tagID int) (bool, error)
	DeleteTagByCommittee(ctx context.Context, ticketID, committeeID int) (bool, error)

	// MemberOfTagged reports whether the user belongs to (or heads) any
	// committee tagged on the ticket.
	MemberOfTagged(ctx context.Context, ticketID int, userID string) (bool, error)
}

type StatusRepository interface {
	Sync(ctx context.Context, entries []catalog.Entry) error
	Exists(ctx context.Context, value string) (bool, error)
	List(ctx context.Context) ([]models.Status, error)
}
