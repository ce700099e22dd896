package models

import "time"

type Ticket struct {
	ID              int        `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"` // Hostel | College | Committee | ...
	Subcategory     string     `json:"subcategory"`
	Location        string     `json:"location"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"statusLabel"`
	BadgeColor      string     `json:"badgeColor"`
	CreatedBy       string     `json:"createdBy"`
	AssignedTo      string     `json:"assignedTo"`
	GroupID         *int       `json:"groupId,omitempty"`
	EscalationLevel int        `json:"escalationLevel"`
	DueAt           *time.Time `json:"dueAt,omitempty"`
	Metadata        Metadata   `json:"metadata"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	// Joined display fields.
	CreatorName   string `json:"creatorName,omitempty"`
	CreatorEmail  string `json:"creatorEmail,omitempty"`
	AssigneeName  string `json:"assigneeName,omitempty"`
	AssigneeEmail string `json:"assigneeEmail,omitempty"`
}

// Metadata is the ticket's JSONB document. Comments are append-only;
// counters and timestamps are maintained by the transition resolver.
type Metadata struct {
	Comments       []Comment  `json:"comments,omitempty"`
	ReopenCount    int        `json:"reopen_count,omitempty"`
	ForwardCount   int        `json:"forward_count,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ReopenedAt     *time.Time `json:"reopened_at,omitempty"`
	SlackChannel   string     `json:"slack_channel,omitempty"`
	SlackThreadTS  string     `json:"slack_thread_ts,omitempty"`
	EmailMessageID string     `json:"email_message_id,omitempty"`
	TATDue         *time.Time `json:"tat_due,omitempty"`
}

const (
	CommentPublic   = "public"
	CommentInternal = "internal" // super-admin-only notes
)

type Comment struct {
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	AuthorRole string    `json:"authorRole"`
	Source     string    `json:"source"` // web | email | slack
	Type       string    `json:"type"`   // public | internal
	CreatedAt  time.Time `json:"createdAt"`
}

type Status struct {
	ID         int    `json:"id"`
	Value      string `json:"value"`
	Label      string `json:"label"`
	BadgeColor string `json:"badgeColor"`
}

type TicketGroup struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"createdAt"`
}

// Status enumeration values. The catalog file can relabel or recolor these
// but the deployed member set is fixed.
const (
	StatusOpen             = "open"
	StatusReopened         = "reopened"
	StatusInProgress       = "in_progress"
	StatusAwaitingStudent  = "awaiting_student_response"
	StatusForwarded        = "forwarded"
	StatusResolved         = "resolved"
	StatusClosed           = "closed"
)

const (
	RoleStudent    = "student"
	RoleCommittee  = "committee"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

const CategoryCommittee = "Committee"
