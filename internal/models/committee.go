package models

import "time"

type Committee struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	HeadID    string    `json:"headId"`
	HeadName  string    `json:"headName,omitempty"`
	HeadEmail string    `json:"headEmail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommitteeTag links a ticket to a committee; its existence grants the
// committee's members transition rights on the ticket.
type CommitteeTag struct {
	ID          int        `json:"id"`
	TicketID    int        `json:"ticketId"`
	CommitteeID int        `json:"committeeId"`
	TaggedBy    string     `json:"taggedBy"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Committee   *Committee `json:"committee,omitempty"`
}
