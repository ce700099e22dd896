// Package notify is the best-effort fan-out fired after a committed ticket
// transition. Delivery failure never rolls back or surfaces to the caller;
// it is logged and swallowed.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"campusdesk/internal/models"
	"campusdesk/internal/monitoring"
	"campusdesk/internal/ticketflow"
)

type Event struct {
	Ticket     models.Ticket
	PrevStatus string
	NewStatus  string
	ActorName  string
	ActorRole  string
}

type ChatSender interface {
	Post(ctx context.Context, text, threadTS string) error
}

type MailSender interface {
	Send(to, subject, body, inReplyTo string) error
}

type Service struct {
	log  zerolog.Logger
	chat ChatSender // nil when no webhook configured
	mail MailSender // nil when no SMTP configured
}

func New(log zerolog.Logger, chat ChatSender, mail MailSender) *Service {
	return &Service{log: log, chat: chat, mail: mail}
}

// StatusChanged dispatches chat and email notifications for a transition
// that already committed.
func (s *Service) StatusChanged(ctx context.Context, ev Event) {
	if s == nil {
		return
	}
	s.notifyChat(ctx, ev)
	s.notifyEmail(ev)
}

func (s *Service) notifyChat(ctx context.Context, ev Event) {
	if s.chat == nil {
		return
	}
	switch ev.NewStatus {
	case models.StatusResolved:
		text := fmt.Sprintf(":white_check_mark: Ticket #%d resolved: %s", ev.Ticket.ID, ev.Ticket.Title)
		if err := s.chat.Post(ctx, text, ev.Ticket.Metadata.SlackThreadTS); err != nil {
			monitoring.NotifyFailures.WithLabelValues("chat").Inc()
			s.log.Error().Err(err).Int("ticket", ev.Ticket.ID).Msg("chat notify failed")
		}
	case models.StatusReopened:
		// Threaded reply only when the ticket has a prior chat thread.
		ts := ev.Ticket.Metadata.SlackThreadTS
		if ts == "" || !ticketflow.Terminal(ev.PrevStatus) {
			return
		}
		if err := s.chat.Post(ctx, reopenText(ev), ts); err != nil {
			monitoring.NotifyFailures.WithLabelValues("chat").Inc()
			s.log.Error().Err(err).Int("ticket", ev.Ticket.ID).Msg("chat notify failed")
		}
	}
}

func reopenText(ev Event) string {
	switch ev.ActorRole {
	case models.RoleAdmin, models.RoleSuperAdmin:
		return fmt.Sprintf(":arrows_counterclockwise: Ticket #%d was reopened by the admin team (%s).", ev.Ticket.ID, ev.ActorName)
	case models.RoleCommittee:
		return fmt.Sprintf(":arrows_counterclockwise: Ticket #%d was reopened by committee member %s.", ev.Ticket.ID, ev.ActorName)
	default:
		return fmt.Sprintf(":arrows_counterclockwise: Ticket #%d was reopened by the student.", ev.Ticket.ID)
	}
}

func (s *Service) notifyEmail(ev Event) {
	if s.mail == nil || ev.Ticket.CreatorEmail == "" {
		return
	}
	subject := fmt.Sprintf("[Ticket #%d] %s - status updated", ev.Ticket.ID, ev.Ticket.Title)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour ticket #%d (%s) is now %q.\n\nThis is an automated update from the helpdesk.\n",
		ev.Ticket.CreatorName, ev.Ticket.ID, ev.Ticket.Title, ev.NewStatus,
	)
	// Thread onto the original inbound email when the ticket came from mail.
	if err := s.mail.Send(ev.Ticket.CreatorEmail, subject, body, ev.Ticket.Metadata.EmailMessageID); err != nil {
		monitoring.NotifyFailures.WithLabelValues("email").Inc()
		s.log.Error().Err(err).Int("ticket", ev.Ticket.ID).Msg("email notify failed")
	}
}
