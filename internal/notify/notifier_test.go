package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"campusdesk/internal/models"
)

type recordingChat struct {
	posts []struct{ text, ts string }
	err   error
}

func (c *recordingChat) Post(ctx context.Context, text, threadTS string) error {
	c.posts = append(c.posts, struct{ text, ts string }{text, threadTS})
	return c.err
}

type recordingMail struct {
	sent []struct{ to, inReplyTo string }
	err  error
}

func (m *recordingMail) Send(to, subject, body, inReplyTo string) error {
	m.sent = append(m.sent, struct{ to, inReplyTo string }{to, inReplyTo})
	return m.err
}

func TestResolvedPostsToChat(t *testing.T) {
	chat := &recordingChat{}
	s := New(zerolog.Nop(), chat, nil)

	s.StatusChanged(context.Background(), Event{
		Ticket:    models.Ticket{ID: 7, Title: "wifi", Metadata: models.Metadata{SlackThreadTS: "169.42"}},
		NewStatus: models.StatusResolved,
	})

	require.Len(t, chat.posts, 1)
	require.Contains(t, chat.posts[0].text, "Ticket #7 resolved")
	require.Equal(t, "169.42", chat.posts[0].ts)
}

func TestReopenThreadsOnlyAfterTerminal(t *testing.T) {
	chat := &recordingChat{}
	s := New(zerolog.Nop(), chat, nil)

	ev := Event{
		Ticket:     models.Ticket{ID: 7, Metadata: models.Metadata{SlackThreadTS: "169.42"}},
		PrevStatus: models.StatusResolved,
		NewStatus:  models.StatusReopened,
		ActorName:  "Ann",
		ActorRole:  models.RoleStudent,
	}
	s.StatusChanged(context.Background(), ev)
	require.Len(t, chat.posts, 1)
	require.Contains(t, chat.posts[0].text, "reopened by the student")

	// No thread timestamp means nothing to reply to.
	ev.Ticket.Metadata.SlackThreadTS = ""
	s.StatusChanged(context.Background(), ev)
	require.Len(t, chat.posts, 1)

	// Reopen from a non-terminal state is not a notable event.
	ev.Ticket.Metadata.SlackThreadTS = "169.42"
	ev.PrevStatus = models.StatusInProgress
	s.StatusChanged(context.Background(), ev)
	require.Len(t, chat.posts, 1)
}

func TestReopenTextByRole(t *testing.T) {
	require.Contains(t, reopenText(Event{ActorRole: models.RoleAdmin, ActorName: "Bo"}), "admin team (Bo)")
	require.Contains(t, reopenText(Event{ActorRole: models.RoleCommittee, ActorName: "Cy"}), "committee member Cy")
	require.Contains(t, reopenText(Event{ActorRole: models.RoleStudent}), "the student")
}

func TestEmailThreadsOnOriginalMessage(t *testing.T) {
	mail := &recordingMail{}
	s := New(zerolog.Nop(), nil, mail)

	s.StatusChanged(context.Background(), Event{
		Ticket: models.Ticket{
			ID: 7, Title: "wifi", CreatorEmail: "ann@campus.test", CreatorName: "Ann",
			Metadata: models.Metadata{EmailMessageID: "<abc@mail>"},
		},
		NewStatus: models.StatusResolved,
	})

	require.Len(t, mail.sent, 1)
	require.Equal(t, "ann@campus.test", mail.sent[0].to)
	require.Equal(t, "<abc@mail>", mail.sent[0].inReplyTo)
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	chat := &recordingChat{err: errors.New("webhook down")}
	mail := &recordingMail{err: errors.New("smtp down")}
	s := New(zerolog.Nop(), chat, mail)

	// Must not panic or propagate.
	s.StatusChanged(context.Background(), Event{
		Ticket:    models.Ticket{ID: 7, CreatorEmail: "ann@campus.test"},
		NewStatus: models.StatusResolved,
	})
	require.Len(t, chat.posts, 1)
	require.Len(t, mail.sent, 1)
}

func TestNoChannelsConfigured(t *testing.T) {
	s := New(zerolog.Nop(), nil, nil)
	s.StatusChanged(context.Background(), Event{NewStatus: models.StatusResolved})
}
