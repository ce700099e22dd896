package notify

import (
	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

func (m *SMTPMailer) Send(to, subject, body, inReplyTo string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	if inReplyTo != "" {
		msg.SetHeader("In-Reply-To", inReplyTo)
		msg.SetHeader("References", inReplyTo)
	}
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
