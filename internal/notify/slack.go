package notify

import (
	"context"

	"github.com/slack-go/slack"
)

// SlackWebhook posts to an incoming-webhook URL. A non-empty threadTS turns
// the message into a threaded reply.
type SlackWebhook struct {
	URL     string
	Channel string
}

func NewSlackWebhook(url, channel string) *SlackWebhook {
	return &SlackWebhook{URL: url, Channel: channel}
}

func (w *SlackWebhook) Post(ctx context.Context, text, threadTS string) error {
	return slack.PostWebhookContext(ctx, w.URL, &slack.WebhookMessage{
		Channel:         w.Channel,
		Text:            text,
		ThreadTimestamp: threadTS,
	})
}
