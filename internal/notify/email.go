package notify

import (
	"context"
	"html"
	"strings"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

const emailSubject = "CourseCritic: review reported"

// EmailNotifier mails moderation messages to a fixed address through Resend.
type EmailNotifier struct {
	client *resend.Client
	from   string
	to     string
}

func NewEmailNotifier(apiKey, from, to string) *EmailNotifier {
	return &EmailNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

func (n *EmailNotifier) Publish(ctx context.Context, message string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: emailSubject,
		Html:    renderEmail(message),
	}

	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return errors.Wrap(err, "failed to send email")
	}
	log.Debug().Str("email_id", sent.Id).Msg("moderation email sent")
	return nil
}

func renderEmail(message string) string {
	lines := strings.Split(html.EscapeString(message), "\n")
	return `<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">` +
		`<h2 style="color: #333;">Moderation queue</h2><p>` +
		strings.Join(lines, "<br>") +
		`</p><p style="color: #888; font-size: 14px;">Open the admin dashboard to review it.</p></div>`
}

// New picks the email notifier when Resend is fully configured and falls back
// to logging otherwise.
func New(apiKey, from, to string) Notifier {
	if apiKey == "" || from == "" || to == "" {
		log.Warn().Msg("RESEND_API_KEY, FROM_EMAIL or MODERATION_EMAIL not set, moderation alerts go to the log")
		return NewLogNotifier()
	}
	return NewEmailNotifier(apiKey, from, to)
}
