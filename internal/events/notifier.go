package events

import (
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"thumblytic-backend-go/internal/models"
	"thumblytic-backend-go/pkg/mailer"
)

// MailSender delivers one email. *mailer.Mailer satisfies it.
type MailSender interface {
	Send(msg mailer.Message) error
}

// Notifier turns appeal events into emails.
type Notifier struct {
	sender     MailSender
	adminEmail string
	clientURL  string
	logger     *zap.Logger
}

// NewNotifier creates a Notifier. adminEmail may be empty to skip admin notices.
func NewNotifier(sender MailSender, adminEmail, clientURL string, logger *zap.Logger) *Notifier {
	return &Notifier{
		sender:     sender,
		adminEmail: adminEmail,
		clientURL:  strings.TrimRight(clientURL, "/"),
		logger:     logger.Named("notifier"),
	}
}

// Handle processes one queue message. Malformed bodies are dropped; send failures are
// returned so the consumer can requeue.
func (n *Notifier) Handle(body []byte) error {
	event, err := Decode(body)
	if err != nil {
		n.logger.Warn("dropping malformed event", zap.Error(err))
		return nil
	}

	msg, ok := n.messageFor(event)
	if !ok {
		n.logger.Debug("event needs no email", zap.String("type", event.Type), zap.String("id", event.ID))
		return nil
	}
	if err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("mail %s for event %s: %w", event.Type, event.ID, err)
	}
	n.logger.Info("notification sent", zap.String("type", event.Type), zap.String("id", event.ID))
	return nil
}

func (n *Notifier) messageFor(event models.Event) (mailer.Message, bool) {
	switch event.Type {
	case models.EventAppealSubmitted:
		if n.adminEmail == "" {
			return mailer.Message{}, false
		}
		return mailer.Message{
			To:      n.adminEmail,
			Subject: fmt.Sprintf("New %s plan appeal", event.Data["requestedPlan"]),
			Body: fmt.Sprintf("<p>%s requested the <b>%s</b> plan.</p><p>Review it in the <a href=\"%s/admin\">admin console</a>.</p>",
				html.EscapeString(orUnknown(event.UserEmail)), html.EscapeString(event.Data["requestedPlan"]), n.clientURL),
		}, true
	case models.EventAppealApproved:
		if event.UserEmail == "" {
			return mailer.Message{}, false
		}
		return mailer.Message{
			To:      event.UserEmail,
			Subject: "Your plan upgrade is active",
			Body: fmt.Sprintf("<p>Your appeal was approved. You are now on the <b>%s</b> plan with %s credits.</p>",
				html.EscapeString(event.Data["plan"]), html.EscapeString(event.Data["credits"])),
		}, true
	case models.EventAppealRejected:
		if event.UserEmail == "" {
			return mailer.Message{}, false
		}
		return mailer.Message{
			To:      event.UserEmail,
			Subject: "Your plan appeal was not approved",
			Body:    "Your appeal could not be verified. Please check the payment reference and submit a new appeal.",
		}, true
	}
	return mailer.Message{}, false
}

func orUnknown(s string) string {
	if s == "" {
		return "A user"
	}
	return s
}
