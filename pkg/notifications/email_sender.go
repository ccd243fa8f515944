package notifications

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/notifyhub/pkg/email"
)

// Content keys read by EmailSender.
const (
	ContentTo      = "to"
	ContentEmail   = "email"
	ContentSubject = "subject"
	ContentBody    = "body"
	ContentHTML    = "html"
)

// EmailSender delivers email-channel notifications through an email.EmailSender.
// The recipient comes from content "to" (or "email"); the subject and bodies
// from "subject", "body" and "html".
type EmailSender struct {
	mailer email.EmailSender
}

func NewEmailSender(mailer email.EmailSender) *EmailSender {
	return &EmailSender{mailer: mailer}
}

func (s *EmailSender) Send(ctx context.Context, n Notification) error {
	params, err := emailParams(n)
	if err != nil {
		return err
	}
	return s.mailer.SendEmail(ctx, params)
}

func emailParams(n Notification) (email.SendEmailParams, error) {
	to := contentString(n.Content, ContentTo)
	if to == "" {
		to = contentString(n.Content, ContentEmail)
	}
	if to == "" {
		return email.SendEmailParams{}, ErrMissingRecipient
	}

	subject := contentString(n.Content, ContentSubject)
	if subject == "" {
		subject = fmt.Sprintf("New %s notification", n.Type)
	}

	return email.SendEmailParams{
		SendTo:   to,
		Subject:  subject,
		BodyText: contentString(n.Content, ContentBody),
		BodyHTML: contentString(n.Content, ContentHTML),
		Tag:      n.Type,
	}, nil
}

func contentString(content map[string]any, key string) string {
	s, _ := content[key].(string)
	return s
}
