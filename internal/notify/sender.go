package notify

import (
	"context"
	"encoding/base64"
	"fmt"

	"camera-rental-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outgoing e-mail
type Message struct {
	ID          string
	To          string
	ToName      string
	Subject     string
	PlainText   string
	HTML        string
	Attachments []Attachment
}

// Sender delivers a single message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) Sender {
	return &sendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(msg.ToName, msg.To)

	message := mail.NewSingleEmail(from, msg.Subject, recipient, msg.PlainText, msg.HTML)
	for _, att := range msg.Attachments {
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(att.Content))
		a.SetType(att.ContentType)
		a.SetFilename(att.Filename)
		a.SetDisposition("attachment")
		message.AddAttachment(a)
	}

	logger.ExternalServiceCall("sendgrid", "Send", "to", msg.To, "subject", msg.Subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		err = fmt.Errorf("failed to send email: %w", err)
		logger.ExternalServiceResult("sendgrid", "Send", err, "to", msg.To)
		return err
	}

	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "Send", err, "to", msg.To)
		return err
	}

	logger.ExternalServiceResult("sendgrid", "Send", nil, "to", msg.To, "status", response.StatusCode)
	return nil
}

type logSender struct{}

// NewLogSender returns a sender that only logs, for setups without e-mail delivery.
func NewLogSender() Sender {
	return logSender{}
}

func (logSender) Send(ctx context.Context, msg Message) error {
	logger.Info("Email delivery disabled, message dropped", "to", msg.To, "subject", msg.Subject, "attachments", len(msg.Attachments))
	return nil
}
