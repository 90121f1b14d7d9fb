package service

import (
	"context"
	"fmt"

	"voltride-backend/internal/domain"
	"voltride-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailNotifier turns lifecycle events into customer emails via SendGrid.
// CustomerRef is expected to be the customer's email address; events with a
// non-address reference are skipped.
type EmailNotifier struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailNotifier(apiKey, fromEmail, fromName string) *EmailNotifier {
	return &EmailNotifier{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *EmailNotifier) Publish(_ context.Context, ev domain.LifecycleEvent) error {
	subject, body := renderEvent(ev)
	if subject == "" {
		return nil
	}
	return s.send(ev.CustomerRef, subject, body)
}

func (s *EmailNotifier) send(to, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)

	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)
	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	logger.ExternalServiceResult("sendgrid", "send", err)

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func renderEvent(ev domain.LifecycleEvent) (subject, body string) {
	switch ev.Kind {
	case domain.EventReservationConfirmed:
		subject = fmt.Sprintf("Reservation %s confirmed", ev.ReservationRef)
		body = fmt.Sprintf("Your reservation %s is confirmed. Total: %s.", ev.ReservationRef, formatCents(ev.AmountCents))
	case domain.EventReservationCheckedIn:
		subject = fmt.Sprintf("Reservation %s: vehicles handed over", ev.ReservationRef)
		body = fmt.Sprintf("Enjoy the ride! A deposit of %s is held until return.", formatCents(ev.AmountCents))
	case domain.EventReservationCompleted:
		subject = fmt.Sprintf("Reservation %s completed", ev.ReservationRef)
		body = fmt.Sprintf("Thanks for riding with us. Deposit refund: %s.", formatCents(ev.AmountCents))
	case domain.EventReservationCancelled:
		subject = fmt.Sprintf("Reservation %s cancelled", ev.ReservationRef)
		body = fmt.Sprintf("Your reservation was cancelled: %s.", ev.Detail)
	case domain.EventReservationExtended:
		subject = fmt.Sprintf("Reservation %s extended", ev.ReservationRef)
		body = fmt.Sprintf("Your rental was extended (%s). Additional charge: %s.", ev.Detail, formatCents(ev.AmountCents))
	}
	return subject, body
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d EUR", cents/100, cents%100)
}
