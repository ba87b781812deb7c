package notify

import (
	"context"
	"fmt"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/logger"
)

type Enqueuer interface {
	Enqueue(msg Message) error
}

// Mailer turns workflow events into customer e-mails. Customers without an
// address on file are skipped; a full queue is logged and never fails the caller.
type Mailer struct {
	queue Enqueuer
}

func NewMailer(queue Enqueuer) *Mailer {
	return &Mailer{queue: queue}
}

func (m *Mailer) RentalCreated(ctx context.Context, rental *domain.Rental, customer *domain.Customer) {
	if customer == nil || customer.Email == "" {
		return
	}

	lines := ""
	for _, d := range rental.Details {
		name := fmt.Sprintf("Equipment #%d", d.EquipmentID)
		if d.Equipment != nil {
			name = d.Equipment.SerialNumber
			if d.Equipment.Type != nil {
				name = d.Equipment.Type.Name + " (" + d.Equipment.SerialNumber + ")"
			}
		}
		lines += fmt.Sprintf("- %s, %d day(s): %s\n", name, d.TimeQuantity, d.Subtotal.StringFixed(2))
	}

	body := fmt.Sprintf("Hello %s,\n\nYour rental #%d from %s to %s is confirmed.\n\n%s\nTotal: %s\n\nPlease bring your identity card when picking up the equipment.",
		customer.FullName, rental.ID, rental.StartDate.Format("2006-01-02"), rental.EndDate.Format("2006-01-02"), lines, rental.TotalAmount.StringFixed(2))

	m.enqueue(ctx, Message{
		To:        customer.Email,
		ToName:    customer.FullName,
		Subject:   fmt.Sprintf("Rental #%d confirmed", rental.ID),
		PlainText: body,
	})
}

func (m *Mailer) PaymentRecorded(ctx context.Context, payment *domain.Payment, customer *domain.Customer, receipt []byte) {
	if customer == nil || customer.Email == "" {
		return
	}

	body := fmt.Sprintf("Hello %s,\n\nWe received %s for rental #%d via %s.\nReceipt number: %s\n\nThank you for renting with us.",
		customer.FullName, payment.Total().StringFixed(2), payment.RentalID, payment.PaymentMethod, payment.ReceiptNumber)

	msg := Message{
		To:        customer.Email,
		ToName:    customer.FullName,
		Subject:   fmt.Sprintf("Payment receipt %s", payment.ReceiptNumber),
		PlainText: body,
	}
	if len(receipt) > 0 {
		msg.Attachments = []Attachment{{
			Filename:    "receipt-" + payment.ReceiptNumber + ".pdf",
			ContentType: "application/pdf",
			Content:     receipt,
		}}
	}
	m.enqueue(ctx, msg)
}

func (m *Mailer) enqueue(ctx context.Context, msg Message) {
	if err := m.queue.Enqueue(msg); err != nil {
		logger.WarnContext(ctx, "Failed to enqueue email", "to", msg.To, "subject", msg.Subject, "error", err)
	}
}
