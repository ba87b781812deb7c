package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"camera-rental-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	failures int
	sent     []Message
	calls    int
	done     chan struct{}
}

func (s *fakeSender) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("temporary failure")
	}
	s.sent = append(s.sent, msg)
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	return nil
}

func TestQueue_DeliversAndRetries(t *testing.T) {
	done := make(chan struct{})
	sender := &fakeSender{failures: 2, done: done}
	q := NewQueue(sender, 1, 10, 3)
	q.backoff = func(int) time.Duration { return time.Millisecond }

	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx)

	require.NoError(t, q.Enqueue(Message{To: "a@test.com", Subject: "hi"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}
	cancel()
	q.Wait()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, 3, sender.calls)
	require.Len(t, sender.sent, 1)
	assert.NotEmpty(t, sender.sent[0].ID)
}

func TestQueue_EnqueueFull(t *testing.T) {
	q := NewQueue(&fakeSender{}, 1, 1, 0)

	require.NoError(t, q.Enqueue(Message{To: "a@test.com"}))
	assert.ErrorIs(t, q.Enqueue(Message{To: "b@test.com"}), ErrQueueFull)
}

type captureQueue struct {
	msgs []Message
	err  error
}

func (c *captureQueue) Enqueue(msg Message) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestMailer(t *testing.T) {
	customer := &domain.Customer{FullName: "Budi", Email: "budi@test.com"}

	t.Run("Rental confirmation", func(t *testing.T) {
		q := &captureQueue{}
		rental := &domain.Rental{ID: 4, TotalAmount: decimal.NewFromInt(300), Details: []domain.RentalDetail{
			{EquipmentID: 1, TimeQuantity: 3, Subtotal: decimal.NewFromInt(300)},
		}}
		NewMailer(q).RentalCreated(context.Background(), rental, customer)

		require.Len(t, q.msgs, 1)
		assert.Equal(t, "Rental #4 confirmed", q.msgs[0].Subject)
		assert.Contains(t, q.msgs[0].PlainText, "300.00")
	})

	t.Run("Receipt with attachment", func(t *testing.T) {
		q := &captureQueue{}
		payment := &domain.Payment{RentalID: 4, ReceiptNumber: "R1", RentalPayment: decimal.NewFromInt(300), PaymentMethod: domain.PaymentMethodCash}
		NewMailer(q).PaymentRecorded(context.Background(), payment, customer, []byte("%PDF"))

		require.Len(t, q.msgs, 1)
		require.Len(t, q.msgs[0].Attachments, 1)
		assert.Equal(t, "receipt-R1.pdf", q.msgs[0].Attachments[0].Filename)
	})

	t.Run("No address on file", func(t *testing.T) {
		q := &captureQueue{}
		NewMailer(q).RentalCreated(context.Background(), &domain.Rental{ID: 1}, &domain.Customer{FullName: "Anon"})
		assert.Empty(t, q.msgs)
	})

	t.Run("Full queue does not panic", func(t *testing.T) {
		q := &captureQueue{err: ErrQueueFull}
		NewMailer(q).RentalCreated(context.Background(), &domain.Rental{ID: 1}, customer)
		assert.Len(t, q.msgs, 1)
	})
}
