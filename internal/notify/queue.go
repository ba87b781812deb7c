package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"camera-rental-backend/internal/logger"

	"github.com/google/uuid"
)

var ErrQueueFull = errors.New("email queue is full")

type job struct {
	msg     Message
	retries int
}

// Queue sends messages on a fixed pool of workers, retrying failures with
// quadratic backoff. Enqueue never blocks.
type Queue struct {
	sender     Sender
	jobs       chan job
	workers    int
	maxRetries int
	backoff    func(attempt int) time.Duration

	wg sync.WaitGroup
}

func NewQueue(sender Sender, workers, queueSize, maxRetries int) *Queue {
	return &Queue{
		sender:     sender,
		jobs:       make(chan job, queueSize),
		workers:    workers,
		maxRetries: maxRetries,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * time.Second
		},
	}
}

// Start launches the workers. They stop when ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	logger.Debug("Email worker started", "worker", id)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Email worker stopping", "worker", id)
			return
		case j := <-q.jobs:
			q.process(ctx, j)
		}
	}
}

func (q *Queue) process(ctx context.Context, j job) {
	err := q.sender.Send(ctx, j.msg)
	if err == nil {
		logger.Info("Email sent", "id", j.msg.ID, "to", j.msg.To)
		return
	}

	if j.retries >= q.maxRetries {
		logger.Error("Email dropped after retries", "id", j.msg.ID, "to", j.msg.To, "retries", j.retries, "error", err)
		return
	}

	j.retries++
	delay := q.backoff(j.retries)
	logger.Warn("Retrying email", "id", j.msg.ID, "attempt", j.retries, "max", q.maxRetries, "in", delay, "error", err)
	time.AfterFunc(delay, func() {
		select {
		case q.jobs <- j:
		default:
			logger.Error("Email dropped, queue full on retry", "id", j.msg.ID, "to", j.msg.To)
		}
	})
}

// Enqueue adds a message to the queue, assigning an id when missing.
func (q *Queue) Enqueue(msg Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	select {
	case q.jobs <- job{msg: msg}:
		return nil
	default:
		return ErrQueueFull
	}
}
