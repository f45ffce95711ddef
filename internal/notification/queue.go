package notification

import (
	"context"
	"sync"
	"time"

	"kronus_crm_backend/platform/logger"
)

// Job is one pending email delivery. Send carries everything needed to
// deliver; the queue knows nothing about email internals.
type Job struct {
	Kind      string
	Recipient string
	Send      func(ctx context.Context) error
}

// Queue is an in-process FIFO delivery queue with a single consumer. Jobs are
// delivered strictly in enqueue order with a pacing delay between sends, so a
// burst of assignments never hammers the SMTP server. A failed job is logged
// and dropped; it never blocks the jobs behind it.
type Queue struct {
	mu      sync.Mutex
	jobs    []Job
	running bool

	delay time.Duration
	log   *logger.Logger
	wg    sync.WaitGroup
}

// NewQueue creates a delivery queue. The delay applies between consecutive
// sends.
func NewQueue(delay time.Duration, log *logger.Logger) *Queue {
	return &Queue{delay: delay, log: log}
}

// Enqueue appends a job and starts the consumer if it is not already
// draining. The running flag guarantees at most one consumer goroutine.
func (q *Queue) Enqueue(job Job) {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	q.wg.Add(1)
	go q.drain()
}

// Len returns the number of jobs waiting for delivery.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Wait blocks until the consumer has drained the queue. Intended for tests
// and graceful shutdown.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) drain() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if len(q.jobs) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.mu.Unlock()

		// Deliveries run detached from any request lifecycle.
		err := job.Send(context.Background())
		q.log.EmailDelivery(job.Recipient, job.Kind, err)

		if q.delay > 0 {
			time.Sleep(q.delay)
		}
	}
}
