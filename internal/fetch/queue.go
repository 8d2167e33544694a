package fetch

import (
	"context"
	"errors"
	"sync"
)

var errQueueClosed = errors.New("queue is closed")

// requestQueue is an unbounded FIFO of pending fetch requests. It must be
// unbounded: handlers running inside workers enqueue follow-up requests, and
// a bounded channel could deadlock with every worker blocked on a full queue.
type requestQueue struct {
	requests []*Request
	mu       sync.Mutex
	cond     *sync.Cond
	closed   bool
}

func newRequestQueue() *requestQueue {
	q := &requestQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *requestQueue) Push(req *Request) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errQueueClosed
	}

	q.requests = append(q.requests, req)
	q.cond.Signal()
	return nil
}

func (q *requestQueue) Pop(ctx context.Context) (*Request, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.requests) == 0 && !q.closed {
		done := make(chan struct{})
		go func() {
			q.cond.Wait()
			close(done)
		}()

		select {
		case <-ctx.Done():
			q.cond.Signal()
			return nil, ctx.Err()
		case <-done:
		}
	}

	if len(q.requests) == 0 {
		return nil, errQueueClosed
	}

	req := q.requests[0]
	q.requests = q.requests[1:]
	return req, nil
}

// Close wakes every waiting Pop. Idempotent.
func (q *requestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
