package ranking

import (
	"context"
	"fmt"
	"time"
)

// DefaultRefineDelay is the pause between the end of one routing request and the start of the next.
const DefaultRefineDelay = 500 * time.Millisecond

// Queue runs refinement tasks one at a time and pauses for a fixed delay after
// each task completes. One Queue is shared by every refinement issued by the process.
type Queue struct {
	delay   time.Duration
	slot    chan struct{}
	lastEnd time.Time // guarded by slot
}

// NewQueue creates a queue that pauses delay between tasks. A non-positive delay disables pacing.
func NewQueue(delay time.Duration) *Queue {
	if delay < 0 {
		delay = 0
	}

	return &Queue{delay: delay, slot: make(chan struct{}, 1)}
}

// Delay returns the configured pause.
func (q *Queue) Delay() time.Duration {
	return q.delay
}

// Do waits for the previous task to finish and for the pause after it, then runs
// task. The task is not run when ctx ends while waiting.
func (q *Queue) Do(ctx context.Context, task func(ctx context.Context)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("queue wait aborted: %w", err)
	}

	select {
	case q.slot <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("queue wait aborted: %w", ctx.Err())
	}
	defer func() { <-q.slot }()

	if !q.lastEnd.IsZero() {
		if wait := q.delay - time.Since(q.lastEnd); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()

			select {
			case <-timer.C:
			case <-ctx.Done():
				return fmt.Errorf("queue wait aborted: %w", ctx.Err())
			}
		}
	}

	task(ctx)
	q.lastEnd = time.Now()

	return nil
}
