package taskqueue

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// seqTask pairs a task with its posting order.
type seqTask struct {
	seq  uint64
	task Task
}

// nextTask is the result of one selection pass over both intake paths.
type nextTask struct {
	quit     bool
	task     Task
	delayed  bool
	lateness time.Duration
	sleep    time.Duration
}

// Queue is a named, single-threaded task executor.
//
// All tasks run on one dedicated worker goroutine, never concurrently with
// each other. Immediate and delayed tasks share a single posting-order
// counter; among tasks that are ready to run, the one posted first runs
// first.
type Queue struct {
	name string

	mu      sync.Mutex
	seq     uint64
	fifo    []seqTask
	delayed delayedHeap
	quit    bool

	// wake carries at most one pending wake-up for the worker. It uses no
	// lock shared with the scheduler state, so posting never contends with
	// a worker that is mid-selection.
	wake chan struct{}
	done chan struct{}

	workerID atomic.Int64

	metrics MetricsRecorder
}

// New creates a queue with the given name and starts its worker goroutine.
// The worker is running by the time New returns.
func New(name string) *Queue {
	q := &Queue{
		name:    name,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		metrics: &nopMetrics{},
	}

	ready := make(chan struct{})
	go q.run(ready)
	<-ready

	return q
}

// Name returns the queue name.
func (q *Queue) Name() string {
	return q.name
}

// IsCurrent returns true if called from the queue's own worker goroutine.
func (q *Queue) IsCurrent() bool {
	return q.workerID.Load() == goroutineID()
}

// Done returns a channel closed when the worker goroutine has exited.
// Once it is closed, tasks still pending at Close will never run; a
// caller synchronizing on an externally-owned task must select on this
// channel alongside its own completion signal.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Len returns the number of pending tasks across both intake paths.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fifo) + q.delayed.Len()
}

// SetMetrics sets the metrics recorder for the queue.
func (q *Queue) SetMetrics(m MetricsRecorder) {
	if m != nil {
		q.metrics = m
	}
}

// Post appends a task to the immediate intake and wakes the worker.
// Posting to a closed queue is a safe no-op returning QueueClosedError.
func (q *Queue) Post(task Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	q.mu.Lock()
	if q.quit {
		q.mu.Unlock()
		return &QueueClosedError{QueueName: q.name}
	}
	q.seq++
	q.fifo = append(q.fifo, seqTask{seq: q.seq, task: task})
	q.mu.Unlock()

	q.metrics.IncQueueDepth(q.name)
	q.notifyWake()
	return nil
}

// PostFunc posts a plain function using a queue-owned pooled wrapper.
func (q *Queue) PostFunc(fn func()) error {
	if fn == nil {
		return fmt.Errorf("task function cannot be nil")
	}
	task := newClosureTask(fn)
	if err := q.Post(task); err != nil {
		recycleTask(task)
		return err
	}
	return nil
}

// PostDelayed schedules a task to run no earlier than now+delay.
// Posting to a closed queue is a safe no-op returning QueueClosedError.
func (q *Queue) PostDelayed(task Task, delay time.Duration) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	fireAt := time.Now().Add(delay)

	q.mu.Lock()
	if q.quit {
		q.mu.Unlock()
		return &QueueClosedError{QueueName: q.name}
	}
	q.seq++
	heap.Push(&q.delayed, &delayedEntry{fireAt: fireAt, seq: q.seq, task: task})
	q.mu.Unlock()

	q.metrics.IncQueueDepth(q.name)
	q.notifyWake()
	return nil
}

// PostDelayedFunc schedules a plain function using a queue-owned wrapper.
func (q *Queue) PostDelayedFunc(fn func(), delay time.Duration) error {
	if fn == nil {
		return fmt.Errorf("task function cannot be nil")
	}
	task := newClosureTask(fn)
	if err := q.PostDelayed(task, delay); err != nil {
		recycleTask(task)
		return err
	}
	return nil
}

// Close requests the worker to stop and waits for it to exit. In-flight
// work finishes; tasks still pending are not run. Close is idempotent and
// safe to call concurrently.
//
// Calling Close from the queue's own worker goroutine is a usage error and
// panics: the worker cannot join itself.
func (q *Queue) Close(ctx context.Context) error {
	if q.IsCurrent() {
		panic(fmt.Sprintf("taskqueue: Close called from queue %q's own worker", q.name))
	}

	q.mu.Lock()
	q.quit = true
	q.mu.Unlock()

	q.notifyWake()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the worker goroutine's main loop.
func (q *Queue) run(ready chan<- struct{}) {
	q.workerID.Store(goroutineID())
	close(ready)
	defer close(q.done)

	for {
		next := q.selectTask()

		if next.quit {
			return
		}

		if next.task != nil {
			q.metrics.DecQueueDepth(q.name)
			if next.delayed {
				q.metrics.RecordDelayedLateness(q.name, next.lateness)
			}
			start := time.Now()
			if next.task.Run() {
				recycleTask(next.task)
			}
			q.metrics.RecordTaskRun(q.name, time.Since(start))
			continue
		}

		if next.sleep > 0 {
			timer := time.NewTimer(next.sleep)
			select {
			case <-q.wake:
				timer.Stop()
			case <-timer.C:
			}
		} else {
			<-q.wake
		}
	}
}

// selectTask picks the next task to run under the scheduler lock.
//
// A ready delayed task loses to the immediate head only if the immediate
// head was posted earlier (lower sequence); otherwise the delayed task
// runs. When the earliest delayed task is not yet due, any immediate task
// runs right away and the remaining delay bounds the worker's sleep.
func (q *Queue) selectTask() nextTask {
	now := time.Now()

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.quit {
		return nextTask{quit: true}
	}

	var result nextTask

	if head := q.delayed.peek(); head != nil {
		if !now.Before(head.fireAt) {
			if len(q.fifo) > 0 && q.fifo[0].seq < head.seq {
				result.task = q.popFIFO()
				return result
			}
			entry := heap.Pop(&q.delayed).(*delayedEntry)
			result.task = entry.task
			result.delayed = true
			result.lateness = now.Sub(entry.fireAt)
			return result
		}
		result.sleep = head.fireAt.Sub(now)
	}

	if len(q.fifo) > 0 {
		result.task = q.popFIFO()
		result.sleep = 0
	}

	return result
}

// popFIFO dequeues the immediate head. Caller holds q.mu.
func (q *Queue) popFIFO() Task {
	task := q.fifo[0].task
	q.fifo[0].task = nil
	q.fifo = q.fifo[1:]
	if len(q.fifo) == 0 {
		q.fifo = nil
	}
	return task
}

// notifyWake leaves at most one pending wake-up for the worker.
func (q *Queue) notifyWake() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
