// Package sigslot provides typed in-process signal/slot event dispatch
// with explicit cross-goroutine delivery.
//
// A Signal is an ordered registry of connections for one event shape.
// Each connection chooses its own delivery mode: direct (inline on the
// emitting goroutine), queued onto a named task queue, or queued with the
// emitter blocking until the slot has run.
//
// Basic usage:
//
//	var frameReceived sigslot.Signal[VideoFrame]
//
//	conn := frameReceived.Connect(func(f VideoFrame) {
//	    // runs on the "render" queue's worker goroutine
//	}, sigslot.WithMode(sigslot.Queued), sigslot.WithQueue(renderQueue))
//
//	frameReceived.Emit(frame)
//	conn.Disconnect()
//
// Multi-value events use struct payloads.
package sigslot

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// conn pairs the shared connection handle with the typed slot function.
type conn[T any] struct {
	h  *Connection
	fn func(T)
}

// Signal is an ordered, mutex-protected registry of connections for one
// event type. The zero value is ready to use.
type Signal[T any] struct {
	mu    sync.Mutex
	conns []*conn[T]
}

// Connect registers a slot and returns its connection handle. Connections
// are appended in call order; Emit dispatches in that same order.
//
// With Unique(), a second registration of the same (receiver, slot)
// identity is a silent no-op returning a nil handle; callers that care
// inspect the handle with IsValid.
func (s *Signal[T]) Connect(slot func(T), opts ...ConnectOption) *Connection {
	if slot == nil {
		return nil
	}

	var o connOpts
	for _, opt := range opts {
		opt(&o)
	}

	slotID := reflect.ValueOf(slot).Pointer()

	s.mu.Lock()
	if o.ctype.Unique {
		for _, c := range s.conns {
			if c.h.live.Load() && c.h.slotID == slotID && c.h.receiver == o.receiver {
				s.mu.Unlock()
				metricsRecorder().RecordSkipped("duplicate_connection")
				return nil
			}
		}
	}

	h := &Connection{
		id:       uuid.New(),
		owner:    s,
		ctype:    o.ctype,
		queue:    o.queue,
		receiver: o.receiver,
		slotID:   slotID,
		token:    o.token,
	}
	h.live.Store(true)
	s.conns = append(s.conns, &conn[T]{h: h, fn: slot})
	s.mu.Unlock()

	metricsRecorder().RecordConnect()
	return h
}

// Emit delivers v to every live, unblocked connection in registration
// order. Dispatch runs over a snapshot taken under the registry mutex and
// the mutex is released before any slot is invoked, so a slot may freely
// connect, disconnect, or re-emit on the same signal.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	snapshot := make([]*conn[T], len(s.conns))
	copy(snapshot, s.conns)
	s.mu.Unlock()

	metricsRecorder().RecordEmit()

	for _, c := range snapshot {
		s.dispatch(c, v)
	}
}

// dispatch resolves the effective delivery mode for one connection.
func (s *Signal[T]) dispatch(c *conn[T], v T) {
	h := c.h
	if !h.live.Load() {
		metricsRecorder().RecordSkipped("disconnected")
		return
	}
	if h.blocked.Load() {
		metricsRecorder().RecordSkipped("blocked")
		return
	}

	// No queue bound: always inline on the emitting goroutine.
	if h.queue == nil {
		s.invoke(c, v, "direct")
		return
	}

	switch h.ctype.Mode {
	case Direct:
		s.invoke(c, v, "direct")
	case Auto:
		if h.queue.IsCurrent() {
			// Already on the target worker: skip the queue round-trip.
			s.invoke(c, v, "direct")
			return
		}
		s.postQueued(c, v)
	case Queued:
		s.postQueued(c, v)
	case BlockingQueued:
		if h.queue.IsCurrent() {
			// Posting and waiting here would deadlock the worker on
			// itself; degrade to direct, mirroring Auto.
			s.invoke(c, v, "direct")
			return
		}
		task := &blockingTask{
			fn:   func() { s.invoke(c, v, "blocking_queued") },
			done: make(chan struct{}),
		}
		if err := h.queue.Post(task); err != nil {
			metricsRecorder().RecordSkipped("queue_closed")
			return
		}
		select {
		case <-task.done:
		case <-h.queue.Done():
			// The worker exited. An in-flight task always completes
			// before the worker does, so the task either ran (done is
			// closed) or was dropped and never will run.
			select {
			case <-task.done:
			default:
				metricsRecorder().RecordSkipped("queue_closed")
			}
		}
	}
}

// postQueued packages the call and hands it to the bound queue without
// waiting.
func (s *Signal[T]) postQueued(c *conn[T], v T) {
	err := c.h.queue.PostFunc(func() { s.invoke(c, v, "queued") })
	if err != nil {
		metricsRecorder().RecordSkipped("queue_closed")
	}
}

// invoke runs the slot after re-checking connection state at execution
// time. A connection disconnected, blocked, or whose receiver token was
// revoked between posting and execution becomes a no-op here.
func (s *Signal[T]) invoke(c *conn[T], v T, mode string) {
	h := c.h
	if !h.live.Load() {
		metricsRecorder().RecordSkipped("disconnected")
		return
	}
	if h.blocked.Load() {
		metricsRecorder().RecordSkipped("blocked")
		return
	}
	if h.token != nil && !h.token.Alive() {
		s.remove(h.id)
		metricsRecorder().RecordSkipped("receiver_gone")
		return
	}

	if h.ctype.Singleshot {
		// Single atomic claim: concurrent emissions racing through two
		// queues elect exactly one runner.
		if !h.fired.CompareAndSwap(false, true) {
			metricsRecorder().RecordSkipped("already_fired")
			return
		}
	}

	c.fn(v)
	metricsRecorder().RecordDelivered(mode)

	if h.ctype.Singleshot {
		s.remove(h.id)
	}
}

// Disconnect removes the connection if it is still registered on this
// signal. Idempotent; a nil or foreign handle is a no-op.
func (s *Signal[T]) Disconnect(conn *Connection) {
	if conn == nil {
		return
	}
	s.remove(conn.id)
}

// DisconnectReceiver removes every connection registered with the given
// receiver identity.
func (s *Signal[T]) DisconnectReceiver(receiver any) {
	receiver = comparableReceiver(receiver)
	if receiver == nil {
		return
	}

	s.mu.Lock()
	kept := s.conns[:0]
	removed := 0
	for _, c := range s.conns {
		if c.h.receiver == receiver {
			c.h.live.Store(false)
			removed++
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(s.conns); i++ {
		s.conns[i] = nil
	}
	s.conns = kept
	s.mu.Unlock()

	for i := 0; i < removed; i++ {
		metricsRecorder().RecordDisconnect()
	}
}

// DisconnectFunc removes the connection matching the given (receiver,
// slot) identity, if any.
func (s *Signal[T]) DisconnectFunc(receiver any, slot func(T)) {
	if slot == nil {
		return
	}
	receiver = comparableReceiver(receiver)
	slotID := reflect.ValueOf(slot).Pointer()

	s.mu.Lock()
	var found *Connection
	for i, c := range s.conns {
		if c.h.receiver == receiver && c.h.slotID == slotID {
			found = c.h
			c.h.live.Store(false)
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if found != nil {
		metricsRecorder().RecordDisconnect()
	}
}

// DisconnectAll clears the registry.
func (s *Signal[T]) DisconnectAll() {
	s.mu.Lock()
	removed := len(s.conns)
	for _, c := range s.conns {
		c.h.live.Store(false)
	}
	s.conns = nil
	s.mu.Unlock()

	for i := 0; i < removed; i++ {
		metricsRecorder().RecordDisconnect()
	}
}

// Len returns the number of registered connections.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// remove implements connectionOwner.
func (s *Signal[T]) remove(id uuid.UUID) {
	s.mu.Lock()
	for i, c := range s.conns {
		if c.h.id == id {
			c.h.live.Store(false)
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			s.mu.Unlock()
			metricsRecorder().RecordDisconnect()
			return
		}
	}
	s.mu.Unlock()
}

// comparableReceiver returns the receiver if its dynamic type supports
// equality, and nil otherwise. Receiver matching compares interface
// values directly; an uncomparable type would make those comparisons
// panic.
func comparableReceiver(receiver any) any {
	if receiver == nil {
		return nil
	}
	if !reflect.TypeOf(receiver).Comparable() {
		return nil
	}
	return receiver
}

// blockingTask is the externally-owned unit of work used for blocking
// delivery: the emitter keeps ownership, waits on done, and Run reports
// false so the queue does not reclaim it.
type blockingTask struct {
	fn   func()
	done chan struct{}
}

// Run implements taskqueue.Task.
func (t *blockingTask) Run() bool {
	defer close(t.done)
	t.fn()
	return false
}
