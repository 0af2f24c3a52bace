package sigslot

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/sigline/sigline/pkg/taskqueue"
)

// Mode selects how a slot is invoked relative to the emitting goroutine.
type Mode int

const (
	// Auto invokes inline when emitting from the bound queue's own worker
	// goroutine, and behaves as Queued otherwise. With no queue bound it
	// is always inline.
	Auto Mode = iota
	// Direct invokes synchronously on the emitting goroutine, regardless
	// of any bound queue.
	Direct
	// Queued packages the call onto the bound queue and returns
	// immediately.
	Queued
	// BlockingQueued packages the call onto the bound queue and blocks
	// the emitter until the worker has run it. Emitting from the bound
	// queue's own worker degrades to Direct.
	BlockingQueued
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Direct:
		return "direct"
	case Queued:
		return "queued"
	case BlockingQueued:
		return "blocking_queued"
	default:
		return "unknown"
	}
}

// ConnType is a connection's full delivery-mode record.
type ConnType struct {
	// Mode is the base delivery mode.
	Mode Mode

	// Unique rejects a second registration of the same (receiver, slot)
	// identity on one signal.
	Unique bool

	// Singleshot lets the slot execute at most once, ever, then
	// auto-disconnects it.
	Singleshot bool
}

// connOpts collects Connect options.
type connOpts struct {
	ctype    ConnType
	queue    *taskqueue.Queue
	receiver any
	token    *LifeToken
}

// ConnectOption configures a single Connect call.
type ConnectOption func(*connOpts)

// WithMode sets the base delivery mode. The default is Auto.
func WithMode(m Mode) ConnectOption {
	return func(o *connOpts) { o.ctype.Mode = m }
}

// WithType sets the full delivery-mode record at once.
func WithType(t ConnType) ConnectOption {
	return func(o *connOpts) { o.ctype = t }
}

// WithQueue binds the connection to a worker queue. Without a queue the
// connection is always invoked on the emitting goroutine.
func WithQueue(q *taskqueue.Queue) ConnectOption {
	return func(o *connOpts) { o.queue = q }
}

// WithReceiver records the receiver identity for Unique matching and
// DisconnectReceiver. The receiver must be a comparable value, typically
// a pointer to the receiving object; an uncomparable value (map, slice,
// function) is ignored and the connection stays anonymous.
func WithReceiver(receiver any) ConnectOption {
	return func(o *connOpts) { o.receiver = comparableReceiver(receiver) }
}

// Unique marks the connection as rejecting duplicates.
func Unique() ConnectOption {
	return func(o *connOpts) { o.ctype.Unique = true }
}

// Singleshot marks the connection as executing at most once.
func Singleshot() ConnectOption {
	return func(o *connOpts) { o.ctype.Singleshot = true }
}

// WithToken attaches a receiver-owned liveness token. A revoked token
// makes pending and future deliveries no-ops and auto-disconnects the
// connection.
func WithToken(token *LifeToken) ConnectOption {
	return func(o *connOpts) { o.token = token }
}

// connectionOwner is the non-generic view a Connection keeps of its
// signal.
type connectionOwner interface {
	remove(id uuid.UUID)
}

// Connection is the handle for one live slot registration. A nil
// Connection is a valid "invalid handle": every method is a safe no-op
// on it.
type Connection struct {
	id    uuid.UUID
	owner connectionOwner

	live    atomic.Bool
	blocked atomic.Bool
	fired   atomic.Bool

	ctype    ConnType
	queue    *taskqueue.Queue
	receiver any
	slotID   uintptr
	token    *LifeToken
}

// ID returns the connection's identity, unique per signal.
func (c *Connection) ID() uuid.UUID {
	if c == nil {
		return uuid.Nil
	}
	return c.id
}

// Type returns the connection's delivery-mode record.
func (c *Connection) Type() ConnType {
	if c == nil {
		return ConnType{}
	}
	return c.ctype
}

// IsValid returns true while the connection is registered on its signal.
func (c *Connection) IsValid() bool {
	return c != nil && c.live.Load()
}

// Block makes Emit skip this connection until Unblock. The connection
// stays registered.
func (c *Connection) Block() {
	if c != nil {
		c.blocked.Store(true)
	}
}

// Unblock restores delivery after Block.
func (c *Connection) Unblock() {
	if c != nil {
		c.blocked.Store(false)
	}
}

// IsBlocked returns true if the connection is currently blocked.
func (c *Connection) IsBlocked() bool {
	return c != nil && c.blocked.Load()
}

// Disconnect removes the connection from its signal. Idempotent.
func (c *Connection) Disconnect() {
	if c == nil || c.owner == nil {
		return
	}
	c.owner.remove(c.id)
}
