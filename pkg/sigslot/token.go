package sigslot

import "sync/atomic"

// LifeToken is a receiver-owned liveness flag. A receiver hands its token
// to connections via WithToken and revokes it when it is torn down; the
// engine checks the token immediately before calling into the receiver,
// so a pending queued invocation never reaches a dead receiver.
type LifeToken struct {
	alive atomic.Bool
}

// NewLifeToken creates a live token.
func NewLifeToken() *LifeToken {
	t := &LifeToken{}
	t.alive.Store(true)
	return t
}

// Revoke marks the receiver as gone. Irreversible.
func (t *LifeToken) Revoke() {
	t.alive.Store(false)
}

// Alive returns true until Revoke is called.
func (t *LifeToken) Alive() bool {
	return t.alive.Load()
}
