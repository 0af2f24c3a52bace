package sigslot

// ScopedConnection owns a connection exclusively and disconnects it on
// Close, unless Release is called first.
//
//	scoped := sigslot.Scoped(sig.Connect(onFrame))
//	defer scoped.Close()
type ScopedConnection struct {
	conn *Connection
}

// Scoped wraps a connection in an exclusive-ownership guard. A nil or
// invalid handle yields a guard whose Close is a no-op.
func Scoped(conn *Connection) *ScopedConnection {
	return &ScopedConnection{conn: conn}
}

// Connection returns the guarded connection without releasing ownership.
func (s *ScopedConnection) Connection() *Connection {
	return s.conn
}

// Release disowns and returns the connection; Close becomes a no-op.
func (s *ScopedConnection) Release() *Connection {
	conn := s.conn
	s.conn = nil
	return conn
}

// Close disconnects the owned connection. Idempotent.
func (s *ScopedConnection) Close() error {
	if s.conn != nil {
		s.conn.Disconnect()
		s.conn = nil
	}
	return nil
}
