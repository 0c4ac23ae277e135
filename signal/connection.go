package signal

// state is the cell shared by a registration, its handles and its owner slot.
// Its pointer is the identity of the connection.
type state struct {
	locked bool
}

// detacher is implemented by the signal that created a connection.
type detacher interface {
	detach(st *state)
	connected(st *state) bool
}

// Connection is a handle to a registration returned by Signal.Connect.
//
// Copies of a Connection refer to the same registration. The zero value is
// an unattached handle: Disconnect does nothing and IsLocked reports false.
type Connection struct {
	state *state
	sig   detacher
}

// IsLocked reports whether the registration is skipped during dispatch.
func (c Connection) IsLocked() bool {
	return c.state != nil && c.state.locked
}

// SetLock locks or unlocks the registration. The lock belongs to the
// connection, so every handle to it observes the change.
func (c Connection) SetLock(lock bool) {
	if c.state != nil {
		c.state.locked = lock
	}
}

// Disconnect removes the registration from its signal. Calling it on an
// unattached or already disconnected handle does nothing.
func (c Connection) Disconnect() {
	if c.sig != nil && c.state != nil {
		c.sig.detach(c.state)
	}
}

// Connected reports whether the registration is still part of its signal.
func (c Connection) Connected() bool {
	return c.sig != nil && c.state != nil && c.sig.connected(c.state)
}

// Same reports whether c and other refer to the same registration.
func (c Connection) Same(other Connection) bool {
	return c.state != nil && c.state == other.state
}
