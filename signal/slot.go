package signal

// Slot ties a registration to the lifetime of its receiver.
//
// A Slot is passed as the owner to Signal.Connect and is usually a field of
// the receiving struct. Close removes the registration it owns; once the
// registration is gone, whichever way it was removed, the slot is
// unattached again and may be passed to another Connect.
//
// The zero value is ready to use. A Slot must not be copied while attached.
type Slot struct {
	Connection
}

// Attached reports whether the slot currently owns a live registration.
func (s *Slot) Attached() bool {
	return s.state != nil
}

// Close disconnects the registration owned by the slot, if any.
// It is safe to call any number of times.
func (s *Slot) Close() {
	s.Disconnect()
}

func (s *Slot) attach(c Connection) {
	s.Connection = c
}

func (s *Slot) release() {
	s.Connection = Connection{}
}
