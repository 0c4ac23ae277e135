package signal

import (
	"container/list"
	"fmt"
	"reflect"
)

// joint links a callback to its connection state and optional owner slot.
type joint[F any] struct {
	callback F
	state    *state
	owner    *Slot

	// removed joints stay in the list until the outermost dispatch returns
	removed bool
}

// Signal is a multicast dispatcher for callbacks of type F returning R.
//
// Signal works with any callback type; invocation goes through a trampoline
// that knows how to call F. The arity specific types Signal0 to Signal3 wrap
// it with Emit methods that take the arguments directly.
//
// The zero value is an empty, unlocked signal ready to use.
type Signal[F any, R any] struct {
	joints *list.List
	index  map[*state]*list.Element
	locked bool
	closed bool

	dispatching int
	dirty       bool
}

// New returns an empty signal.
func New[F any, R any]() *Signal[F, R] {
	s := &Signal[F, R]{}
	s.init()
	return s
}

func (s *Signal[F, R]) init() {
	if s.joints == nil {
		s.joints = list.New()
		s.index = make(map[*state]*list.Element)
	}
}

// IsLocked reports whether the whole signal is locked.
func (s *Signal[F, R]) IsLocked() bool {
	return s.locked
}

// SetLock locks or unlocks the whole signal, independently of the locks
// on individual connections.
func (s *Signal[F, R]) SetLock(lock bool) {
	s.locked = lock
}

// Len returns the number of live registrations.
func (s *Signal[F, R]) Len() int {
	return len(s.index)
}

// Connect appends fn to the signal and returns a handle to the new
// registration. When owner is not nil, the registration is tied to it:
// closing owner disconnects fn.
//
// An owner that already owns a live registration is rejected with
// ErrSlotAttached and nothing is registered.
func (s *Signal[F, R]) Connect(fn F, owner *Slot) (Connection, error) {
	if s.closed {
		return Connection{}, ErrClosed
	}
	if isNilFunc(fn) {
		return Connection{}, ErrNilCallback
	}
	if owner != nil && owner.Attached() {
		return Connection{}, ErrSlotAttached
	}

	s.init()
	st := &state{}
	s.index[st] = s.joints.PushBack(&joint[F]{
		callback: fn,
		state:    st,
		owner:    owner,
	})

	conn := Connection{state: st, sig: s}
	if owner != nil {
		owner.attach(conn)
	}
	return conn, nil
}

// ConnectMethod binds the method named method on receiver and connects it
// like Connect. The method must have exactly the signature F, whatever its
// number of arguments. Method values (receiver.Method) passed to Connect
// give the same result with compile time checking.
func (s *Signal[F, R]) ConnectMethod(receiver any, method string, owner *Slot) (Connection, error) {
	fn, err := bindMethod[F](receiver, method)
	if err != nil {
		return Connection{}, err
	}
	return s.Connect(fn, owner)
}

// Disconnect removes the registration referred to by c. Handles from other
// signals and already removed registrations are ignored.
func (s *Signal[F, R]) Disconnect(c Connection) {
	if c.state != nil {
		s.detach(c.state)
	}
}

// DisconnectSlot removes the registration owned by owner.
// A nil slot, or one not attached to this signal, is ignored.
func (s *Signal[F, R]) DisconnectSlot(owner *Slot) {
	if owner != nil && owner.state != nil {
		s.detach(owner.state)
	}
}

// DisconnectAll removes every registration and releases every owner slot.
func (s *Signal[F, R]) DisconnectAll() {
	if s.joints == nil {
		return
	}
	for e := s.joints.Front(); e != nil; {
		next := e.Next()
		if !e.Value.(*joint[F]).removed {
			s.remove(e)
		}
		e = next
	}
}

// Close disconnects everything and rejects later connections.
// Slots that were attached to the signal are left unattached.
func (s *Signal[F, R]) Close() {
	s.DisconnectAll()
	s.closed = true
}

// Dispatch calls every unlocked callback in registration order through call
// and returns the result of the last registered callback.
//
// The zero value of R is returned when the signal is locked, when it has no
// registrations, or when the last registration is locked. In that last case
// the earlier unlocked callbacks still run. Callbacks connected while
// Dispatch runs are not called until the next dispatch.
func (s *Signal[F, R]) Dispatch(call func(F) R) R {
	var zero R
	if s.locked {
		return zero
	}
	last := s.lastLive()
	if last == nil {
		return zero
	}

	s.dispatching++
	defer s.finish()

	for e := s.joints.Front(); ; e = e.Next() {
		j := e.Value.(*joint[F])
		if e == last {
			if j.removed || j.state.locked {
				return zero
			}
			return call(j.callback)
		}
		if !j.removed && !j.state.locked {
			call(j.callback)
		}
	}
}

// Collect calls every unlocked callback in registration order through call
// and returns their results in the same order. A locked signal returns an
// empty slice without calling anything.
//
// The walk stops at the last registration that existed when Collect
// started: callbacks connected by a running callback are not called and
// add no result until the next dispatch, exactly as with Dispatch.
func (s *Signal[F, R]) Collect(call func(F) R) []R {
	results := make([]R, 0, s.Len())
	if s.locked {
		return results
	}
	last := s.lastLive()
	if last == nil {
		return results
	}

	s.dispatching++
	defer s.finish()

	for e := s.joints.Front(); ; e = e.Next() {
		j := e.Value.(*joint[F])
		if !j.removed && !j.state.locked {
			results = append(results, call(j.callback))
		}
		if e == last {
			return results
		}
	}
}

// Aggregate passes the results of Collect to agg and returns what it
// returns. agg is called even when nothing was dispatched.
func (s *Signal[F, R]) Aggregate(call func(F) R, agg func([]R) R) R {
	return agg(s.Collect(call))
}

func (s *Signal[F, R]) detach(st *state) {
	if e, ok := s.index[st]; ok {
		s.remove(e)
	}
}

func (s *Signal[F, R]) connected(st *state) bool {
	_, ok := s.index[st]
	return ok
}

// remove takes the joint out of the index and releases its owner.
// While a dispatch is running the element itself stays in the list so the
// dispatch can keep walking it.
func (s *Signal[F, R]) remove(e *list.Element) {
	j := e.Value.(*joint[F])
	delete(s.index, j.state)
	j.removed = true
	if j.owner != nil {
		j.owner.release()
		j.owner = nil
	}

	if s.dispatching > 0 {
		s.dirty = true
		return
	}
	s.joints.Remove(e)
}

func (s *Signal[F, R]) lastLive() *list.Element {
	if s.joints == nil {
		return nil
	}
	for e := s.joints.Back(); e != nil; e = e.Prev() {
		if !e.Value.(*joint[F]).removed {
			return e
		}
	}
	return nil
}

func (s *Signal[F, R]) finish() {
	s.dispatching--
	if s.dispatching > 0 || !s.dirty {
		return
	}
	for e := s.joints.Front(); e != nil; {
		next := e.Next()
		if e.Value.(*joint[F]).removed {
			s.joints.Remove(e)
		}
		e = next
	}
	s.dirty = false
}

func isNilFunc(fn any) bool {
	v := reflect.ValueOf(fn)
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Interface, reflect.Map, reflect.Chan, reflect.Slice:
		return v.IsNil()
	}
	return false
}

func bindMethod[F any](receiver any, name string) (F, error) {
	var fn F

	recv := reflect.ValueOf(receiver)
	if !recv.IsValid() {
		return fn, fmt.Errorf("%w: nil receiver", ErrMethodNotFound)
	}

	method := recv.MethodByName(name)
	if !method.IsValid() {
		return fn, fmt.Errorf("%w: %T has no method %s", ErrMethodNotFound, receiver, name)
	}

	want := reflect.TypeFor[F]()
	if want.Kind() != reflect.Func || !method.Type().ConvertibleTo(want) {
		return fn, fmt.Errorf("%w: %T.%s is %s, want %s", ErrMethodSignature, receiver, name, method.Type(), want)
	}

	return method.Convert(want).Interface().(F), nil
}
