// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package event

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/mostlygeek/lsignal/logmon"
	"github.com/mostlygeek/lsignal/signal"
)

// EventType identifies a family of events.
type EventType = uint32

// Event represents an event contract
type Event interface {
	Type() EventType
}

// ErrClosed is returned when subscribing to a closed dispatcher.
var ErrClosed = errors.New("event dispatcher is closed")

// registry holds a sorted array of event mappings
type registry struct {
	keys []EventType // Event types (sorted)
	grps []any       // Corresponding *group[T]
}

// ------------------------------------- Dispatcher -------------------------------------

// Dispatcher routes events to the subscribers of their event type. Every
// event type is backed by its own signal, so subscribers run synchronously
// in subscription order on the goroutine that publishes.
//
// A Dispatcher is not safe for concurrent use.
type Dispatcher struct {
	subs   registry
	closed bool
	log    *logmon.LogMonitor
}

// NewDispatcher creates a new dispatcher of events.
func NewDispatcher() *Dispatcher {
	return NewDispatcherLogger(nil)
}

// NewDispatcherLogger creates a new dispatcher which writes debug messages
// about subscriptions to logger. A nil logger disables logging.
func NewDispatcherLogger(logger *logmon.LogMonitor) *Dispatcher {
	return &Dispatcher{
		subs: registry{
			keys: make([]EventType, 0, 16),
			grps: make([]any, 0, 16),
		},
		log: logger,
	}
}

// Close disconnects every subscriber. Slots used as owners become
// unattached and later subscriptions fail with ErrClosed.
func (d *Dispatcher) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	for _, grp := range d.subs.grps {
		grp.(closer).Close()
	}
	d.debugf("dispatcher closed, %d event types released", len(d.subs.keys))
	return nil
}

// Lock stops or resumes delivery of one event type without removing
// its subscribers.
func (d *Dispatcher) Lock(eventType EventType, locked bool) {
	if grp := d.findGroup(eventType); grp != nil {
		grp.(locker).SetLock(locked)
	}
}

// findGroup performs a binary search for the event type
func (d *Dispatcher) findGroup(eventType EventType) any {
	if idx, ok := d.search(eventType); ok {
		return d.subs.grps[idx]
	}
	return nil
}

func (d *Dispatcher) search(eventType EventType) (int, bool) {
	keys := d.subs.keys

	left, right := 0, len(keys)
	for left < right {
		mid := left + (right-left)/2
		if keys[mid] < eventType {
			left = mid + 1
		} else {
			right = mid
		}
	}

	return left, left < len(keys) && keys[left] == eventType
}

// insert adds grp at its sorted position
func (d *Dispatcher) insert(eventType EventType, grp any) {
	idx := sort.Search(len(d.subs.keys), func(i int) bool {
		return d.subs.keys[i] >= eventType
	})

	d.subs.keys = append(d.subs.keys, 0)
	d.subs.grps = append(d.subs.grps, nil)
	copy(d.subs.keys[idx+1:], d.subs.keys[idx:])
	copy(d.subs.grps[idx+1:], d.subs.grps[idx:])
	d.subs.keys[idx] = eventType
	d.subs.grps[idx] = grp
}

func (d *Dispatcher) debugf(format string, args ...any) {
	if d.log != nil {
		d.log.Debugf(format, args...)
	}
}

// Subscribe subscribes to an event, the type of the event will be automatically
// inferred from the provided type. Must be constant for this to work.
//
// When owner is not nil, closing it removes the subscription.
func Subscribe[T Event](broker *Dispatcher, handler func(T), owner *signal.Slot) (signal.Connection, error) {
	var event T
	return SubscribeTo(broker, event.Type(), handler, owner)
}

// SubscribeTo subscribes to an event with the specified event type.
func SubscribeTo[T Event](broker *Dispatcher, eventType EventType, handler func(T), owner *signal.Slot) (signal.Connection, error) {
	if broker.closed {
		return signal.Connection{}, ErrClosed
	}
	if handler == nil {
		return signal.Connection{}, signal.ErrNilCallback
	}

	var grp *group[T]
	if existing := broker.findGroup(eventType); existing != nil {
		grp = groupOf[T](eventType, existing)
	} else {
		grp = &group[T]{}
		broker.insert(eventType, grp)
	}

	conn, err := grp.Connect(func(ev T) signal.Void {
		handler(ev)
		return signal.Void{}
	}, owner)
	if err != nil {
		return signal.Connection{}, fmt.Errorf("subscribe to event 0x%x: %w", eventType, err)
	}

	broker.debugf("subscribed %s to event 0x%x (%d subscribers)", grp, eventType, grp.Len())
	return conn, nil
}

// Publish delivers an event to the subscribers of its type.
func Publish[T Event](broker *Dispatcher, ev T) {
	eventType := ev.Type()
	if sub := broker.findGroup(eventType); sub != nil {
		groupOf[T](eventType, sub).Emit(ev)
	}
}

// Count counts the number of subscribers, this is for testing only.
func (d *Dispatcher) count(eventType EventType) int {
	if group := d.findGroup(eventType); group != nil {
		return group.(interface{ Len() int }).Len()
	}
	return 0
}

// groupOf casts the subscriber group to the specified generic type
func groupOf[T Event](eventType EventType, subs any) *group[T] {
	if group, ok := subs.(*group[T]); ok {
		return group
	}

	panic(errConflict[T](eventType, subs))
}

// ------------------------------------- Subscriber Group -------------------------------------

type closer interface{ Close() }

type locker interface{ SetLock(bool) }

// group holds the subscribers of one event type
type group[T Event] struct {
	signal.Signal1[T, signal.Void]
}

// String returns string representation of the type
func (s *group[T]) String() string {
	return reflect.TypeFor[T]().String()
}

// ------------------------------------- Debugging -------------------------------------

// errConflict returns a conflict message
func errConflict[T any](eventType EventType, existing any) string {
	var want T
	return fmt.Sprintf(
		"conflicting event type, want=<%T>, registered=<%s>, event=0x%x",
		want, existing, eventType,
	)
}
