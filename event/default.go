// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package event

import (
	"github.com/mostlygeek/lsignal/signal"
)

// Default initializes a default in-process dispatcher
var Default = NewDispatcher()

// On subscribes to an event, the type of the event will be automatically
// inferred from the provided type. Must be constant for this to work. This
// functions same way as Subscribe() but uses the default dispatcher instead
// and panics if the default dispatcher was closed.
func On[T Event](handler func(T)) signal.Connection {
	return must(Subscribe(Default, handler, nil))
}

// OnType subscribes to an event with the specified event type. This functions
// same way as SubscribeTo() but uses the default dispatcher instead.
func OnType[T Event](eventType EventType, handler func(T)) signal.Connection {
	return must(SubscribeTo(Default, eventType, handler, nil))
}

// Emit writes an event into the dispatcher. This functions same way as
// Publish() but uses the default dispatcher instead.
func Emit[T Event](ev T) {
	Publish(Default, ev)
}

func must(conn signal.Connection, err error) signal.Connection {
	if err != nil {
		panic(err)
	}
	return conn
}
