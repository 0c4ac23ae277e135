// Package signal implements an in-process, type-safe multicast callback
// dispatcher.
//
// A [Signal] holds an ordered list of callbacks. [Signal.Connect] appends a
// callback and returns a [Connection] handle which can lock the registration
// or remove it again. A registration can also be tied to a receiver-owned
// [Slot]: closing the slot removes the registration, and closing the signal
// leaves the slot safely unattached.
//
//	type Window struct {
//		resized signal.Slot
//	}
//
//	func (w *Window) OnResize(width, height int) signal.Void { ... }
//
//	resize := signal.New2[int, int, signal.Void]()
//	resize.Connect(w.OnResize, &w.resized)
//	resize.Emit(800, 600)
//
//	w.resized.Close() // resize no longer calls w.OnResize
//
// Signals are not safe for concurrent use. Callbacks may connect and
// disconnect on the signal that is currently calling them.
package signal
