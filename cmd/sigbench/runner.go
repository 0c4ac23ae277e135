package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/mostlygeek/lsignal/config"
	"github.com/mostlygeek/lsignal/event"
	"github.com/mostlygeek/lsignal/signal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result is the outcome of one scenario run.
type Result struct {
	Name       string `cbor:"name"`
	Mode       string `cbor:"mode"`
	Arg        int    `cbor:"arg"`
	Iterations int    `cbor:"iterations"`
	Connected  int    `cbor:"connected"`
	Result     int    `cbor:"result"`
	Calls      []int  `cbor:"calls"`
	ElapsedNs  int64  `cbor:"elapsed_ns"`
}

// callback is the receiver of one scenario callback
type callback struct {
	slot  signal.Slot
	op    config.Op
	calls int
}

func (c *callback) Handle(x int) int {
	c.calls++
	return c.op.Apply(x)
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

type Runner struct {
	tracer trace.Tracer
	events *event.Dispatcher
}

func NewRunner(tracer trace.Tracer, events *event.Dispatcher) *Runner {
	return &Runner{
		tracer: tracer,
		events: events,
	}
}

// Run builds the scenario's signal, dispatches it Iterations times and
// reports the last result.
func (r *Runner) Run(ctx context.Context, sc config.ScenarioConfig) (Result, error) {
	_, span := r.tracer.Start(ctx, "scenario "+sc.Name, trace.WithAttributes(
		attribute.String("scenario.mode", sc.Mode),
		attribute.Int("scenario.callbacks", len(sc.Ops)),
		attribute.Int("scenario.iterations", sc.Iterations),
	))
	defer span.End()

	result, err := r.run(sc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	span.SetAttributes(
		attribute.Int("scenario.result", result.Result),
		attribute.Int("scenario.connected", result.Connected),
	)
	event.Publish(r.events, ScenarioCompletedEvent{Result: result})
	return result, nil
}

func (r *Runner) run(sc config.ScenarioConfig) (Result, error) {
	event.Publish(r.events, ScenarioStartedEvent{Name: sc.Name, Callbacks: len(sc.Ops)})

	sig := signal.New1[int, int]()
	defer sig.Close()

	callbacks := make([]*callback, len(sc.Ops))
	for i, op := range sc.Ops {
		cb := &callback{op: op}
		callbacks[i] = cb

		var owner *signal.Slot
		if slices.Contains(sc.Owned, i) {
			owner = &cb.slot
		}

		conn, err := sig.Connect(cb.Handle, owner)
		if err != nil {
			return Result{}, fmt.Errorf("connect callback #%d: %w", i, err)
		}
		if slices.Contains(sc.Locked, i) {
			conn.SetLock(true)
		}
	}

	if sc.CloseSlots {
		for _, i := range sc.Owned {
			callbacks[i].slot.Close()
		}
	}
	sig.SetLock(sc.LockSignal)

	res := Result{
		Name:       sc.Name,
		Mode:       sc.Mode,
		Arg:        sc.Arg,
		Iterations: sc.Iterations,
		Connected:  sig.Len(),
	}

	start := time.Now()
	for range sc.Iterations {
		if sc.Mode == config.ModeAggregate {
			res.Result = sig.EmitAggregate(sc.Arg, sum)
		} else {
			res.Result = sig.Emit(sc.Arg)
		}
	}
	res.ElapsedNs = time.Since(start).Nanoseconds()

	res.Calls = make([]int, len(callbacks))
	for i, cb := range callbacks {
		res.Calls[i] = cb.calls
	}
	return res, nil
}
