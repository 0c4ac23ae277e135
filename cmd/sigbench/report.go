package main

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/mostlygeek/lsignal/event"
	"github.com/mostlygeek/lsignal/signal"
	"github.com/tidwall/sjson"
)

const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

type Report struct {
	Version   string   `cbor:"version"`
	Scenarios []Result `cbor:"scenarios"`

	slot signal.Slot
}

func NewReport(version string) *Report {
	return &Report{
		Version:   version,
		Scenarios: []Result{},
	}
}

// Collect adds every completed scenario published on events to the report
// until Stop is called.
func (r *Report) Collect(events *event.Dispatcher) error {
	_, err := event.Subscribe(events, r.onCompleted, &r.slot)
	return err
}

func (r *Report) Stop() {
	r.slot.Close()
}

func (r *Report) onCompleted(e ScenarioCompletedEvent) {
	r.Scenarios = append(r.Scenarios, e.Result)
}

func (r *Report) JSON() ([]byte, error) {
	var err error
	out := []byte(`{}`)

	if out, err = sjson.SetBytes(out, "version", r.Version); err != nil {
		return nil, err
	}
	if out, err = sjson.SetRawBytes(out, "scenarios", []byte(`[]`)); err != nil {
		return nil, err
	}

	for i, res := range r.Scenarios {
		fields := []struct {
			key   string
			value any
		}{
			{"name", res.Name},
			{"mode", res.Mode},
			{"arg", res.Arg},
			{"iterations", res.Iterations},
			{"connected", res.Connected},
			{"result", res.Result},
			{"calls", res.Calls},
			{"elapsed_ns", res.ElapsedNs},
		}
		for _, f := range fields {
			path := fmt.Sprintf("scenarios.%d.%s", i, f.key)
			if out, err = sjson.SetBytes(out, path, f.value); err != nil {
				return nil, fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return out, nil
}

func (r *Report) CBOR() ([]byte, error) {
	return cbor.Marshal(r)
}

// Write encodes the report in the given format, optionally gzip compressed.
func (r *Report) Write(w io.Writer, format string, compress bool) (err error) {
	var data []byte
	switch format {
	case FormatJSON:
		data, err = r.JSON()
		data = append(data, '\n')
	case FormatCBOR:
		data, err = r.CBOR()
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
	if err != nil {
		return err
	}

	if !compress {
		_, err = w.Write(data)
		return err
	}

	gz := gzip.NewWriter(w)
	if _, err = gz.Write(data); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}
