package main

// sigbench runs the dispatch scenarios described in a YAML file against
// signal.Signal and writes a report of the results.
//
// usage: go run ./cmd/sigbench -config sigbench.yaml -o report.json

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mostlygeek/lsignal/config"
	"github.com/mostlygeek/lsignal/event"
	"github.com/mostlygeek/lsignal/logmon"
)

var version string = "0"
var commit string = "abcd1234"
var date = "unknown"

func main() {
	// ----- CLI arguments ----------------------------------------------------
	configPath := flag.String("config", "sigbench.yaml", "config file name")
	outPath := flag.String("o", "-", "report output file, - for stdout")
	format := flag.String("format", FormatJSON, "report format: json or cbor")
	compress := flag.Bool("gzip", false, "gzip the report")
	only := flag.String("scenario", "", "run only the named scenario")
	showVersion := flag.Bool("version", false, "show version of build")
	showExample := flag.Bool("example", false, "print an example config and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s (%s), built at %s\n", version, commit, date)
		os.Exit(0)
	}

	if *showExample {
		os.Stdout.Write(GetConfigExampleYAML())
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := logmon.NewLogMonitorWriter(os.Stderr)
	logger.SetPrefix("sigbench")
	logger.SetLogLevel(logmon.ParseLevel(cfg.LogLevel))
	logger.SetLogTimeFormat(cfg.LogTimeFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *only, *outPath, *format, *compress); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *logmon.LogMonitor, only, outPath, format string, compress bool) error {
	tp, err := setupTracing(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("tracer shutdown: %v", err)
		}
	}()

	events := event.NewDispatcherLogger(logger)
	defer events.Close()

	if _, err := event.Subscribe(events, func(e ScenarioStartedEvent) {
		logger.Infof("running %s with %d callbacks", e.Name, e.Callbacks)
	}, nil); err != nil {
		return err
	}
	if _, err := event.Subscribe(events, func(e ScenarioCompletedEvent) {
		logger.Infof("%s: result=%d connected=%d in %s",
			e.Result.Name, e.Result.Result, e.Result.Connected, time.Duration(e.Result.ElapsedNs))
	}, nil); err != nil {
		return err
	}

	report := NewReport(version)
	if err := report.Collect(events); err != nil {
		return err
	}

	scenarios := cfg.Scenarios
	if only != "" {
		sc, found := cfg.FindScenario(only)
		if !found {
			return fmt.Errorf("scenario %s not found", only)
		}
		scenarios = []config.ScenarioConfig{sc}
	}

	runner := NewRunner(tp.Tracer("github.com/mostlygeek/lsignal/cmd/sigbench"), events)
	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			logger.Warn("interrupted, writing partial report")
			break
		}
		if _, err := runner.Run(ctx, sc); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}
	report.Stop()

	return writeReport(report, outPath, format, compress)
}

// createOutput opens the report file, replaced in tests
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeReport writes to stdout when path is "-". A failed close of the
// output file is reported like a failed write.
func writeReport(report *Report, path, format string, compress bool) (err error) {
	if path == "-" {
		return report.Write(os.Stdout, format, compress)
	}

	file, err := createOutput(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report: %w", cerr)
		}
	}()

	return report.Write(file, format, compress)
}
