package logmon

import (
	"container/ring"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mostlygeek/lsignal/signal"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel maps a config value to a LogLevel. Unknown values are info.
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LogMonitor is an io.Writer that copies everything to an upstream writer,
// keeps a bounded history and hands every write to its data listeners.
// It is safe for concurrent use. Listeners may cancel themselves but must
// not write back to the monitor that is calling them.
type LogMonitor struct {
	mu       sync.Mutex
	stdout   io.Writer
	buffer   *ring.Ring
	listener signal.Signal1[[]byte, signal.Void]

	listeners map[*dataListener]struct{}
	emitting  atomic.Bool

	level      LogLevel
	prefix     string
	timeFormat string
}

func NewLogMonitor() *LogMonitor {
	return NewLogMonitorWriter(os.Stdout)
}

func NewLogMonitorWriter(stdout io.Writer) *LogMonitor {
	return &LogMonitor{
		stdout:    stdout,
		buffer:    ring.New(10 * 1024), // keep 10K chunks of buffered logs
		listeners: make(map[*dataListener]struct{}),
		level:     LevelInfo,
	}
}

func (w *LogMonitor) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.stdout.Write(p)
	if err != nil {
		return n, err
	}

	// callers may reuse p
	content := make([]byte, len(p))
	copy(content, p)

	w.buffer.Value = content
	w.buffer = w.buffer.Next()
	w.emitting.Store(true)
	defer func() {
		w.emitting.Store(false)
		w.sweep()
	}()
	w.listener.Emit(content)
	return n, nil
}

func (w *LogMonitor) GetHistory() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()

	var history []byte
	w.buffer.Do(func(p any) {
		if content, ok := p.([]byte); ok {
			history = append(history, content...)
		}
	})
	return history
}

// dataListener wraps one OnLogData callback.
type dataListener struct {
	fn        func(data []byte)
	conn      signal.Connection
	cancelled atomic.Bool
}

func (l *dataListener) call(data []byte) signal.Void {
	if !l.cancelled.Load() {
		l.fn(data)
	}
	return signal.Void{}
}

// OnLogData registers fn for every chunk written to the monitor.
// The returned function removes it again. It may be called from inside a
// listener, in which case the removal completes when the write returns.
func (w *LogMonitor) OnLogData(fn func(data []byte)) context.CancelFunc {
	if fn == nil {
		return func() {}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	l := &dataListener{fn: fn}
	conn, err := w.listener.Connect(l.call, nil)
	if err != nil {
		// the listener signal is never closed and has no owners
		panic(fmt.Sprintf("logmon: connect listener: %v", err))
	}
	l.conn = conn
	w.listeners[l] = struct{}{}

	return func() {
		l.cancelled.Store(true)
		if w.emitting.Load() {
			// the emitting write sweeps it
			return
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		w.drop(l)
	}
}

func (w *LogMonitor) drop(l *dataListener) {
	l.conn.Disconnect()
	delete(w.listeners, l)
}

// sweep removes listeners cancelled during the last emit. Called with w.mu held.
func (w *LogMonitor) sweep() {
	for l := range w.listeners {
		if l.cancelled.Load() {
			w.drop(l)
		}
	}
}

// Pause stops delivering writes to listeners until resumed.
// The history and the upstream writer are not affected.
func (w *LogMonitor) Pause(paused bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listener.SetLock(paused)
}

// Listeners returns the number of registered data listeners.
func (w *LogMonitor) Listeners() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.listener.Len()
}

func (w *LogMonitor) SetLogLevel(level LogLevel) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.level = level
}

func (w *LogMonitor) SetPrefix(prefix string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prefix = prefix
}

// SetLogTimeFormat enables a timestamp at the start of every line.
// An empty format disables it.
func (w *LogMonitor) SetLogTimeFormat(format string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timeFormat = format
}

func (w *LogMonitor) formatMessage(level LogLevel, msg string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if level < w.level {
		return "", false
	}

	var b strings.Builder
	if w.timeFormat != "" {
		b.WriteString(time.Now().Format(w.timeFormat))
		b.WriteByte(' ')
	}
	if w.prefix != "" {
		b.WriteString("[" + w.prefix + "] ")
	}
	b.WriteString("[" + level.String() + "] ")
	b.WriteString(msg)
	if !strings.HasSuffix(msg, "\n") {
		b.WriteByte('\n')
	}
	return b.String(), true
}

func (w *LogMonitor) log(level LogLevel, msg string) {
	if line, ok := w.formatMessage(level, msg); ok {
		w.Write([]byte(line))
	}
}

func (w *LogMonitor) Debug(msg string) { w.log(LevelDebug, msg) }
func (w *LogMonitor) Info(msg string)  { w.log(LevelInfo, msg) }
func (w *LogMonitor) Warn(msg string)  { w.log(LevelWarn, msg) }
func (w *LogMonitor) Error(msg string) { w.log(LevelError, msg) }

func (w *LogMonitor) Debugf(format string, args ...any) {
	w.log(LevelDebug, fmt.Sprintf(format, args...))
}

func (w *LogMonitor) Infof(format string, args ...any) {
	w.log(LevelInfo, fmt.Sprintf(format, args...))
}

func (w *LogMonitor) Warnf(format string, args ...any) {
	w.log(LevelWarn, fmt.Sprintf(format, args...))
}

func (w *LogMonitor) Errorf(format string, args ...any) {
	w.log(LevelError, fmt.Sprintf(format, args...))
}
