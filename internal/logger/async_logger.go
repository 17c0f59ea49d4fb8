// internal/logger/async_logger.go

package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// State is the lifecycle state of an AsyncLogger.
type State int32

const (
	StateCreated  State = iota // sink opened, worker not yet scheduled
	StateRunning               // accepting lines, worker draining
	StateStopping              // Close called, worker finishing the backlog
	StateStopped               // worker exited, sink closed
)

var stateNames = map[State]string{
	StateCreated:  "created",
	StateRunning:  "running",
	StateStopping: "stopping",
	StateStopped:  "stopped",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// previewLength limits how much of a failed line is quoted in diagnostics.
const previewLength = 120

// sink is the destination owned by one AsyncLogger.
type sink interface {
	io.Writer
	Sync() error
	Close() error
}

// Options tune every AsyncLogger created by a Registry.
type Options struct {
	// QueueLimit caps the number of pending lines. Zero keeps the queue unbounded.
	// When the cap is reached new lines are dropped and counted.
	QueueLimit int

	// FailureReportInterval throttles write failure diagnostics. Zero means one per second.
	FailureReportInterval time.Duration

	// AppLogger receives diagnostics and fallback copies of lines that failed to write.
	// Nil means GetAppLogger().
	AppLogger *AppLogger

	// Console is the writer behind the console destination. Nil means os.Stdout.
	Console io.Writer
}

func (o Options) withDefaults() Options {
	if o.FailureReportInterval <= 0 {
		o.FailureReportInterval = time.Second
	}
	if o.AppLogger == nil {
		o.AppLogger = GetAppLogger()
	}
	if o.QueueLimit < 0 {
		o.QueueLimit = 0
	}
	return o
}

// Stats is a snapshot of an AsyncLogger's counters.
type Stats struct {
	Enqueued      uint64 `json:"enqueued"`
	Written       uint64 `json:"written"`
	Dropped       uint64 `json:"dropped"`  // over the queue limit
	Rejected      uint64 `json:"rejected"` // logged after Close
	WriteFailures uint64 `json:"write_failures"`
	Pending       int    `json:"pending"`
}

// AsyncLogger writes rendered lines to a single destination from one background worker.
// Log never touches the destination; it only appends to the in-memory queue.
type AsyncLogger struct {
	key       string
	sink      sink
	opts      Options
	appLogger *AppLogger

	mu      sync.Mutex
	cond    *sync.Cond // wakes the worker
	flushed *sync.Cond // wakes Flush callers
	queue   []string
	spare   []string
	running bool
	exited  bool

	// Sequence numbers of lines accepted into the queue and lines handed to the sink.
	enqueuedSeq uint64
	writtenSeq  uint64

	state         atomic.Int32
	written       atomic.Uint64
	dropped       atomic.Uint64
	rejected      atomic.Uint64
	writeFailures atomic.Uint64
	reportedDrops uint64 // worker only

	buf           []byte // worker only
	failureReport rate.Sometimes

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// newAsyncLogger takes ownership of s and starts the worker.
func newAsyncLogger(key string, s sink, opts Options) *AsyncLogger {
	opts = opts.withDefaults()
	l := &AsyncLogger{
		key:           key,
		sink:          s,
		opts:          opts,
		appLogger:     opts.AppLogger,
		running:       true,
		failureReport: rate.Sometimes{Interval: opts.FailureReportInterval},
		done:          make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	l.flushed = sync.NewCond(&l.mu)
	l.state.Store(int32(StateCreated))

	go l.processLogs()
	return l
}

// Key returns the destination key the logger is registered under.
func (l *AsyncLogger) Key() string {
	return l.key
}

// State returns the current lifecycle state.
func (l *AsyncLogger) State() State {
	return State(l.state.Load())
}

// Log renders the record and queues it for the worker.
// Lines logged after Close are rejected; lines beyond the queue limit are dropped.
// Both are counted.
func (l *AsyncLogger) Log(record Record) {
	line := Render(record)

	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		l.rejected.Add(1)
		return
	}
	if l.opts.QueueLimit > 0 && len(l.queue) >= l.opts.QueueLimit {
		l.mu.Unlock()
		l.dropped.Add(1)
		return
	}
	l.queue = append(l.queue, line)
	l.enqueuedSeq++
	l.mu.Unlock()

	l.cond.Signal()
}

// LogMessage logs a message with a context tag and level.
func (l *AsyncLogger) LogMessage(message, context string, level Level) {
	l.Log(MakeRecord(message, context, level))
}

// LogLevel logs a message without context at the given level.
func (l *AsyncLogger) LogLevel(message string, level Level) {
	l.Log(MakeRecord(message, "", level))
}

// Info logs a message without context at INFO level.
func (l *AsyncLogger) Info(message string) {
	l.Log(MakeRecord(message, "", LevelInfo))
}

// Flush blocks until every line queued before the call has been written, then syncs the sink.
func (l *AsyncLogger) Flush() error {
	l.mu.Lock()
	if l.exited {
		l.mu.Unlock()
		return fmt.Errorf("flush '%s': %w", l.key, ErrClosed)
	}
	target := l.enqueuedSeq
	for l.writtenSeq < target && !l.exited {
		l.flushed.Wait()
	}
	l.mu.Unlock()

	if l.State() == StateStopped {
		return fmt.Errorf("flush '%s': %w", l.key, ErrClosed)
	}
	if err := l.sink.Sync(); err != nil {
		if errors.Is(err, os.ErrClosed) {
			return fmt.Errorf("flush '%s': %w", l.key, ErrClosed)
		}
		return fmt.Errorf("failed to sync log destination '%s': %w", l.key, err)
	}
	return nil
}

// Stats returns a snapshot of the logger's counters.
func (l *AsyncLogger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Enqueued:      l.enqueuedSeq,
		Written:       l.written.Load(),
		Dropped:       l.dropped.Load(),
		WriteFailures: l.writeFailures.Load(),
		Pending:       len(l.queue),
	}
}

// Close stops accepting lines, waits for the worker to drain the queue,
// syncs the destination to stable storage and closes it. It is safe to call more than once.
func (l *AsyncLogger) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.running = false
		l.state.Store(int32(StateStopping))
		l.mu.Unlock()
		l.cond.Broadcast()

		<-l.done

		if err := l.sink.Sync(); err != nil {
			l.closeErr = fmt.Errorf("failed to sync log destination '%s': %w", l.key, err)
		}
		if err := l.sink.Close(); err != nil && l.closeErr == nil {
			l.closeErr = fmt.Errorf("failed to close log destination '%s': %w", l.key, err)
		}
		l.state.Store(int32(StateStopped))
	})
	return l.closeErr
}

// processLogs is the worker loop. It keeps running while the logger is running
// or lines are still queued, so Close never discards the backlog.
func (l *AsyncLogger) processLogs() {
	defer close(l.done)

	l.state.CompareAndSwap(int32(StateCreated), int32(StateRunning))

	l.mu.Lock()
	for l.running || len(l.queue) > 0 {
		for len(l.queue) == 0 && l.running {
			l.cond.Wait()
		}

		batch := l.queue
		l.queue = l.spare[:0]
		l.mu.Unlock()

		for _, line := range batch {
			if l.writeLine(line) {
				l.written.Add(1)
			}
		}
		l.reportDrops()

		l.mu.Lock()
		l.writtenSeq += uint64(len(batch))
		clear(batch)
		l.spare = batch
		l.flushed.Broadcast()
	}
	l.exited = true
	l.flushed.Broadcast()
	l.mu.Unlock()
}

// writeLine appends one line and a terminator to the sink.
// A failed write is counted, reported and copied to the diagnostic stream.
func (l *AsyncLogger) writeLine(line string) bool {
	l.buf = append(l.buf[:0], line...)
	l.buf = append(l.buf, '\n')

	if _, err := l.sink.Write(l.buf); err != nil {
		failures := l.writeFailures.Add(1)
		l.failureReport.Do(func() {
			l.appLogger.Error("Log destination '%s': write failed (%d failures so far): %v; line: %s",
				l.key, failures, err, truncateString(line, previewLength))
		})
		l.appLogger.Raw(l.buf)
		return false
	}
	return true
}

// reportDrops writes a warning line to the sink when lines were dropped since the last report.
func (l *AsyncLogger) reportDrops() {
	dropped := l.dropped.Load()
	if dropped <= l.reportedDrops {
		return
	}
	delta := dropped - l.reportedDrops
	l.reportedDrops = dropped

	msg := fmt.Sprintf("dropped %d lines (total %d, queue limit %d)", delta, dropped, l.opts.QueueLimit)
	l.appLogger.Warn("Log destination '%s': %s", l.key, msg)
	l.writeLine(Render(MakeRecord(msg, "asynclog", LevelWarning)))
}
