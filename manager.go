// FILE: lixenwraith/logmanager/manager.go
package logmanager

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/logmanager/formatter"
)

// Manager owns the file and console pipelines of one process. It is built
// once, installed into a Registry once, and shut down explicitly.
type Manager struct {
	cfg        *Config
	name       string
	path       string
	registry   *Registry
	dispatcher *Dispatcher

	writer         *RollingWriter
	fileChannel    *Channel
	consoleChannel *Channel // nil when the console sink is disabled
	diag           *diagnostics

	state          atomic.Int32 // managerState
	startTime      time.Time
	shutdownCalled atomic.Bool
	done           chan struct{}

	heartbeatStop     chan struct{}
	heartbeatDone     chan struct{}
	heartbeatSequence atomic.Uint64
	lastDropped       uint64 // owned by the heartbeat goroutine
}

// Option customizes Manager construction
type Option func(*options)

type options struct {
	registry      *Registry
	consoleWriter io.Writer
	diagWriter    io.Writer
}

// WithRegistry installs the manager into r instead of DefaultRegistry
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithConsoleWriter replaces stdout/stderr as the console target
func WithConsoleWriter(w io.Writer) Option {
	return func(o *options) {
		o.consoleWriter = w
	}
}

// WithDiagnosticsWriter sends the manager's own diagnostics to w
func WithDiagnosticsWriter(w io.Writer) Option {
	return func(o *options) {
		o.diagWriter = w
	}
}

// New validates cfg, prepares the directory, starts both sink workers,
// installs the dispatcher and opens the first file. On any failure nothing is
// left installed or running, and a rejected install touches no log file.
func New(cfg *Config, opts ...Option) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{registry: DefaultRegistry()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}

	name := cfg.Prefix
	if name == "" {
		binName, err := BinName()
		if err != nil {
			return nil, err
		}
		name = binName
		cfg.Prefix = binName
	}

	dir := cfg.Directory
	if dir == "" {
		resolved, err := ResolveDirectory()
		if err != nil {
			return nil, err
		}
		dir = resolved
		cfg.Directory = resolved
	}

	createdRoot := missingAncestor(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmtErrorf("%w: '%s': %v", ErrDirectoryCreationFailed, dir, err)
	}
	if err := checkWritable(dir); err != nil {
		removeCreatedDirs(dir, createdRoot)
		return nil, fmtErrorf("%w: '%s' is not writable: %v", ErrDirectoryCreationFailed, dir, err)
	}

	m := &Manager{
		cfg:       cfg,
		name:      name,
		path:      dir,
		registry:  o.registry,
		diag:      newDiagnostics(cfg, o.diagWriter),
		startTime: time.Now(),
		done:      make(chan struct{}),
	}

	m.writer = NewRollingWriter(dir, cfg.Prefix, cfg.Suffix, cfg.Rotation, int(cfg.MaxLogFiles))
	m.writer.setAnomalyHandler(m.diag.report)

	channelCfg := ChannelConfig{
		Capacity:       int(cfg.BufferSize),
		EnqueueTimeout: cfg.enqueueTimeout(),
		FlushInterval:  cfg.flushInterval(),
		OnAnomaly:      m.diag.report,
	}

	m.fileChannel = NewChannel("file", m.writer, channelCfg)
	bindings := []Binding{{
		Filter: SeverityFilter{Minimum: cfg.Level},
		Formatter: formatter.New().
			Type(cfg.FileFormat).
			TimestampFormat(cfg.TimestampFormat).
			ShowSource(cfg.ShowSource),
		Channel: m.fileChannel,
	}}

	if cfg.EnableConsole {
		w := o.consoleWriter
		if w == nil {
			w = os.Stdout
			if cfg.ConsoleTarget == "stderr" {
				w = os.Stderr
			}
		}
		m.consoleChannel = NewChannel("console", NewStreamSink(w), channelCfg)
		bindings = append(bindings, Binding{
			Filter: SeverityFilter{Minimum: cfg.Level},
			Formatter: formatter.New().
				Type(cfg.ConsoleFormat).
				TimestampFormat(cfg.TimestampFormat).
				ShowSource(cfg.ShowSource).
				Color(cfg.ConsoleColor),
			Channel: m.consoleChannel,
		})
	}

	m.dispatcher = NewDispatcher(bindings...)

	// The first file is opened, and retention run, only once installed. The
	// worker owns the writer, so it does the opening.
	if err := m.registry.Install(m.dispatcher); err != nil {
		return nil, m.abort(err, dir, createdRoot)
	}
	openInitial := func() error { return m.writer.Open(m.startTime) }
	if err := m.fileChannel.runOnWorker(openInitial, cfg.shutdownTimeout()); err != nil {
		m.registry.uninstall(m.dispatcher)
		return nil, m.abort(fmtErrorf("failed to open initial log file: %w", err), dir, createdRoot)
	}
	m.state.Store(int32(stateInstalled))

	go m.awaitWorkers()

	if cfg.HeartbeatIntervalS > 0 {
		m.startHeartbeat(time.Duration(cfg.HeartbeatIntervalS) * time.Second)
	}

	m.Info(sourceManager, fmt.Sprintf("%s logging files are set at: %s", name, dir))

	return m, nil
}

// abort stops the workers of a manager that was never installed and
// removes the directories New created for it
func (m *Manager) abort(cause error, dir, createdRoot string) error {
	shutdownErr := m.dispatcher.Shutdown(m.cfg.shutdownTimeout())
	_ = m.diag.close()
	removeCreatedDirs(dir, createdRoot)
	return combineErrors(cause, shutdownErr)
}

// checkWritable creates and removes a scratch file in dir
func checkWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".logmanager-*")
	if err != nil {
		return err
	}
	closeErr := f.Close()
	if err := os.Remove(f.Name()); err != nil {
		return err
	}
	return closeErr
}

// missingAncestor returns the topmost ancestor of dir (dir included) that
// does not exist yet, or "" when dir exists
func missingAncestor(dir string) string {
	missing := ""
	for p := filepath.Clean(dir); ; p = filepath.Dir(p) {
		if _, err := os.Stat(p); err == nil {
			return missing
		}
		missing = p
		if parent := filepath.Dir(p); parent == p {
			return missing
		}
	}
}

// removeCreatedDirs removes the empty directories from dir up to root
func removeCreatedDirs(dir, root string) {
	if root == "" {
		return
	}
	for p := filepath.Clean(dir); ; p = filepath.Dir(p) {
		if err := os.Remove(p); err != nil || p == root {
			return
		}
	}
}

// awaitWorkers closes done once every sink worker has exited
func (m *Manager) awaitWorkers() {
	<-m.fileChannel.Done()
	if m.consoleChannel != nil {
		<-m.consoleChannel.Done()
	}
	close(m.done)
}

// Path returns the resolved log directory
func (m *Manager) Path() string {
	return m.path
}

// Name returns the name used as file prefix and in the startup record
func (m *Manager) Name() string {
	return m.name
}

// Config returns a copy of the effective configuration
func (m *Manager) Config() *Config {
	return m.cfg.Clone()
}

// Registry returns the registry the manager is installed in
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Dispatcher returns the installed dispatcher
func (m *Manager) Dispatcher() *Dispatcher {
	return m.dispatcher
}

// Emit dispatches a prepared record; a zero Time is stamped now
func (m *Manager) Emit(r Record) {
	m.dispatcher.Dispatch(r)
}

// Log emits a record at level
func (m *Manager) Log(level Level, source, msg string, fields ...any) {
	m.dispatcher.Log(level, source, msg, fields...)
}

// Enabled reports whether level reaches any sink
func (m *Manager) Enabled(level Level) bool {
	return m.dispatcher.Enabled(level)
}

// Trace logs a message at trace level
func (m *Manager) Trace(source, msg string, fields ...any) {
	m.dispatcher.Log(LevelTrace, source, msg, fields...)
}

// Debug logs a message at debug level
func (m *Manager) Debug(source, msg string, fields ...any) {
	m.dispatcher.Log(LevelDebug, source, msg, fields...)
}

// Info logs a message at info level
func (m *Manager) Info(source, msg string, fields ...any) {
	m.dispatcher.Log(LevelInfo, source, msg, fields...)
}

// Warn logs a message at warning level
func (m *Manager) Warn(source, msg string, fields ...any) {
	m.dispatcher.Log(LevelWarn, source, msg, fields...)
}

// Error logs a message at error level
func (m *Manager) Error(source, msg string, fields ...any) {
	m.dispatcher.Log(LevelError, source, msg, fields...)
}

// Flush waits until both sinks have written and synced what was queued
func (m *Manager) Flush(timeout time.Duration) error {
	return m.dispatcher.Flush(timeout)
}

// Shutdown stops the heartbeat, drains both sinks within timeout (default
// shutdown_timeout_ms) and closes the final file. Records emitted afterwards
// are dropped and counted. Only the first call acts; later calls return nil.
func (m *Manager) Shutdown(timeout ...time.Duration) error {
	if !m.shutdownCalled.CompareAndSwap(false, true) {
		return nil
	}

	m.stopHeartbeat()

	effectiveTimeout := m.cfg.shutdownTimeout()
	if len(timeout) > 0 && timeout[0] > 0 {
		effectiveTimeout = timeout[0]
	}

	finalErr := m.dispatcher.Shutdown(effectiveTimeout)
	if err := m.diag.close(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to close diagnostics: %w", err))
	}
	return finalErr
}

// Done is closed once both sink workers have exited
func (m *Manager) Done() <-chan struct{} {
	return m.done
}
