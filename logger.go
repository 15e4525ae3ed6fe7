package xappend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xclock"
)

type Logger struct {
	appenders  []Appender // immutable after construction
	minLevel   Level
	baseFields []Field
	clock      xclock.Clock // nil means xclock.Now()
	onError    ErrorHandler
	metrics    MetricsCollector

	// Observers: lock-free reads via atomic.Value; synchronized updates via obsMu.
	// Stored value is []Observer and MUST be treated as immutable by readers.
	observers atomic.Value // holds []Observer
	obsMu     sync.Mutex
}

// Factory: internal constructor.
func newLogger(cfg Config) *Logger {
	l := &Logger{
		appenders: append([]Appender(nil), cfg.Appenders...),
		minLevel:  cfg.MinLevel,
		clock:     cfg.Clock,
		onError:   cfg.ErrorHandler,
		metrics:   cfg.Metrics,
	}
	if l.onError == nil {
		l.onError = defaultErrorHandler
	}
	if l.metrics == nil {
		l.metrics = NoopMetricsCollector{}
	}
	if len(cfg.Observers) > 0 {
		obs := make([]Observer, len(cfg.Observers))
		copy(obs, cfg.Observers)
		l.observers.Store(obs)
	} else {
		l.observers.Store(([]Observer)(nil))
	}
	return l
}

// Facade: global access (Singleton + Facade).
var global atomic.Pointer[Logger]

// SetGlobal sets the global Logger (Singleton setter).
func SetGlobal(l *Logger) { global.Store(l) }

// L returns the global Logger; panic if unset to surface misconfig early.
func L() *Logger {
	l := global.Load()
	if l == nil {
		panic("xappend: global logger not set. Build one and call xappend.SetGlobal(...)")
	}
	return l
}

// Enabled reports whether logs at 'level' would be emitted by this logger.
// Use to avoid building fields in hot paths when disabled.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.minLevel
}

// Level entry points returning fluent builders.

func (l *Logger) Trace() *Event { return getEvent(l, LevelTrace) }
func (l *Logger) Debug() *Event { return getEvent(l, LevelDebug) }
func (l *Logger) Info() *Event  { return getEvent(l, LevelInfo) }
func (l *Logger) Warn() *Event  { return getEvent(l, LevelWarn) }
func (l *Logger) Error() *Event { return getEvent(l, LevelError) }

// Fatal logs at LevelFatal. It never exits the process.
func (l *Logger) Fatal() *Event { return getEvent(l, LevelFatal) }

// WithLevel returns a builder for an arbitrary level.
func (l *Logger) WithLevel(level Level) *Event { return getEvent(l, level) }

// With returns a child logger with bound fields.
func (l *Logger) With(fs ...Field) *Logger {
	child := &Logger{
		appenders:  l.appenders,
		minLevel:   l.minLevel,
		baseFields: append(copyFields(nil, l.baseFields), fs...),
		clock:      l.clock,
		onError:    l.onError,
		metrics:    l.metrics,
	}
	// Inherit a snapshot of observers.
	child.observers.Store(l.snapshotObservers())
	return child
}

func (l *Logger) snapshotObservers() []Observer {
	v := l.observers.Load()
	if v == nil {
		return nil
	}
	cur := v.([]Observer)
	if len(cur) == 0 {
		return nil
	}
	out := make([]Observer, len(cur))
	copy(out, cur)
	return out
}

func (l *Logger) AddObserver(o Observer) {
	l.obsMu.Lock()
	defer l.obsMu.Unlock()
	cur := l.snapshotObservers()
	cur = append(cur, o)
	l.observers.Store(cur)
}

// Close closes every appender implementing io.Closer and joins their errors.
// Children created with With share appenders; close only the root.
func (l *Logger) Close() error {
	var errs []error
	for _, a := range l.appenders {
		if c, ok := a.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", appenderName(a), err))
			}
		}
	}
	return errors.Join(errs...)
}

func (l *Logger) now() time.Time {
	if l.clock != nil {
		return l.clock.Now()
	}
	return xclock.Now()
}

// emit builds the Entry once and hands it to every appender in order.
// The returned error joins all appender failures.
func (l *Logger) emit(ctx context.Context, level Level, msg string, exc *Exception, evFields []Field) error {
	if level < l.minLevel {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	fields := make([]Field, 0, len(l.baseFields)+len(evFields))
	fields = append(fields, l.baseFields...)
	fields = append(fields, evFields...)

	entry := Entry{
		// Single authoritative timestamp
		Time:      l.now(),
		Level:     level,
		Message:   msg,
		Exception: exc,
		Fields:    fields,
	}

	var errs []error
	for _, a := range l.appenders {
		if le, ok := a.(levelEnabler); ok && !le.Enabled(level) {
			continue
		}
		start := time.Now()
		err := a.Log(ctx, entry)
		name := appenderName(a)
		l.metrics.Appended(name, level, time.Since(start), err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	v := l.observers.Load()
	if v != nil {
		for _, o := range v.([]Observer) {
			o.OnLog(entry)
		}
	}
	return errors.Join(errs...)
}
