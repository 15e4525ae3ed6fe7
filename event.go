package xappend

import (
	"context"
	"sync"
	"time"
)

// Event is a fluent builder (Builder pattern) for a single log entry.
// API: Logger().Error().Err(err).Str("file", path).Msg("reading file")

type Event struct {
	l      *Logger
	level  Level
	ctx    context.Context
	exc    *Exception
	fields []Field
}

var eventPool = sync.Pool{
	New: func() any { return &Event{fields: make([]Field, 0, 8)} },
}

func getEvent(l *Logger, level Level) *Event {
	ev := eventPool.Get().(*Event)
	ev.l = l
	ev.level = level
	ev.fields = ev.fields[:0]
	return ev
}

func (e *Event) putBack() {
	// allow GC of large backing arrays by capping
	if cap(e.fields) > 128 {
		e.fields = make([]Field, 0, 8)
	}
	e.l = nil
	e.level = 0
	e.ctx = nil
	e.exc = nil
	eventPool.Put(e)
}

// Field builders (zerolog-style)

func (e *Event) Str(k, v string) *Event {
	e.fields = append(e.fields, Field{K: k, Kind: KindString, Str: v})
	return e
}

func (e *Event) Int(k string, v int) *Event { return e.Int64(k, int64(v)) }

func (e *Event) Int64(k string, v int64) *Event {
	e.fields = append(e.fields, Field{K: k, Kind: KindInt64, Int64: v})
	return e
}

func (e *Event) Uint64(k string, v uint64) *Event {
	e.fields = append(e.fields, Field{K: k, Kind: KindUint64, Uint64: v})
	return e
}

func (e *Event) Float64(k string, v float64) *Event {
	e.fields = append(e.fields, Field{K: k, Kind: KindFloat64, Float64: v})
	return e
}

func (e *Event) Bool(k string, v bool) *Event {
	e.fields = append(e.fields, Field{K: k, Kind: KindBool, Bool: v})
	return e
}

func (e *Event) Dur(k string, v time.Duration) *Event {
	e.fields = append(e.fields, Field{K: k, Kind: KindDuration, Dur: v})
	return e
}

func (e *Event) Time(k string, v time.Time) *Event {
	e.fields = append(e.fields, Field{K: k, Kind: KindTime, Time: v})
	return e
}

func (e *Event) Bytes(k string, v []byte) *Event {
	e.fields = append(e.fields, Field{K: k, Kind: KindBytes, Bytes: v})
	return e
}

func (e *Event) Any(k string, v any) *Event {
	e.fields = append(e.fields, Field{K: k, Kind: KindAny, Any: v})
	return e
}

// Fields appends pre-built fields.
func (e *Event) Fields(fs ...Field) *Event {
	e.fields = append(e.fields, fs...)
	return e
}

// Err attaches err as the entry's exception, with the stack captured here.
// A nil error is ignored.
func (e *Event) Err(err error) *Event {
	if err == nil || !e.l.Enabled(e.level) {
		return e
	}
	e.exc = newExceptionAt(err, 1)
	return e
}

// Ctx sets the context handed to appenders.
func (e *Event) Ctx(ctx context.Context) *Event {
	e.ctx = ctx
	return e
}

// Msg terminates the builder and emits the event. Appender failures go to
// the Logger's ErrorHandler.
func (e *Event) Msg(msg string) {
	onError := e.l.onError
	if err := e.Emit(msg); err != nil {
		onError(err)
	}
}

// Send emits the event without a message; the short message is derived from
// the exception.
func (e *Event) Send() { e.Msg("") }

// Emit terminates the builder, emits the event and returns the joined
// appender errors instead of reporting them.
func (e *Event) Emit(msg string) error {
	err := e.l.emit(e.ctx, e.level, msg, e.exc, e.fields)
	e.putBack()
	return err
}
