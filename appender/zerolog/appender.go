// Package zerologappender writes entries through rs/zerolog. Importing it
// registers the default appender used by xappend.Default.
package zerologappender

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/trickstertwo/xappend"
)

// Appender renders entries on a zerolog.Logger with a "ts" timestamp, an
// "exception" dict and a "payload" dict. The logger's own level is fixed at
// construction; SetMinLevel moves only the atomic threshold, so it is safe to
// call while other goroutines log.
type Appender struct {
	xappend.Threshold

	l zerolog.Logger
}

func New(l zerolog.Logger) *Appender {
	a := &Appender{l: l}
	a.SetMinLevel(xappend.LevelTrace)
	return a
}

func (a *Appender) Name() string { return "zerolog" }

// Log writes one entry. Fatal is written at error level; zerolog's Fatal
// would exit the process.
func (a *Appender) Log(_ context.Context, e xappend.Entry) error {
	if !a.Enabled(e.Level) {
		return nil
	}
	zlvl := mapLevel(e.Level)
	if zlvl < a.l.GetLevel() {
		return nil
	}

	ev := a.l.WithLevel(zlvl)
	ev.Str("ts", e.Time.UTC().Format(time.RFC3339Nano))
	if exc := e.Exception; exc != nil {
		ev.Dict("exception", zerolog.Dict().
			Str("name", exc.Name).
			Str("message", exc.Message).
			Strs("stack_trace", exc.StackTrace))
	}
	if fields := xappend.Fields(e.Fields).Unique(); len(fields) > 0 {
		payload := zerolog.Dict()
		for i := range fields {
			appendEventField(payload, &fields[i])
		}
		ev.Dict("payload", payload)
	}
	ev.Msg(e.ShortMessage())
	return nil
}

func mapLevel(l xappend.Level) zerolog.Level {
	switch l.Canonical() {
	case xappend.LevelTrace:
		return zerolog.TraceLevel
	case xappend.LevelDebug:
		return zerolog.DebugLevel
	case xappend.LevelInfo:
		return zerolog.InfoLevel
	case xappend.LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func appendEventField(e *zerolog.Event, f *xappend.Field) {
	switch f.Kind {
	case xappend.KindString:
		e.Str(f.K, f.Str)
	case xappend.KindInt64:
		e.Int64(f.K, f.Int64)
	case xappend.KindUint64:
		e.Uint64(f.K, f.Uint64)
	case xappend.KindFloat64:
		e.Float64(f.K, f.Float64)
	case xappend.KindBool:
		e.Bool(f.K, f.Bool)
	case xappend.KindDuration:
		e.Str(f.K, f.Dur.String())
	case xappend.KindTime:
		e.Time(f.K, f.Time)
	case xappend.KindError:
		if f.Err != nil {
			e.AnErr(f.K, f.Err)
		}
	case xappend.KindBytes:
		e.Bytes(f.K, f.Bytes)
	case xappend.KindAny:
		e.Interface(f.K, f.Any)
	default:
		e.Interface(f.K, nil)
	}
}
