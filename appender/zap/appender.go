// Package zapappender writes entries through go.uber.org/zap.
package zapappender

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trickstertwo/xappend"
)

// Appender renders entries on a zap.Logger.
//
// Output shape:
//   - "ts": the Logger's authoritative timestamp, RFC3339Nano in UTC.
//   - "exception": {name, message, stack_trace} when the entry carries one.
//   - "payload": the entry fields, nested with zap.Namespace.
//
// Fatal is written at Error level so library code never exits the process.
type Appender struct {
	xappend.Threshold

	l     *zap.Logger
	al    *zap.AtomicLevel // optional, lets SetMinLevel adjust zap's filter
	tsKey string
}

// New creates an appender for l. Its threshold starts at LevelTrace so zap's
// own level decides.
func New(l *zap.Logger) *Appender {
	return NewWithAtomicLevel(l, nil, "ts")
}

// NewWithAtomicLevel wires al so SetMinLevel also moves zap's filter.
func NewWithAtomicLevel(l *zap.Logger, al *zap.AtomicLevel, tsKey string) *Appender {
	if l == nil {
		l = zap.NewNop()
	}
	if tsKey == "" {
		tsKey = "ts"
	}
	a := &Appender{l: l, al: al, tsKey: tsKey}
	a.Threshold.SetMinLevel(xappend.LevelTrace)
	return a
}

func (a *Appender) Name() string { return "zap" }

// SetMinLevel updates the threshold and, when present, zap's AtomicLevel.
func (a *Appender) SetMinLevel(l xappend.Level) {
	a.Threshold.SetMinLevel(l)
	if a.al != nil {
		a.al.SetLevel(toZapLevel(l))
	}
}

func (a *Appender) Log(_ context.Context, e xappend.Entry) error {
	if !a.Enabled(e.Level) {
		return nil
	}
	// Check avoids building fields when zap would drop the entry.
	ce := a.l.Check(toZapLevel(e.Level), e.ShortMessage())
	if ce == nil {
		return nil
	}

	fields := xappend.Fields(e.Fields).Unique()
	zfs := make([]zap.Field, 0, 3+len(fields))
	zfs = append(zfs, zap.String(a.tsKey, e.Time.UTC().Format(time.RFC3339Nano)))
	if e.Exception != nil {
		zfs = append(zfs, zap.Object("exception", exceptionMarshaler{e.Exception}))
	}
	if len(fields) > 0 {
		// Namespace nests every following field; keep it last.
		zfs = append(zfs, zap.Namespace("payload"))
		for i := range fields {
			zfs = append(zfs, toZapField(&fields[i]))
		}
	}
	ce.Write(zfs...)
	return nil
}

// Sync flushes zap's buffered output.
func (a *Appender) Sync() error { return a.l.Sync() }

type exceptionMarshaler struct{ exc *xappend.Exception }

func (m exceptionMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("name", m.exc.Name)
	enc.AddString("message", m.exc.Message)
	return enc.AddArray("stack_trace", zapcore.ArrayMarshalerFunc(func(ae zapcore.ArrayEncoder) error {
		for _, s := range m.exc.StackTrace {
			ae.AppendString(s)
		}
		return nil
	}))
}

func toZapLevel(l xappend.Level) zapcore.Level {
	switch l.Canonical() {
	case xappend.LevelTrace, xappend.LevelDebug:
		return zapcore.DebugLevel // zap has no trace
	case xappend.LevelInfo:
		return zapcore.InfoLevel
	case xappend.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func toZapField(f *xappend.Field) zap.Field {
	switch f.Kind {
	case xappend.KindString:
		return zap.String(f.K, f.Str)
	case xappend.KindInt64:
		return zap.Int64(f.K, f.Int64)
	case xappend.KindUint64:
		return zap.Uint64(f.K, f.Uint64)
	case xappend.KindFloat64:
		return zap.Float64(f.K, f.Float64)
	case xappend.KindBool:
		return zap.Bool(f.K, f.Bool)
	case xappend.KindDuration:
		return zap.Duration(f.K, f.Dur)
	case xappend.KindTime:
		return zap.Time(f.K, f.Time)
	case xappend.KindError:
		if f.Err == nil {
			return zap.Skip()
		}
		return zap.NamedError(f.K, f.Err)
	case xappend.KindBytes:
		return zap.ByteString(f.K, f.Bytes)
	case xappend.KindAny:
		return zap.Any(f.K, f.Any)
	default:
		return zap.Skip()
	}
}
