// Package slogappender writes entries through log/slog handlers.
package slogappender

import (
	"context"
	"log/slog"

	"github.com/trickstertwo/xappend"
)

// Appender adapts entries to a *slog.Logger using LogAttrs. The exception
// and payload are slog groups.
type Appender struct {
	xappend.Threshold

	l     *slog.Logger
	lv    *slog.LevelVar // optional, lets SetMinLevel adjust the handler
	tsKey string
}

func New(l *slog.Logger) *Appender {
	return NewWithLevelVar(l, nil, "ts")
}

// NewWithLevelVar wires lv so SetMinLevel also moves the handler's level.
func NewWithLevelVar(l *slog.Logger, lv *slog.LevelVar, tsKey string) *Appender {
	if l == nil {
		l = slog.Default()
	}
	if tsKey == "" {
		tsKey = "ts"
	}
	a := &Appender{l: l, lv: lv, tsKey: tsKey}
	a.Threshold.SetMinLevel(xappend.LevelTrace)
	return a
}

func (a *Appender) Name() string { return "slog" }

func (a *Appender) SetMinLevel(l xappend.Level) {
	a.Threshold.SetMinLevel(l)
	if a.lv != nil {
		a.lv.Set(toSlog(l))
	}
}

// Log passes ctx through to the handler. Fatal is logged at error level.
func (a *Appender) Log(ctx context.Context, e xappend.Entry) error {
	if !a.Enabled(e.Level) {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	lvl := toSlog(e.Level)
	if !a.l.Enabled(ctx, lvl) {
		return nil
	}

	attrs := make([]slog.Attr, 0, 3)
	attrs = append(attrs, slog.Time(a.tsKey, e.Time))
	if exc := e.Exception; exc != nil {
		attrs = append(attrs, slog.Group("exception",
			slog.String("name", exc.Name),
			slog.String("message", exc.Message),
			slog.Any("stack_trace", exc.StackTrace),
		))
	}
	if fields := xappend.Fields(e.Fields).Unique(); len(fields) > 0 {
		payload := make([]any, len(fields))
		for i := range fields {
			payload[i] = toAttr(fields[i])
		}
		attrs = append(attrs, slog.Group("payload", payload...))
	}
	a.l.LogAttrs(ctx, lvl, e.ShortMessage(), attrs...)
	return nil
}

// toSlog keeps xappend's numeric levels, which share slog's scale, but caps
// Fatal at error.
func toSlog(l xappend.Level) slog.Level {
	if l > xappend.LevelError {
		return slog.LevelError
	}
	return slog.Level(l)
}

func toAttr(f xappend.Field) slog.Attr {
	switch f.Kind {
	case xappend.KindString:
		return slog.String(f.K, f.Str)
	case xappend.KindInt64:
		return slog.Int64(f.K, f.Int64)
	case xappend.KindUint64:
		return slog.Uint64(f.K, f.Uint64)
	case xappend.KindFloat64:
		return slog.Float64(f.K, f.Float64)
	case xappend.KindBool:
		return slog.Bool(f.K, f.Bool)
	case xappend.KindDuration:
		return slog.String(f.K, f.Dur.String())
	case xappend.KindTime:
		return slog.Time(f.K, f.Time)
	case xappend.KindError:
		if f.Err == nil {
			return slog.Any(f.K, nil)
		}
		return slog.String(f.K, f.Err.Error())
	case xappend.KindBytes:
		return slog.String(f.K, string(f.Bytes))
	case xappend.KindAny:
		return slog.Any(f.K, f.Any)
	default:
		return slog.Any(f.K, nil)
	}
}
