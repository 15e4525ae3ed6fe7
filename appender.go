package xappend

import (
	"context"
	"sync/atomic"
)

// Appender delivers entries to one backend (Strategy).
// Log receives the Entry carrying the single authoritative timestamp from
// the Logger. Implementations drop entries below their own threshold without
// building a payload and return serialization and transport errors as-is.
type Appender interface {
	Log(ctx context.Context, e Entry) error
}

// levelEnabler is an optional interface letting the Logger skip an appender
// before calling Log.
type levelEnabler interface {
	Enabled(Level) bool
}

// namer is an optional interface providing the metrics label of an appender.
type namer interface {
	Name() string
}

func appenderName(a Appender) string {
	if n, ok := a.(namer); ok {
		return n.Name()
	}
	return "appender"
}

// Threshold holds an appender's minimum level; appenders embed it by value.
// The zero value admits LevelInfo and above. Safe for concurrent use.
type Threshold struct {
	min atomic.Int64
}

func (t *Threshold) SetMinLevel(l Level) { t.min.Store(int64(l)) }

func (t *Threshold) MinLevel() Level { return Level(t.min.Load()) }

// Enabled reports whether entries at level pass the threshold.
func (t *Threshold) Enabled(level Level) bool { return level >= t.MinLevel() }
