// Package logrus forwards logrus entries to xappend appenders, so code that
// already logs through github.com/sirupsen/logrus reaches the same backends.
package logrus

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/trickstertwo/xappend"
)

// Hook is a logrus.Hook that dispatches every fired entry to its appenders
// synchronously. The logrus "error" field becomes the entry's Exception;
// every other field goes to the payload.
type Hook struct {
	appenders []xappend.Appender
	levels    []logrus.Level
}

// NewHook fires for all logrus levels. Appenders keep their own thresholds.
func NewHook(appenders ...xappend.Appender) *Hook {
	return &Hook{appenders: appenders, levels: logrus.AllLevels}
}

// WithLevels restricts the logrus levels the hook fires on.
func (h *Hook) WithLevels(levels ...logrus.Level) *Hook {
	h.levels = levels
	return h
}

func (h *Hook) Levels() []logrus.Level { return h.levels }

func (h *Hook) Fire(le *logrus.Entry) error {
	e := ToEntry(le)
	ctx := le.Context
	if ctx == nil {
		ctx = context.Background()
	}
	var errs []error
	for _, a := range h.appenders {
		if err := a.Log(ctx, e); err != nil {
			name := fmt.Sprintf("%T", a)
			if n, ok := a.(interface{ Name() string }); ok {
				name = n.Name()
			}
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// ToEntry converts a logrus entry. Payload fields are ordered by key.
func ToEntry(le *logrus.Entry) xappend.Entry {
	e := xappend.Entry{
		Time:    le.Time,
		Level:   FromLogrusLevel(le.Level),
		Message: le.Message,
	}
	for _, k := range slices.Sorted(maps.Keys(le.Data)) {
		v := le.Data[k]
		if k == logrus.ErrorKey {
			if err, ok := v.(error); ok {
				e.Exception = callSiteException(err)
				continue
			}
		}
		e.Fields = append(e.Fields, toField(k, v))
	}
	return e
}

// Frames whose function has one of these prefixes belong to the hook or to
// logrus itself and are dropped from the front of a captured stack.
var internalFramePrefixes = []string{
	"github.com/sirupsen/logrus.",
	"github.com/trickstertwo/xappend/bridge/logrus.ToEntry",
	"github.com/trickstertwo/xappend/bridge/logrus.(*Hook).",
	"github.com/trickstertwo/xappend/bridge/logrus.callSiteException",
}

// callSiteException builds the exception for err so that its stack starts
// at the code that called logrus rather than inside the hook.
func callSiteException(err error) *xappend.Exception {
	exc := xappend.NewException(err)
	n := 0
	for n < len(exc.Frames)-1 && isInternalFrame(exc.Frames[n].Function) {
		n++
	}
	if n == 0 {
		return exc
	}
	exc.Frames = exc.Frames[n:]
	exc.StackTrace = exc.StackTrace[n:]
	return exc
}

func isInternalFrame(fn string) bool {
	for _, p := range internalFramePrefixes {
		if strings.HasPrefix(fn, p) {
			return true
		}
	}
	return false
}

// FromLogrusLevel maps panic and fatal to LevelFatal.
func FromLogrusLevel(l logrus.Level) xappend.Level {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel:
		return xappend.LevelFatal
	case logrus.ErrorLevel:
		return xappend.LevelError
	case logrus.WarnLevel:
		return xappend.LevelWarn
	case logrus.InfoLevel:
		return xappend.LevelInfo
	case logrus.DebugLevel:
		return xappend.LevelDebug
	default:
		return xappend.LevelTrace
	}
}

func toField(k string, v any) xappend.Field {
	switch val := v.(type) {
	case string:
		return xappend.Str(k, val)
	case int:
		return xappend.Int(k, val)
	case int64:
		return xappend.Int64(k, val)
	case uint64:
		return xappend.Uint64(k, val)
	case float64:
		return xappend.Float64(k, val)
	case bool:
		return xappend.Bool(k, val)
	case error:
		return xappend.Err(k, val)
	case []byte:
		return xappend.Bytes(k, val)
	default:
		return xappend.Any(k, v)
	}
}
