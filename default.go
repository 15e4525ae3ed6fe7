package xappend

import (
	"io"
	"os"
)

// defaultAppenderFactory is set by an appender package (e.g., appender/zerolog)
// in its init() to avoid import cycles. Default() uses this to build a logger.
var defaultAppenderFactory func(w io.Writer) Appender

// RegisterDefaultAppenderFactory registers the constructor used by xappend.Default().
// Appenders should call this from init() to avoid import cycles.
// Example (in appender/zerolog):
//
//	func init() {
//	  xappend.RegisterDefaultAppenderFactory(func(w io.Writer) xappend.Appender {
//	    return New(zerolog.New(w))
//	  })
//	}
func RegisterDefaultAppenderFactory(f func(io.Writer) Appender) {
	defaultAppenderFactory = f
}

// Default creates a logger using the registered appender factory.
// It writes to os.Stdout at LevelDebug. Side-import
// github.com/trickstertwo/xappend/appender/zerolog to auto-register the
// zerolog console appender. Panics if no factory is registered.
func Default() *Logger {
	if defaultAppenderFactory == nil {
		panic("xappend: no default appender registered. Import appender/zerolog or call xappend.RegisterDefaultAppenderFactory")
	}
	cfg := Config{
		Appenders: []Appender{defaultAppenderFactory(os.Stdout)},
		MinLevel:  LevelDebug,
	}
	return newLogger(cfg)
}

// New creates a default logger (via Default()) and sets it as global.
// It returns the global logger for convenience.
func New() *Logger {
	l := Default()
	SetGlobal(l)
	return l
}

// UseAppenders builds a logger over the given appenders with the provided
// min level, sets it as global and returns it. Single line, explicit, no envs.
func UseAppenders(minLevel Level, appenders ...Appender) (*Logger, error) {
	b := NewBuilder().WithMinLevel(minLevel)
	for _, a := range appenders {
		b.WithAppender(a)
	}
	l, err := b.Build()
	if err != nil {
		return nil, err
	}
	SetGlobal(l)
	return l, nil
}
