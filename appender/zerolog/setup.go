package zerologappender

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/trickstertwo/xappend"
	"github.com/trickstertwo/xclock"
)

// Config is an explicit, code-first configuration for a zerolog appender.
type Config struct {
	Writer            io.Writer // default: os.Stdout
	MinLevel          xappend.Level
	Console           bool   // zerolog.ConsoleWriter instead of JSON
	ConsoleTimeFormat string // default time.RFC3339Nano
	Caller            bool
	CallerSkip        int // default 5

	// Appenders are extra destinations fed alongside the local output.
	Appenders []xappend.Appender
}

// NewAppender builds the zerolog appender described by cfg.
func NewAppender(cfg Config) *Appender {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	if cfg.Caller && cfg.CallerSkip <= 0 {
		cfg.CallerSkip = 5
	}

	var zl zerolog.Logger
	if cfg.Console {
		zerolog.TimestampFieldName = "ts"
		cw := zerolog.ConsoleWriter{Out: w, TimeFormat: cfg.ConsoleTimeFormat}
		if cw.TimeFormat == "" {
			cw.TimeFormat = time.RFC3339Nano
		}
		if !cfg.Caller {
			cw.PartsExclude = append(cw.PartsExclude, zerolog.CallerFieldName)
		}
		zl = zerolog.New(cw)
	} else {
		zl = zerolog.New(w)
	}
	if cfg.Caller {
		zerolog.CallerSkipFrameCount = cfg.CallerSkip
		zl = zl.With().Caller().Logger()
	}

	a := New(zl)
	a.SetMinLevel(cfg.MinLevel)
	return a
}

// Use builds a zerolog-backed logger from cfg, sets it as the global logger
// and returns it. The logger reads time from xclock.Default().
func Use(cfg Config) *xappend.Logger {
	b := xappend.NewBuilder().
		WithAppender(NewAppender(cfg)).
		WithMinLevel(cfg.MinLevel).
		WithClock(xclock.Default())
	for _, extra := range cfg.Appenders {
		b.WithAppender(extra)
	}
	logger, err := b.Build()
	if err != nil {
		panic(err)
	}
	xappend.SetGlobal(logger)
	return logger
}
