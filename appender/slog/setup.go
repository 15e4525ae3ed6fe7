package slogappender

import (
	"io"
	"log/slog"
	"os"

	"github.com/trickstertwo/xappend"
	"github.com/trickstertwo/xclock"
)

// Format selects the slog handler format.
type Format uint8

const (
	FormatJSON Format = iota + 1
	FormatText
)

// Config is an explicit, code-first configuration for a slog appender.
type Config struct {
	Writer             io.Writer // default: os.Stdout
	MinLevel           xappend.Level
	Format             Format               // JSON (default) or Text
	HandlerOptions     *slog.HandlerOptions // Level is managed through a LevelVar
	TimestampFieldName string               // default "ts"

	// Appenders are extra destinations fed alongside the local output.
	Appenders []xappend.Appender
}

// NewAppender builds the slog appender described by cfg.
func NewAppender(cfg Config) *Appender {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	opts := slog.HandlerOptions{}
	if cfg.HandlerOptions != nil {
		opts = *cfg.HandlerOptions
	}
	var lv slog.LevelVar
	opts.Level = &lv

	var h slog.Handler
	if cfg.Format == FormatText {
		h = slog.NewTextHandler(w, &opts)
	} else {
		h = slog.NewJSONHandler(w, &opts)
	}

	a := NewWithLevelVar(slog.New(h), &lv, cfg.TimestampFieldName)
	a.SetMinLevel(cfg.MinLevel)
	return a
}

// Use builds a slog-backed logger from cfg, sets it as the global logger and
// returns it.
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
