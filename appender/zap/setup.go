package zapappender

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trickstertwo/xappend"
	"github.com/trickstertwo/xclock"
)

// Config is an explicit, code-first configuration for a zap appender.
type Config struct {
	Writer             io.Writer // default: os.Stdout
	MinLevel           xappend.Level
	Console            bool                  // zapcore.NewConsoleEncoder instead of JSON
	EncoderConfig      zapcore.EncoderConfig // zero value selects the default below
	Caller             bool
	CallerSkip         int    // default 2
	TimestampFieldName string // default "ts"

	// Appenders are extra destinations fed alongside the local output.
	Appenders []xappend.Appender
}

// NewAppender builds the zap appender described by cfg.
func NewAppender(cfg Config) *Appender {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	if cfg.Caller && cfg.CallerSkip <= 0 {
		cfg.CallerSkip = 2
	}

	encCfg := cfg.EncoderConfig
	if encCfg.LevelKey == "" && encCfg.MessageKey == "" {
		encCfg = zapcore.EncoderConfig{
			LevelKey:       "level",
			MessageKey:     "message",
			CallerKey:      "caller",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}
	}
	// The entry timestamp is written under TimestampFieldName.
	encCfg.TimeKey = ""

	var enc zapcore.Encoder
	if cfg.Console {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	al := zap.NewAtomicLevelAt(toZapLevel(cfg.MinLevel))
	core := zapcore.NewCore(enc, zapcore.AddSync(w), al)

	opts := []zap.Option{zap.AddStacktrace(zapcore.FatalLevel + 1)}
	if cfg.Caller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(cfg.CallerSkip))
	}

	a := NewWithAtomicLevel(zap.New(core, opts...), &al, cfg.TimestampFieldName)
	a.SetMinLevel(cfg.MinLevel)
	return a
}

// Use builds a zap-backed logger from cfg, sets it as the global logger and
// returns it. The logger reads time from xclock.Default().
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
