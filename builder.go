package xappend

import "github.com/trickstertwo/xclock"

// Config for constructing a Logger (Factory data structure).
type Config struct {
	Appenders    []Appender
	MinLevel     Level
	Observers    []Observer
	Clock        xclock.Clock     // optional; defaults to xclock.Default()
	ErrorHandler ErrorHandler     // optional; defaults to stderr
	Metrics      MetricsCollector // optional; defaults to NoopMetricsCollector
}

// Builder separates construction from representation (Builder pattern).
type Builder struct {
	cfg Config
}

func NewBuilder() *Builder {
	return &Builder{cfg: Config{MinLevel: LevelInfo}}
}

// WithAppender adds a destination; entries fan out in registration order.
func (b *Builder) WithAppender(a Appender) *Builder {
	if a != nil {
		b.cfg.Appenders = append(b.cfg.Appenders, a)
	}
	return b
}

func (b *Builder) WithMinLevel(l Level) *Builder {
	b.cfg.MinLevel = l
	return b
}

func (b *Builder) WithClock(c xclock.Clock) *Builder {
	b.cfg.Clock = c
	return b
}

func (b *Builder) WithErrorHandler(h ErrorHandler) *Builder {
	b.cfg.ErrorHandler = h
	return b
}

func (b *Builder) WithMetrics(m MetricsCollector) *Builder {
	b.cfg.Metrics = m
	return b
}

func (b *Builder) AddObserver(o Observer) *Builder {
	b.cfg.Observers = append(b.cfg.Observers, o)
	return b
}

// Build constructs the Logger (Factory + Builder).
func (b *Builder) Build() (*Logger, error) {
	if len(b.cfg.Appenders) == 0 {
		return nil, ErrNoAppender
	}
	return newLogger(b.cfg), nil
}
