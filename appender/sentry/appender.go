// Package sentry reports entries to Sentry as events.
package sentry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/trickstertwo/xappend"
)

// ErrNotCaptured is returned when the hub drops an event (sampling, a
// BeforeSend hook, or a disabled client).
var ErrNotCaptured = errors.New("sentry: event not captured")

// Hub is the part of *sentry.Hub the appender uses.
type Hub interface {
	CaptureEvent(event *sentry.Event) *sentry.EventID
	Flush(timeout time.Duration) bool
}

type LevelMap map[xappend.Level]sentry.Level

func DefaultLevelMap() LevelMap {
	return LevelMap{
		xappend.LevelTrace: sentry.LevelDebug,
		xappend.LevelDebug: sentry.LevelDebug,
		xappend.LevelInfo:  sentry.LevelInfo,
		xappend.LevelWarn:  sentry.LevelWarning,
		xappend.LevelError: sentry.LevelError,
		xappend.LevelFatal: sentry.LevelFatal,
	}
}

func (m LevelMap) Level(level xappend.Level) sentry.Level {
	c := level.Canonical()
	if l, ok := m[c]; ok {
		return l
	}
	return DefaultLevelMap()[c]
}

type Config struct {
	// DSN configures the default hub when Hub is nil. An empty DSN yields a
	// client that discards events.
	DSN         string
	Environment string
	Release     string
	Hub         Hub

	// MinLevel defaults to xappend.LevelError. Sentry is for problems.
	MinLevel     *xappend.Level
	LevelMap     LevelMap
	ServerName   string        // default os.Hostname()
	FlushTimeout time.Duration // used by Close; default 2s
}

type Appender struct {
	xappend.Threshold

	hub          Hub
	levels       LevelMap
	serverName   string
	flushTimeout time.Duration
}

func New(cfg Config) (*Appender, error) {
	hub := cfg.Hub
	if hub == nil {
		client, err := sentry.NewClient(sentry.ClientOptions{
			Dsn:         cfg.DSN,
			Environment: cfg.Environment,
			Release:     cfg.Release,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create sentry client: %w", err)
		}
		hub = sentry.NewHub(client, sentry.NewScope())
	}
	if cfg.LevelMap == nil {
		cfg.LevelMap = DefaultLevelMap()
	}
	if cfg.ServerName == "" {
		cfg.ServerName, _ = os.Hostname()
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 2 * time.Second
	}
	a := &Appender{
		hub:          hub,
		levels:       cfg.LevelMap,
		serverName:   cfg.ServerName,
		flushTimeout: cfg.FlushTimeout,
	}
	minLevel := xappend.LevelError
	if cfg.MinLevel != nil {
		minLevel = *cfg.MinLevel
	}
	a.SetMinLevel(minLevel)
	return a, nil
}

func (a *Appender) Name() string { return "sentry" }

// Map builds the Sentry event for e. Stack frames are ordered oldest first
// as Sentry expects.
func (a *Appender) Map(e xappend.Entry) *sentry.Event {
	ev := sentry.NewEvent()
	ev.Level = a.levels.Level(e.Level)
	ev.Message = e.ShortMessage()
	ev.Timestamp = e.Time
	ev.ServerName = a.serverName
	ev.Logger = "xappend"
	if p := e.Payload(); p != nil {
		ev.Extra = p
	}
	if exc := e.Exception; exc != nil {
		se := sentry.Exception{Type: exc.Name, Value: exc.Message}
		if n := len(exc.Frames); n > 0 {
			frames := make([]sentry.Frame, 0, n)
			for i := n - 1; i >= 0; i-- {
				f := exc.Frames[i]
				frames = append(frames, sentry.Frame{
					Function: f.Function,
					AbsPath:  f.File,
					Lineno:   f.Line,
					InApp:    true,
				})
			}
			se.Stacktrace = &sentry.Stacktrace{Frames: frames}
		}
		ev.Exception = []sentry.Exception{se}
	}
	return ev
}

func (a *Appender) Log(_ context.Context, e xappend.Entry) error {
	if !a.Enabled(e.Level) {
		return nil
	}
	if id := a.hub.CaptureEvent(a.Map(e)); id == nil {
		return ErrNotCaptured
	}
	return nil
}

// Close flushes buffered events.
func (a *Appender) Close() error {
	if !a.hub.Flush(a.flushTimeout) {
		return fmt.Errorf("sentry: flush timed out after %s", a.flushTimeout)
	}
	return nil
}
