// Package graylog notifies a Graylog server of entries using GELF messages
// with syslog severities.
package graylog

import (
	"context"
	"os"

	"github.com/trickstertwo/xappend"
)

// Message is the structured notification handed to a Notifier.
type Message map[string]any

// Notifier delivers one message to Graylog.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

// Syslog severities (RFC 5424) used by GELF.
const (
	SeverityCritical = 2
	SeverityError    = 3
	SeverityWarning  = 4
	SeverityInfo     = 6
	SeverityDebug    = 7
)

// LevelMap assigns a GELF severity to each canonical level.
type LevelMap map[xappend.Level]int

// DefaultLevelMap returns the syslog mapping: trace and debug share Debug.
func DefaultLevelMap() LevelMap {
	return LevelMap{
		xappend.LevelTrace: SeverityDebug,
		xappend.LevelDebug: SeverityDebug,
		xappend.LevelInfo:  SeverityInfo,
		xappend.LevelWarn:  SeverityWarning,
		xappend.LevelError: SeverityError,
		xappend.LevelFatal: SeverityCritical,
	}
}

// Severity maps level; levels missing from m fall back to the default table.
func (m LevelMap) Severity(level xappend.Level) int {
	c := level.Canonical()
	if s, ok := m[c]; ok {
		return s
	}
	return DefaultLevelMap()[c]
}

// Config is an explicit, code-first configuration for the appender.
type Config struct {
	// URL selects the transport when Notifier is nil; see NewNotifier.
	URL      string
	Notifier Notifier

	MinLevel    xappend.Level
	LevelMap    LevelMap // default DefaultLevelMap()
	Host        string   // default os.Hostname()
	Application string   // omitted when empty
	Facility    string   // omitted when empty
}

// Appender maps entries to GELF-shaped messages.
type Appender struct {
	xappend.Threshold

	notifier    Notifier
	levels      LevelMap
	host        string
	application string
	facility    string
}

func New(cfg Config) (*Appender, error) {
	n := cfg.Notifier
	if n == nil {
		url := cfg.URL
		if url == "" {
			url = DefaultURL
		}
		var err error
		if n, err = NewNotifier(url); err != nil {
			return nil, err
		}
	}
	if cfg.LevelMap == nil {
		cfg.LevelMap = DefaultLevelMap()
	}
	if cfg.Host == "" {
		cfg.Host, _ = os.Hostname()
	}
	a := &Appender{
		notifier:    n,
		levels:      cfg.LevelMap,
		host:        cfg.Host,
		application: cfg.Application,
		facility:    cfg.Facility,
	}
	a.SetMinLevel(cfg.MinLevel)
	return a, nil
}

func (a *Appender) Name() string { return "graylog" }

// Map builds the notification for e. Optional sections are absent, never nil.
func (a *Appender) Map(e xappend.Entry) Message {
	m := Message{
		"short_message": e.ShortMessage(),
		"level":         a.levels.Severity(e.Level),
	}
	if !e.Time.IsZero() {
		m["timestamp"] = float64(e.Time.UnixNano()) / 1e9
	}
	if a.host != "" {
		m["host"] = a.host
	}
	if a.application != "" {
		m["application"] = a.application
	}
	if a.facility != "" {
		m["facility"] = a.facility
	}
	if exc := e.Exception; exc != nil {
		m["exception"] = map[string]any{
			"name":        exc.Name,
			"message":     exc.Message,
			"stack_trace": exc.StackTrace,
		}
	}
	if p := e.Payload(); p != nil {
		m["payload"] = p
	}
	return m
}

func (a *Appender) Log(ctx context.Context, e xappend.Entry) error {
	if !a.Enabled(e.Level) {
		return nil
	}
	return a.notifier.Notify(ctx, a.Map(e))
}

// Close releases the notifier's connection when it holds one.
func (a *Appender) Close() error {
	if c, ok := a.notifier.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
