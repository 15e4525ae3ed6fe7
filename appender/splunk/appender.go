// Package splunk submits entries to a Splunk index. The default service is
// the HTTP Event Collector.
package splunk

import (
	"context"
	"os"

	"github.com/trickstertwo/xappend"
)

// DefaultSource is the event source when Config.Source is empty.
const DefaultSource = "xappend"

// Event is the indexed event: the "event" key holds the structured body,
// the remaining keys are HEC metadata.
type Event map[string]any

// Service submits one event with its free-text message.
type Service interface {
	Submit(ctx context.Context, message string, event Event) error
}

type Config struct {
	// URL is the HEC base URL, e.g. https://splunk:8088. Ignored when
	// Service is set.
	URL     string
	Service Service

	// Headers are added to every HEC request, typically
	// Authorization: Splunk <token>.
	Headers    map[string]string
	HTTPClient HTTPDoer

	Index      string // omitted when empty
	Source     string // default DefaultSource
	SourceType string // omitted when empty
	Host       string // default os.Hostname()
	MinLevel   xappend.Level
}

type Appender struct {
	xappend.Threshold

	service    Service
	index      string
	source     string
	sourceType string
	host       string
}

func New(cfg Config) (*Appender, error) {
	svc := cfg.Service
	if svc == nil {
		var err error
		svc, err = NewHECService(cfg.URL, cfg.Headers, cfg.HTTPClient)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.Host == "" {
		cfg.Host, _ = os.Hostname()
	}
	a := &Appender{
		service:    svc,
		index:      cfg.Index,
		source:     cfg.Source,
		sourceType: cfg.SourceType,
		host:       cfg.Host,
	}
	a.SetMinLevel(cfg.MinLevel)
	return a, nil
}

func (a *Appender) Name() string { return "splunk" }

// Map returns the message and event submitted for e. The event body carries
// the level as an xappend.Level, plus exception and payload when present.
func (a *Appender) Map(e xappend.Entry) (string, Event) {
	body := map[string]any{"level": e.Level.Canonical()}
	if exc := e.Exception; exc != nil {
		body["exception"] = map[string]any{
			"name":        exc.Name,
			"message":     exc.Message,
			"stack_trace": exc.StackTrace,
		}
	}
	if p := e.Payload(); p != nil {
		body["payload"] = p
	}

	ev := Event{
		"event":  body,
		"source": a.source,
	}
	if !e.Time.IsZero() {
		ev["time"] = float64(e.Time.UnixNano()) / 1e9
	}
	if a.host != "" {
		ev["host"] = a.host
	}
	if a.sourceType != "" {
		ev["sourcetype"] = a.sourceType
	}
	if a.index != "" {
		ev["index"] = a.index
	}
	return e.ShortMessage(), ev
}

func (a *Appender) Log(ctx context.Context, e xappend.Entry) error {
	if !a.Enabled(e.Level) {
		return nil
	}
	msg, ev := a.Map(e)
	return a.service.Submit(ctx, msg, ev)
}
