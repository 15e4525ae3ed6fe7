// Package elasticsearch appends entries as JSON documents to daily indexes of
// an Elasticsearch or OpenSearch cluster.
package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/trickstertwo/xclock"

	"github.com/trickstertwo/xappend"
)

const (
	DefaultURL        = "http://localhost:9200"
	DefaultIndex      = "xappend"
	DefaultType       = "log"
	DefaultDateLayout = "2006.01.02"
)

// Clock supplies the date used for index names. xclock.Clock satisfies it.
type Clock interface {
	Now() time.Time
}

// Config is an explicit, code-first configuration for the appender.
type Config struct {
	// URL is a single cluster address; ignored when Addresses is set.
	URL       string
	Addresses []string

	Index      string // index prefix; default "xappend"
	Type       string // path suffix after the dated index; default "log"
	DateLayout string // default "2006.01.02"

	MinLevel    xappend.Level
	Clock       Clock  // default xclock.Default()
	Host        string // default os.Hostname()
	Application string // omitted when empty

	// Transport is handed to the OpenSearch client; nil uses http.DefaultTransport.
	Transport http.RoundTripper

	// Client overrides the OpenSearch client entirely.
	Client Client
}

// Appender posts one document per entry to "/<index>-<date>/<type>".
type Appender struct {
	xappend.Threshold

	client      Client
	clock       Clock
	index       string
	typ         string
	dateLayout  string
	host        string
	application string
}

// New builds an Appender, creating an OpenSearch client unless cfg.Client is set.
func New(cfg Config) (*Appender, error) {
	if cfg.Index == "" {
		cfg.Index = DefaultIndex
	}
	if cfg.Type == "" {
		cfg.Type = DefaultType
	}
	if cfg.DateLayout == "" {
		cfg.DateLayout = DefaultDateLayout
	}
	if cfg.Clock == nil {
		cfg.Clock = xclock.Default()
	}
	if cfg.Host == "" {
		cfg.Host, _ = os.Hostname()
	}
	client := cfg.Client
	if client == nil {
		addrs := cfg.Addresses
		if len(addrs) == 0 {
			url := cfg.URL
			if url == "" {
				url = DefaultURL
			}
			addrs = []string{url}
		}
		c, err := NewOpenSearchClient(addrs, cfg.Transport)
		if err != nil {
			return nil, err
		}
		client = c
	}

	a := &Appender{
		client:      client,
		clock:       cfg.Clock,
		index:       cfg.Index,
		typ:         cfg.Type,
		dateLayout:  cfg.DateLayout,
		host:        cfg.Host,
		application: cfg.Application,
	}
	a.SetMinLevel(cfg.MinLevel)
	return a, nil
}

func (a *Appender) Name() string { return "elasticsearch" }

// Destination returns the dated index path for the clock's current day.
// It is recomputed on every call so day rollover needs no bookkeeping.
func (a *Appender) Destination() string {
	return a.index + "-" + a.clock.Now().Format(a.dateLayout) + "/" + a.typ
}

// Document is the JSON body indexed for one entry.
type Document struct {
	Timestamp   time.Time          `json:"timestamp"`
	Level       string             `json:"level"`
	Message     string             `json:"message"`
	Host        string             `json:"host,omitempty"`
	Application string             `json:"application,omitempty"`
	Payload     map[string]any     `json:"payload,omitempty"`
	Exception   *xappend.Exception `json:"exception,omitempty"`
}

// Map converts an entry into its indexed document.
func (a *Appender) Map(e xappend.Entry) Document {
	return Document{
		Timestamp:   e.Time.UTC(),
		Level:       e.Level.String(),
		Message:     e.ShortMessage(),
		Host:        a.host,
		Application: a.application,
		Payload:     e.Payload(),
		Exception:   e.Exception,
	}
}

func (a *Appender) Log(ctx context.Context, e xappend.Entry) error {
	if !a.Enabled(e.Level) {
		return nil
	}
	body, err := json.Marshal(a.Map(e))
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return a.client.Post(ctx, a.Destination(), body)
}
