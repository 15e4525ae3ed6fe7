package graylog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/Graylog2/go-gelf.v2/gelf"
)

// DefaultURL is Graylog's standard GELF UDP input.
const DefaultURL = "udp://localhost:12201"

const gelfVersion = "1.1"

var (
	// ErrUnsupportedScheme is returned by NewNotifier for unknown URL schemes.
	ErrUnsupportedScheme = errors.New("graylog: unsupported notifier scheme")

	// ErrInvalidURL is returned by NewNotifier when the URL lacks an address.
	ErrInvalidURL = errors.New("graylog: invalid notifier url")
)

// NewNotifier builds a transport from a URL:
//
//	udp://host:port                 GELF over UDP (chunked, compressed)
//	tcp://host:port                 GELF over TCP (null-byte framed)
//	kafka://broker1,broker2/topic   GELF JSON records on a Kafka topic
func NewNotifier(rawURL string) (Notifier, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok || rest == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	switch strings.ToLower(scheme) {
	case "udp":
		w, err := gelf.NewUDPWriter(rest)
		if err != nil {
			return nil, fmt.Errorf("failed to create gelf udp writer: %w", err)
		}
		return NewGELFNotifier(w), nil
	case "tcp":
		w, err := gelf.NewTCPWriter(rest)
		if err != nil {
			return nil, fmt.Errorf("failed to create gelf tcp writer: %w", err)
		}
		return NewGELFNotifier(w), nil
	case "kafka":
		brokers, topic, ok := strings.Cut(rest, "/")
		if !ok || brokers == "" || topic == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
		}
		return NewKafkaNotifier(strings.Split(brokers, ","), topic), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

// gelfWriter is the part of gelf.Writer the notifier needs.
type gelfWriter interface {
	WriteMessage(m *gelf.Message) error
	Close() error
}

// GELFNotifier writes messages through a go-gelf writer.
type GELFNotifier struct {
	w gelfWriter
}

func NewGELFNotifier(w gelfWriter) *GELFNotifier {
	return &GELFNotifier{w: w}
}

// Notify encodes m as GELF. ctx is unused; writes are bounded by the socket.
func (n *GELFNotifier) Notify(_ context.Context, m Message) error {
	return n.w.WriteMessage(ToGELF(m))
}

func (n *GELFNotifier) Close() error { return n.w.Close() }

// ToGELF converts a notification into a GELF message. Header keys map onto
// the GELF fields; every other key becomes an additional field with a
// leading underscore, nested maps flattened with "_" separators.
func ToGELF(m Message) *gelf.Message {
	g := &gelf.Message{Version: gelfVersion}
	extra := make(map[string]any, len(m))
	for k, v := range m {
		switch k {
		case "short_message":
			g.Short = fmt.Sprint(v)
		case "full_message":
			g.Full = fmt.Sprint(v)
		case "host":
			g.Host = fmt.Sprint(v)
		case "facility":
			g.Facility = fmt.Sprint(v)
		case "level":
			if lvl, ok := v.(int); ok {
				g.Level = int32(lvl)
			}
		case "timestamp":
			if ts, ok := v.(float64); ok {
				g.TimeUnix = ts
			}
		default:
			flatten("_"+k, v, extra)
		}
	}
	if len(extra) > 0 {
		g.Extra = extra
	}
	return g
}

func flatten(key string, v any, out map[string]any) {
	switch val := v.(type) {
	case map[string]any:
		for k, nested := range val {
			flatten(key+"_"+k, nested, out)
		}
	case Message:
		flatten(key, map[string]any(val), out)
	case []string:
		out[key] = strings.Join(val, "\n")
	case time.Time:
		out[key] = val.UTC().Format(time.RFC3339Nano)
	case []byte:
		out[key] = string(val)
	default:
		out[key] = val
	}
}

// gelfDocument renders g as a flat GELF JSON object for non-socket
// transports.
func gelfDocument(g *gelf.Message) map[string]any {
	doc := make(map[string]any, 7+len(g.Extra))
	for k, v := range g.Extra {
		doc[k] = v
	}
	doc["version"] = g.Version
	doc["host"] = g.Host
	doc["short_message"] = g.Short
	doc["level"] = g.Level
	if g.TimeUnix != 0 {
		doc["timestamp"] = g.TimeUnix
	}
	if g.Full != "" {
		doc["full_message"] = g.Full
	}
	if g.Facility != "" {
		doc["facility"] = g.Facility
	}
	return doc
}
