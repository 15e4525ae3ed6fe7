package splunk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultURL is the HEC endpoint on a local Splunk instance.
const DefaultURL = "http://localhost:8088"

const eventPath = "/services/collector/event"

var ErrInvalidURL = errors.New("splunk: invalid HEC url")

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-2xx HEC response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("splunk: hec status %d: %s", e.StatusCode, e.Body)
}

// HECService posts events to the HTTP Event Collector. Each service uses a
// single request channel so acknowledgements can be correlated.
type HECService struct {
	endpoint string
	channel  string
	headers  map[string]string
	client   HTTPDoer
}

func NewHECService(baseURL string, headers map[string]string, client HTTPDoer) (*HECService, error) {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HECService{
		endpoint: strings.TrimRight(baseURL, "/") + eventPath,
		channel:  uuid.NewString(),
		headers:  headers,
		client:   client,
	}, nil
}

// Channel is the X-Splunk-Request-Channel value sent with every request.
func (s *HECService) Channel() string { return s.channel }

// Submit places message inside the event body and posts the event.
func (s *HECService) Submit(ctx context.Context, message string, event Event) error {
	payload := make(map[string]any, len(event))
	for k, v := range event {
		payload[k] = v
	}
	body := map[string]any{"message": message}
	if inner, ok := event["event"].(map[string]any); ok {
		for k, v := range inner {
			body[k] = v
		}
	}
	payload["event"] = body

	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("failed to create hec request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Splunk-Request-Channel", s.channel)
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post hec event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(msg)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
