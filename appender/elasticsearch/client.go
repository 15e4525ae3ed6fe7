package elasticsearch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2"
)

// Client submits an encoded document to a path relative to the cluster root.
type Client interface {
	Post(ctx context.Context, path string, body []byte) error
}

// StatusError reports a non-2xx response from the cluster.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("elasticsearch: status %d: %s", e.StatusCode, e.Body)
}

// maxErrorBody bounds how much of a failed response is kept in StatusError.
const maxErrorBody = 4 << 10

// OpenSearchClient posts documents through opensearch-go, which owns
// connection pooling and node selection.
type OpenSearchClient struct {
	client *opensearch.Client
}

func NewOpenSearchClient(addresses []string, transport http.RoundTripper) (*OpenSearchClient, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: addresses,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}
	return &OpenSearchClient{client: client}, nil
}

func (c *OpenSearchClient) Post(ctx context.Context, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/"+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Perform(req)
	if err != nil {
		return fmt.Errorf("failed to execute index request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &StatusError{StatusCode: res.StatusCode, Body: string(msg)}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
