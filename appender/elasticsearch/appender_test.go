package elasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trickstertwo/xclock"

	"github.com/trickstertwo/xappend"
)

const amessage = "AppenderElasticsearchTest log message"

type post struct {
	path string
	body map[string]any
}

// recordingClient captures every Post instead of reaching a cluster.
type recordingClient struct {
	mu    sync.Mutex
	posts []post
	err   error
}

func (c *recordingClient) Post(_ context.Context, path string, body []byte) error {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = append(c.posts, post{path: path, body: m})
	return c.err
}

func (c *recordingClient) last(t *testing.T) post {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.posts, "no document posted")
	return c.posts[len(c.posts)-1]
}

// steppingClock is a settable clock for day-rollover tests.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppingClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestLogger(t *testing.T, cfg Config) (*xappend.Logger, *recordingClient) {
	t.Helper()
	client := &recordingClient{}
	cfg.Client = client
	a, err := New(cfg)
	require.NoError(t, err)
	logger, err := xappend.NewBuilder().
		WithAppender(a).
		WithMinLevel(xappend.LevelTrace).
		Build()
	require.NoError(t, err)
	return logger, client
}

func TestLogsToDailyIndexes(t *testing.T) {
	clock := &steppingClock{now: time.Date(2026, 10, 18, 23, 59, 59, 0, time.UTC)}
	logger, client := newTestLogger(t, Config{Index: "semantic_logger", Clock: clock})

	logger.Info().Msg(amessage)
	assert.Equal(t, "semantic_logger-2026.10.18/log", client.last(t).path)

	clock.Set(clock.Now().Add(time.Second))
	logger.Info().Msg(amessage)
	assert.Equal(t, "semantic_logger-2026.10.19/log", client.last(t).path)
}

func TestDestinationUsesFrozenClock(t *testing.T) {
	a, err := New(Config{
		Client: &recordingClient{},
		Clock:  xclock.NewFrozen(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.Equal(t, "xappend-2025.01.02/log", a.Destination())
}

func TestSendsEveryLevel(t *testing.T) {
	for _, level := range xappend.Levels() {
		t.Run(level.String(), func(t *testing.T) {
			logger, client := newTestLogger(t, Config{MinLevel: xappend.LevelTrace})

			logger.WithLevel(level).Msg(amessage)

			doc := client.last(t).body
			assert.Equal(t, amessage, doc["message"])
			assert.Equal(t, level.String(), doc["level"])
			assert.NotContains(t, doc, "exception")
			assert.NotContains(t, doc, "payload")
		})
	}
}

func TestSendsExceptions(t *testing.T) {
	for _, level := range xappend.Levels() {
		t.Run(level.String(), func(t *testing.T) {
			logger, client := newTestLogger(t, Config{MinLevel: xappend.LevelTrace})

			_, openErr := os.Open("/definitely/missing/file")
			logger.WithLevel(level).Err(openErr).Msg("Reading File")

			doc := client.last(t).body
			assert.Equal(t, "Reading File", doc["message"])
			assert.Equal(t, level.String(), doc["level"])

			exc, ok := doc["exception"].(map[string]any)
			require.True(t, ok, "exception missing: %v", doc)
			assert.Equal(t, "*fs.PathError", exc["name"])
			assert.Contains(t, exc["message"], "no such file or directory")
			stack, ok := exc["stack_trace"].([]any)
			require.True(t, ok)
			require.NotEmpty(t, stack)
			assert.Contains(t, stack[0], "appender_test.go")
		})
	}
}

func TestSendsCustomAttributes(t *testing.T) {
	for _, level := range xappend.Levels() {
		t.Run(level.String(), func(t *testing.T) {
			logger, client := newTestLogger(t, Config{MinLevel: xappend.LevelTrace})

			logger.WithLevel(level).Int("key1", 1).Str("key2", "a").Msg(amessage)

			doc := client.last(t).body
			assert.Equal(t, amessage, doc["message"])
			assert.Equal(t, level.String(), doc["level"])
			assert.NotContains(t, doc, "stack_trace")
			assert.Equal(t, map[string]any{"key1": float64(1), "key2": "a"}, doc["payload"])
		})
	}
}

func TestDropsBelowThreshold(t *testing.T) {
	logger, client := newTestLogger(t, Config{MinLevel: xappend.LevelError})

	logger.Trace().Msg("dropped")
	logger.Warn().Msg("dropped")

	assert.Empty(t, client.posts)
}

func TestUnserializablePayloadFails(t *testing.T) {
	client := &recordingClient{}
	a, err := New(Config{Client: client, MinLevel: xappend.LevelTrace})
	require.NoError(t, err)

	err = a.Log(context.Background(), xappend.Entry{
		Level:   xappend.LevelInfo,
		Message: amessage,
		Fields:  []xappend.Field{xappend.Any("ch", make(chan int))},
	})
	var unsupported *json.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
	assert.Empty(t, client.posts)
}

func TestClientErrorsPropagate(t *testing.T) {
	boom := errors.New("connection refused")
	client := &recordingClient{err: boom}
	a, err := New(Config{Client: client})
	require.NoError(t, err)

	err = a.Log(context.Background(), xappend.Entry{Level: xappend.LevelInfo, Message: amessage})
	assert.ErrorIs(t, err, boom)
}

func TestOpenSearchClientPostsToDatedPath(t *testing.T) {
	type request struct {
		method, path, contentType string
		body                      map[string]any
	}
	var (
		mu   sync.Mutex
		reqs []request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"version":{"number":"2.11.0","distribution":"opensearch"}}`)
			return
		}
		var m map[string]any
		_ = json.NewDecoder(r.Body).Decode(&m)
		mu.Lock()
		reqs = append(reqs, request{r.Method, r.URL.Path, r.Header.Get("Content-Type"), m})
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	}))
	defer srv.Close()

	a, err := New(Config{
		URL:         srv.URL,
		Index:       "semantic_logger",
		Clock:       xclock.NewFrozen(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)),
		Application: "billing",
		MinLevel:    xappend.LevelTrace,
	})
	require.NoError(t, err)

	err = a.Log(context.Background(), xappend.Entry{
		Time:    time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		Level:   xappend.LevelWarn,
		Message: amessage,
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/semantic_logger-2026.10.18/log", reqs[0].path)
	assert.Equal(t, "application/json", reqs[0].contentType)
	assert.Equal(t, "warn", reqs[0].body["level"])
	assert.Equal(t, "billing", reqs[0].body["application"])
	assert.Equal(t, "2026-10-18T12:00:00Z", reqs[0].body["timestamp"])
}

func TestOpenSearchClientReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"version":{"number":"2.11.0","distribution":"opensearch"}}`)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"mapper_parsing_exception"}`)
	}))
	defer srv.Close()

	c, err := NewOpenSearchClient([]string{srv.URL}, nil)
	require.NoError(t, err)

	err = c.Post(context.Background(), "xappend-2026.10.18/log", []byte(`{}`))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Contains(t, se.Body, "mapper_parsing_exception")
}
