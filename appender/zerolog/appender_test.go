package zerologappender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/trickstertwo/xappend"
)

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("json unmarshal: %v; line=%s", err, string(b))
	}
	return m
}

func TestZerologAppender_JSON_EmitsTSAndPayload(t *testing.T) {
	var buf bytes.Buffer
	a := New(zerolog.New(&buf))

	at := time.Date(2024, 12, 31, 23, 59, 59, 123456789, time.UTC)
	err := a.Log(context.Background(), xappend.Entry{
		Time:    at,
		Level:   xappend.LevelInfo,
		Message: "state changed",
		Fields: []xappend.Field{
			xappend.Str("from", "old"),
			xappend.Int64("count", 2),
			xappend.Bool("ok", true),
			xappend.Dur("dur", time.Millisecond),
			xappend.Err("error", errors.New("boom")),
		},
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	m := decode(t, buf.Bytes())
	if m["level"] != "info" {
		t.Fatalf("level mismatch: %v", m["level"])
	}
	if m["message"] != "state changed" {
		t.Fatalf("message mismatch: %v", m["message"])
	}
	if got, want := m["ts"], at.Format(time.RFC3339Nano); got != want {
		t.Fatalf("ts mismatch: got %v want %q", got, want)
	}
	p, ok := m["payload"].(map[string]any)
	if !ok {
		t.Fatalf("payload missing: %v", m)
	}
	if p["from"] != "old" || p["count"] != float64(2) || p["ok"] != true || p["dur"] != "1ms" || p["error"] != "boom" {
		t.Fatalf("payload mismatch: %v", p)
	}
}

func TestZerologAppender_Exception(t *testing.T) {
	var buf bytes.Buffer
	logger, err := xappend.NewBuilder().
		WithAppender(New(zerolog.New(&buf))).
		WithMinLevel(xappend.LevelTrace).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	logger.Fatal().Err(errors.New("disk full")).Msg("writing segment")

	m := decode(t, buf.Bytes())
	if m["level"] != "error" {
		t.Fatalf("fatal must render as error, got %v", m["level"])
	}
	if m["message"] != "writing segment" {
		t.Fatalf("message mismatch: %v", m["message"])
	}
	exc, ok := m["exception"].(map[string]any)
	if !ok {
		t.Fatalf("exception missing: %v", m)
	}
	if exc["name"] != "*errors.errorString" || exc["message"] != "disk full" {
		t.Fatalf("exception mismatch: %v", exc)
	}
	stack, _ := exc["stack_trace"].([]any)
	if len(stack) == 0 || !strings.Contains(stack[0].(string), "appender_test.go") {
		t.Fatalf("stack should start in the test file: %v", stack)
	}
	if _, ok := m["payload"]; ok {
		t.Fatalf("payload should be absent: %v", m)
	}
}

func TestZerologAppender_SetMinLevel(t *testing.T) {
	var buf bytes.Buffer
	a := NewAppender(Config{Writer: &buf, MinLevel: xappend.LevelWarn})

	ctx := context.Background()
	_ = a.Log(ctx, xappend.Entry{Level: xappend.LevelInfo, Message: "hidden"})
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn: %s", buf.String())
	}
	a.SetMinLevel(xappend.LevelDebug)
	_ = a.Log(ctx, xappend.Entry{Level: xappend.LevelDebug, Message: "shown"})
	if m := decode(t, buf.Bytes()); m["level"] != "debug" {
		t.Fatalf("debug should pass after SetMinLevel: %v", m)
	}
}

func TestZerologAppender_SetMinLevelWhileLogging(t *testing.T) {
	a := New(zerolog.New(io.Discard))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if j%2 == 0 {
					a.SetMinLevel(xappend.LevelWarn)
				} else {
					a.SetMinLevel(xappend.LevelDebug)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if err := a.Log(ctx, xappend.Entry{Level: xappend.LevelInfo, Message: "tick"}); err != nil {
					t.Errorf("Log: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	a.SetMinLevel(xappend.LevelError)
	if a.Enabled(xappend.LevelWarn) {
		t.Fatal("warn should be filtered at error")
	}
	if !a.Enabled(xappend.LevelFatal) {
		t.Fatal("fatal should pass at error")
	}
}

func TestDefaultFactoryFromEnv(t *testing.T) {
	t.Setenv("XAPPEND_MIN_LEVEL", "warn")

	var buf bytes.Buffer
	cfg := configFromEnv(&buf)
	if cfg.MinLevel != xappend.LevelWarn {
		t.Fatalf("min level from env: %v", cfg.MinLevel)
	}
	if cfg.Console || cfg.Caller || cfg.CallerSkip != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	logger := xappend.Default()
	if !logger.Enabled(xappend.LevelDebug) {
		t.Fatal("Default logs at debug")
	}
}

func TestEnvLevel(t *testing.T) {
	cases := map[string]xappend.Level{
		"":        xappend.LevelTrace,
		"debug":   xappend.LevelDebug,
		"WARNING": xappend.LevelWarn,
		"fatal":   xappend.LevelFatal,
		"bogus":   xappend.LevelInfo,
	}
	for in, want := range cases {
		if got := envLevel(in); got != want {
			t.Errorf("envLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
