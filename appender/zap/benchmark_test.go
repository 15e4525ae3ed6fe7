package zapappender

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trickstertwo/xappend"
)

func newBenchZap() *zap.Logger {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		LevelKey:       "level",
		MessageKey:     "message",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(io.Discard), zapcore.InfoLevel)
	return zap.New(core)
}

func benchAppender(b *testing.B, e xappend.Entry) {
	a := New(newBenchZap())
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Log(ctx, e)
	}
}

func BenchmarkZapAppender_JSON_5Fields(b *testing.B) {
	benchAppender(b, xappend.Entry{
		Time:    time.Date(2024, 12, 31, 23, 59, 59, 123456789, time.UTC),
		Level:   xappend.LevelInfo,
		Message: "bench",
		Fields: []xappend.Field{
			xappend.Str("a", "b"),
			xappend.Int64("i", 42),
			xappend.Bool("ok", true),
			xappend.Dur("dur", time.Millisecond),
			xappend.Float64("f", 3.14),
		},
	})
}

func BenchmarkZapAppender_JSON_WithException(b *testing.B) {
	benchAppender(b, xappend.Entry{
		Time:      time.Date(2024, 12, 31, 23, 59, 59, 123456789, time.UTC),
		Level:     xappend.LevelError,
		Message:   "bench",
		Exception: xappend.NewException(errors.New("boom")),
		Fields:    []xappend.Field{xappend.Str("svc", "api")},
	})
}
