package zerologappender

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/trickstertwo/xappend"
)

func benchAppender(b *testing.B, fields []xappend.Field) {
	a := New(zerolog.New(io.Discard))
	e := xappend.Entry{
		Time:    time.Date(2024, 12, 31, 23, 59, 59, 123456789, time.UTC),
		Level:   xappend.LevelInfo,
		Message: "bench",
		Fields:  fields,
	}
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Log(ctx, e)
	}
}

func BenchmarkZerologAppender_JSON_5Fields(b *testing.B) {
	benchAppender(b, []xappend.Field{
		xappend.Str("a", "b"),
		xappend.Int64("i", 42),
		xappend.Bool("ok", true),
		xappend.Dur("dur", time.Millisecond),
		xappend.Float64("f", 3.14),
	})
}

func BenchmarkZerologAppender_JSON_NoFields(b *testing.B) {
	benchAppender(b, nil)
}
