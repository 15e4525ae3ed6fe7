package zerologappender

import (
	"io"
	"os"
	"strconv"

	"github.com/trickstertwo/xappend"
)

// Env:
//
//	XAPPEND_MIN_LEVEL or XAPPEND_LEVEL: trace|debug|info|warn|error|fatal
//	XAPPEND_CONSOLE=1            : zerolog.ConsoleWriter (pretty output)
//	XAPPEND_CALLER=1             : include caller
//	XAPPEND_CALLER_SKIP=<int>    : frames to skip (default 5)
//	XAPPEND_CONSOLE_TIMEFORMAT=  : console time layout (default RFC3339Nano)
func init() {
	xappend.RegisterDefaultAppenderFactory(func(w io.Writer) xappend.Appender {
		return NewAppender(configFromEnv(w))
	})
}

func configFromEnv(w io.Writer) Config {
	if w == nil {
		w = os.Stdout
	}
	return Config{
		Writer:            w,
		MinLevel:          envLevel(firstNonEmpty(os.Getenv("XAPPEND_MIN_LEVEL"), os.Getenv("XAPPEND_LEVEL"))),
		Console:           os.Getenv("XAPPEND_CONSOLE") == "1",
		ConsoleTimeFormat: os.Getenv("XAPPEND_CONSOLE_TIMEFORMAT"),
		Caller:            os.Getenv("XAPPEND_CALLER") == "1",
		CallerSkip:        parseInt(os.Getenv("XAPPEND_CALLER_SKIP"), 5),
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// envLevel falls back to trace so the Logger's own level decides.
func envLevel(s string) xappend.Level {
	if s == "" {
		return xappend.LevelTrace
	}
	l, err := xappend.ParseLevel(s)
	if err != nil {
		return xappend.LevelInfo
	}
	return l
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
