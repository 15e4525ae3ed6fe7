package xappend

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNoAppender is returned by Builder.Build when no appender was registered.
	ErrNoAppender = errors.New("xappend: no appender configured")

	// ErrUnknownLevel is returned when a level name cannot be parsed.
	ErrUnknownLevel = errors.New("xappend: unknown level")
)

// ErrorHandler receives appender failures that have no caller to return to.
type ErrorHandler func(error)

func defaultErrorHandler(err error) { fmt.Fprintf(os.Stderr, "xappend error: %v\n", err) }
