package xappend

import "time"

// NoExceptionMessage replaces the short message of an entry that carries
// neither a message nor an exception message.
const NoExceptionMessage = "<no-exception-message>"

// Entry is an immutable snapshot of a single log call, handed to every
// appender and observer.
type Entry struct {
	Time      time.Time
	Level     Level
	Message   string
	Exception *Exception
	Fields    []Field // bound + event fields; MUST NOT be mutated by receivers
}

// Payload returns the caller-supplied fields as a fresh mapping, or nil when
// the entry has none.
func (e Entry) Payload() map[string]any {
	return Fields(e.Fields).Map()
}

// ShortMessage is the primary human-readable line of the entry.
func (e Entry) ShortMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Exception != nil && e.Exception.Message != "" {
		return e.Exception.Message
	}
	return NoExceptionMessage
}
