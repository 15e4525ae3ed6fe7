package xappend

import (
	"errors"
	"fmt"
	"runtime"

	pkgerrors "github.com/pkg/errors"
)

// Exception is the serializable form of an error attached to an Entry.
type Exception struct {
	Name       string   `json:"name"`
	Message    string   `json:"message"`
	StackTrace []string `json:"stack_trace"`

	// Frames is the structured form of StackTrace for backends that keep
	// file/line/function separately.
	Frames []Frame `json:"-"`
}

// Frame is one resolved stack frame, innermost first.
type Frame struct {
	Function string
	File     string
	Line     int
}

func (f Frame) String() string {
	return fmt.Sprintf("%s:%d in %s", f.File, f.Line, f.Function)
}

const maxStackDepth = 64

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// NewException converts err into an Exception whose stack trace starts at the
// caller of NewException. Errors created or wrapped with github.com/pkg/errors
// keep the stack recorded at their origin. Returns nil for a nil error.
func NewException(err error) *Exception {
	return newExceptionAt(err, 1)
}

// newExceptionAt skips skip frames above its caller.
func newExceptionAt(err error, skip int) *Exception {
	if err == nil {
		return nil
	}
	frames := originFrames(err)
	if len(frames) == 0 {
		frames = CaptureFrames(skip + 1)
	}
	exc := &Exception{
		Name:    fmt.Sprintf("%T", pkgerrors.Cause(err)),
		Message: err.Error(),
		Frames:  frames,
	}
	exc.StackTrace = make([]string, len(frames))
	for i := range frames {
		exc.StackTrace[i] = frames[i].String()
	}
	return exc
}

// CaptureFrames returns the stack of the caller of CaptureFrames, skipping
// skip additional frames.
func CaptureFrames(skip int) []Frame {
	pcs := make([]uintptr, maxStackDepth)
	// 0 = runtime.Callers, 1 = CaptureFrames
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}
	it := runtime.CallersFrames(pcs[:n])
	out := make([]Frame, 0, n)
	for {
		fr, more := it.Next()
		out = append(out, Frame{Function: fr.Function, File: fr.File, Line: fr.Line})
		if !more {
			break
		}
	}
	return out
}

// originFrames returns the deepest pkg/errors stack in the chain.
func originFrames(err error) []Frame {
	var st pkgerrors.StackTrace
	for e := err; e != nil; e = errors.Unwrap(e) {
		if t, ok := e.(stackTracer); ok {
			st = t.StackTrace()
		}
	}
	if len(st) == 0 {
		return nil
	}
	out := make([]Frame, 0, len(st))
	for _, f := range st {
		pc := uintptr(f) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		file, line := fn.FileLine(pc)
		out = append(out, Frame{Function: fn.Name(), File: file, Line: line})
	}
	return out
}
