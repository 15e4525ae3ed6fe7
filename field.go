package xappend

import (
	"time"
)

// Kind identifies the concrete type stored in a Field.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt64
	KindUint64
	KindFloat64
	KindBool
	KindDuration
	KindTime
	KindError
	KindBytes
	KindAny
)

// Field is a compact, reflection-free union for structured payload values.
type Field struct {
	K       string
	Kind    Kind
	Str     string
	Int64   int64
	Uint64  uint64
	Float64 float64
	Bool    bool
	Dur     time.Duration
	Time    time.Time
	Err     error
	Bytes   []byte
	Any     any
}

// Helpers for ergonomics.

func Str(k, v string) Field             { return Field{K: k, Kind: KindString, Str: v} }
func Int(k string, v int) Field         { return Int64(k, int64(v)) }
func Int64(k string, v int64) Field     { return Field{K: k, Kind: KindInt64, Int64: v} }
func Uint64(k string, v uint64) Field   { return Field{K: k, Kind: KindUint64, Uint64: v} }
func Float64(k string, v float64) Field { return Field{K: k, Kind: KindFloat64, Float64: v} }
func Bool(k string, v bool) Field       { return Field{K: k, Kind: KindBool, Bool: v} }
func Dur(k string, v time.Duration) Field {
	return Field{K: k, Kind: KindDuration, Dur: v}
}
func Time(k string, v time.Time) Field { return Field{K: k, Kind: KindTime, Time: v} }
func Err(k string, e error) Field      { return Field{K: k, Kind: KindError, Err: e} }
func Bytes(k string, b []byte) Field   { return Field{K: k, Kind: KindBytes, Bytes: b} }
func Any(k string, v any) Field        { return Field{K: k, Kind: KindAny, Any: v} }

// Value returns the field's payload value. Durations render as strings and
// errors as their message, matching the JSON encoding of the local appenders.
func (f Field) Value() any {
	switch f.Kind {
	case KindString:
		return f.Str
	case KindInt64:
		return f.Int64
	case KindUint64:
		return f.Uint64
	case KindFloat64:
		return f.Float64
	case KindBool:
		return f.Bool
	case KindDuration:
		return f.Dur.String()
	case KindTime:
		return f.Time
	case KindError:
		if f.Err == nil {
			return nil
		}
		return f.Err.Error()
	case KindBytes:
		return f.Bytes
	case KindAny:
		return f.Any
	default:
		return nil
	}
}

// Fields is an ordered set of payload fields.
type Fields []Field

// Map builds the payload mapping. Later keys override earlier ones, so fields
// bound with Logger.With are shadowed by per-event fields of the same name.
// Returns nil for an empty set.
func (fs Fields) Map() map[string]any {
	if len(fs) == 0 {
		return nil
	}
	m := make(map[string]any, len(fs))
	for i := range fs {
		m[fs[i].K] = fs[i].Value()
	}
	return m
}

// Unique drops fields whose key reappears later in fs, keeping the order of
// the survivors. It returns fs itself when every key is distinct.
func (fs Fields) Unique() Fields {
	if len(fs) < 2 {
		return fs
	}
	seen := make(map[string]int, len(fs))
	dup := false
	for i := range fs {
		if _, ok := seen[fs[i].K]; ok {
			dup = true
		}
		seen[fs[i].K] = i
	}
	if !dup {
		return fs
	}
	out := make(Fields, 0, len(seen))
	for i := range fs {
		if seen[fs[i].K] == i {
			out = append(out, fs[i])
		}
	}
	return out
}

func copyFields(dst, src []Field) []Field {
	if len(src) == 0 {
		return dst
	}
	return append(dst, src...)
}
