package dict

import (
	"fmt"
	"math"
)

// ValueKind tells which representation of a Value is active.
type ValueKind uint8

const (
	// KindNone is the value of an entry created by AddRaw or AddOrFind
	// before the caller stored anything in it.
	KindNone ValueKind = iota
	// KindRef is an opaque handle of type V.
	KindRef
	KindInt64
	KindUint64
	KindFloat64
)

func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRef:
		return "ref"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat64:
		return "float64"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// Value holds exactly one of: a V handle, a signed integer, an unsigned
// integer or a float64. Scalars share the same 64 bits of storage.
type Value[V any] struct {
	ref  V
	bits uint64
	kind ValueKind
}

// RefValue returns a Value holding the handle v.
func RefValue[V any](v V) Value[V] {
	return Value[V]{ref: v, kind: KindRef}
}

// Int64Value returns a Value holding n.
func Int64Value[V any](n int64) Value[V] {
	return Value[V]{bits: uint64(n), kind: KindInt64}
}

// Uint64Value returns a Value holding n.
func Uint64Value[V any](n uint64) Value[V] {
	return Value[V]{bits: n, kind: KindUint64}
}

// Float64Value returns a Value holding f.
func Float64Value[V any](f float64) Value[V] {
	return Value[V]{bits: math.Float64bits(f), kind: KindFloat64}
}

// Kind reports the active representation.
func (v Value[V]) Kind() ValueKind { return v.kind }

// Ref returns the handle and true if the value is a handle.
func (v Value[V]) Ref() (V, bool) {
	if v.kind != KindRef {
		var zero V
		return zero, false
	}
	return v.ref, true
}

// Int64 returns the signed integer and true if that is the active kind.
func (v Value[V]) Int64() (int64, bool) {
	return int64(v.bits), v.kind == KindInt64
}

// Uint64 returns the unsigned integer and true if that is the active kind.
func (v Value[V]) Uint64() (uint64, bool) {
	return v.bits, v.kind == KindUint64
}

// Float64 returns the float and true if that is the active kind.
func (v Value[V]) Float64() (float64, bool) {
	return math.Float64frombits(v.bits), v.kind == KindFloat64
}

// String implement the formatting output interface fmt.Stringer
func (v Value[V]) String() string {
	switch v.kind {
	case KindRef:
		return fmt.Sprint(v.ref)
	case KindInt64:
		return fmt.Sprint(int64(v.bits))
	case KindUint64:
		return fmt.Sprint(v.bits)
	case KindFloat64:
		return fmt.Sprint(math.Float64frombits(v.bits))
	default:
		return "<none>"
	}
}

type entryState uint8

const (
	entryFree entryState = iota
	entryLinked
	entryUnlinked
)

// Entry is one key/value pair in a bucket chain. An *Entry returned by
// Find, AddRaw, iteration or sampling is borrowed: it stays valid until
// that entry is deleted, after which its memory may be reused.
type Entry[K comparable, V any] struct {
	key   K
	val   Value[V]
	next  *Entry[K, V]
	state entryState
}

// Key returns the (possibly duplicated) key stored in the entry.
func (e *Entry[K, V]) Key() K { return e.key }

// Value returns the stored value.
func (e *Entry[K, V]) Value() Value[V] { return e.val }

// Val returns the handle value, or the zero V if the entry does not hold a
// handle.
func (e *Entry[K, V]) Val() V {
	v, _ := e.val.Ref()
	return v
}

// SetInt64 stores a signed integer. A previous handle value is dropped
// without running the value destructor.
func (e *Entry[K, V]) SetInt64(n int64) { e.val = Int64Value[V](n) }

// SetUint64 stores an unsigned integer, see SetInt64.
func (e *Entry[K, V]) SetUint64(n uint64) { e.val = Uint64Value[V](n) }

// SetFloat64 stores a float, see SetInt64.
func (e *Entry[K, V]) SetFloat64(f float64) { e.val = Float64Value[V](f) }
