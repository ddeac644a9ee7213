// Package jsondom implements a reference-counted JSON value tree (a DOM), a
// SAX-style event pipeline that can build that tree and validate it in the
// same pass, and a generator that serializes the tree back to bytes. Schema
// validation lives in the jsondom/schema subpackage.
package jsondom

import (
	"math"
	"sync/atomic"
)

// Kind identifies which of the six JSON value variants (plus the Invalid
// sentinel) a Value holds (spec §3.1).
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// refcountInfinite marks a singleton value: retain/release never touch it.
const refcountInfinite = math.MaxInt32

// Value is a node of the JSON document tree. It is always reached through a
// *Value pointer; the zero value is never used directly by callers (use
// Invalid() instead).
type Value struct {
	kind Kind

	refcount int32 // atomic; refcountInfinite for singletons

	b bool
	n number
	s valueString
	a *array
	o *object
}

type valueString struct {
	bytes []byte
	// dealloc is invoked at destruction for a no-copy string whose backing
	// buffer is owned elsewhere (spec §3.3). Nil for owned-copy strings.
	dealloc func()
}

// --- singletons (spec §3.6 invariant 2, §9) ---

var (
	singletonNull    = &Value{kind: KindNull, refcount: refcountInfinite}
	singletonTrue    = &Value{kind: KindBool, refcount: refcountInfinite, b: true}
	singletonFalse   = &Value{kind: KindBool, refcount: refcountInfinite, b: false}
	singletonEmptyS  = &Value{kind: KindString, refcount: refcountInfinite}
	singletonInvalid = &Value{kind: KindInvalid, refcount: refcountInfinite}
)

// Null returns the shared Null singleton.
func Null() *Value { return singletonNull }

// Invalid returns the shared Invalid sentinel: "no value produced". It is
// distinct from Null (spec §3.1).
func Invalid() *Value { return singletonInvalid }

// BoolOf returns the shared True or False singleton for b.
func BoolOf(b bool) *Value {
	if b {
		return singletonTrue
	}
	return singletonFalse
}

// IntOf constructs an owned int64-form Number value (refcount 1).
func IntOf(i int64) *Value {
	return &Value{kind: KindNumber, refcount: 1, n: numberFromInt64(i)}
}

// DoubleOf constructs an owned double-form Number value. Returns Invalid if d
// is NaN or infinite (spec §3.2, §3.6 invariant 5: a Double must be finite).
func DoubleOf(d float64) *Value {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return Invalid()
	}
	return &Value{kind: KindNumber, refcount: 1, n: numberFromDouble(d)}
}

// RawNumberOf constructs an owned raw-form Number value from the original
// lexical bytes of a number, preserving it without loss (spec §3.2).
func RawNumberOf(raw string) *Value {
	return &Value{kind: KindNumber, refcount: 1, n: numberFromRaw(raw)}
}

// StringOf constructs an owned-copy String value: bytes are copied
// immediately (spec §3.3). Returns the empty-string singleton for len(b)==0.
func StringOf(b []byte) *Value {
	if len(b) == 0 {
		return singletonEmptyS
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Value{kind: KindString, refcount: 1, s: valueString{bytes: cp}}
}

// StringOfNoCopy constructs a no-copy String value that borrows b. dealloc,
// if non-nil, is invoked exactly once when the value is destroyed (spec
// §3.3, §4.4 "Strings may be constructed no-copy when the source buffer
// outlives the DOM").
func StringOfNoCopy(b []byte, dealloc func()) *Value {
	if len(b) == 0 {
		return singletonEmptyS
	}
	return &Value{kind: KindString, refcount: 1, s: valueString{bytes: b, dealloc: dealloc}}
}

// ArrayNew constructs an owned, empty Array value. capHint, if larger than
// smallBufferSize, pre-sizes the backing overflow bucket for the elements
// beyond the inline buffer; smaller hints are ignored (spec §4.1).
func ArrayNew(capHint int) *Value {
	return &Value{kind: KindArray, refcount: 1, a: newArray(capHint)}
}

// ObjectNew constructs an owned, empty Object value. capHint is accepted for
// symmetry with ArrayNew but may be ignored (spec §4.1).
func ObjectNew(capHint int) *Value {
	return &Value{kind: KindObject, refcount: 1, o: newObject(capHint)}
}

// --- kind queries ---

func (v *Value) Kind() Kind { return v.kind }

// IsValid reports whether v is not the Invalid sentinel.
func (v *Value) IsValid() bool { return v != nil && v.kind != KindInvalid }

// IsNull reports true for both Null and Invalid (spec §3.1).
func (v *Value) IsNull() bool { return v == nil || v.kind == KindNull || v.kind == KindInvalid }

func (v *Value) IsBool() bool   { return v != nil && v.kind == KindBool }
func (v *Value) IsNumber() bool { return v != nil && v.kind == KindNumber }
func (v *Value) IsString() bool { return v != nil && v.kind == KindString }
func (v *Value) IsArray() bool  { return v != nil && v.kind == KindArray }
func (v *Value) IsObject() bool { return v != nil && v.kind == KindObject }

// --- scalar accessors ---

// Bool returns the boolean payload and whether v actually is a Bool.
func (v *Value) Bool() (bool, bool) {
	if !v.IsBool() {
		return false, false
	}
	return v.b, true
}

// StringBytes returns the raw UTF-8 bytes and whether v actually is a String.
// The returned slice must not be mutated by the caller.
func (v *Value) StringBytes() ([]byte, bool) {
	if !v.IsString() {
		return nil, false
	}
	return v.s.bytes, true
}

// String returns the string payload and whether v actually is a String.
func (v *Value) String() (string, bool) {
	b, ok := v.StringBytes()
	if !ok {
		return "", false
	}
	return string(b), true
}

// Number returns the underlying number and whether v actually is a Number.
func (v *Value) Number() (*Number, bool) {
	if !v.IsNumber() {
		return nil, false
	}
	return &Number{n: v.n}, true
}

// --- reference counting (spec §3.7, §5) ---

// Retain increments v's refcount and returns v, for chaining. Singletons are
// a no-op (spec §9).
func (v *Value) Retain() *Value {
	if v == nil || v.refcount == refcountInfinite {
		return v
	}
	atomic.AddInt32(&v.refcount, 1)
	return v
}

// Release decrements v's refcount; at zero it destroys v and releases its
// children in turn (spec §3.6 invariant 7). Singletons are a no-op.
func (v *Value) Release() {
	if v == nil || v.refcount == refcountInfinite {
		return
	}
	if atomic.AddInt32(&v.refcount, -1) > 0 {
		return
	}
	v.destroy()
}

// RefCount reports the current reference count (refcountInfinite for
// singletons). Intended for tests and diagnostics.
func (v *Value) RefCount() int32 {
	if v == nil {
		return 0
	}
	return atomic.LoadInt32(&v.refcount)
}

func (v *Value) destroy() {
	switch v.kind {
	case KindString:
		if v.s.dealloc != nil {
			v.s.dealloc()
		}
	case KindArray:
		v.a.releaseAll()
	case KindObject:
		v.o.releaseAll()
	}
}

// Copy bumps v's refcount and returns v itself (a "logical copy" sharing
// storage, spec §5 "Shared-resource policy"). Distinct from Duplicate, which
// deep-copies.
func (v *Value) Copy() *Value {
	return v.Retain()
}
