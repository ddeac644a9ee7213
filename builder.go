package jsondom

import (
	"github.com/kfirtal/jsondom/sax"
)

// Builder incrementally constructs a Value tree from a SAX event stream
// (spec §4.4). It implements sax.Sink so it can be wired directly into a
// sax.Dispatcher alongside a validator.
type Builder struct {
	stack   []frame
	root    *Value
	pending *pendingKey
	done    bool
}

type frame struct {
	container *Value // Array or Object under construction
	isObject  bool
}

type pendingKey struct {
	key *Value
}

// NewBuilder constructs an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Root returns the completed root Value once the stream has ended, or
// Invalid if the stream isn't finished (or failed).
func (b *Builder) Root() *Value {
	if !b.done || b.root == nil {
		return Invalid()
	}
	return b.root
}

// Abandon releases any partially-built tree (spec §4.3: "a validation
// failure aborts the parse and the partial DOM is released", §5
// "Cancellation... the builder releases the partial DOM on its way out").
func (b *Builder) Abandon() {
	for _, f := range b.stack {
		f.container.Release()
	}
	b.stack = nil
	if b.pending != nil {
		b.pending.key.Release()
		b.pending = nil
	}
	if b.root != nil {
		b.root.Release()
		b.root = nil
	}
}

// HandleEvent implements sax.Sink.
func (b *Builder) HandleEvent(ev sax.Event) (bool, error) {
	switch ev.Kind {
	case sax.EvBeginObject:
		b.push(ObjectNew(0), true)
	case sax.EvBeginArray:
		b.push(ArrayNew(0), false)
	case sax.EvKey:
		b.pending = &pendingKey{key: StringOf(ev.Bytes)}
	case sax.EvEndObject:
		if err := b.pop(); err != nil {
			return false, err
		}
	case sax.EvEndArray:
		if err := b.pop(); err != nil {
			return false, err
		}
	case sax.EvNull, sax.EvBoolean, sax.EvNumber, sax.EvString:
		b.attach(valueFromEvent(ev))
	case sax.EvError:
		code := ErrorCode(ev.ErrCode)
		if code == ErrNone {
			code = ErrLexical
		}
		return false, &Error{Code: code, Msg: ev.Msg, Offset: ev.Offset}
	case sax.EvEOF:
		b.done = true
	}
	return true, nil
}

// valueFromEvent converts a scalar sax.Event into a freshly retained Value,
// selecting the appropriate three-form-number constructor (spec §3.2).
func valueFromEvent(ev sax.Event) *Value {
	switch ev.Kind {
	case sax.EvNull:
		return Null()
	case sax.EvBoolean:
		return BoolOf(ev.Bool)
	case sax.EvString:
		return StringOf(ev.Bytes)
	case sax.EvNumber:
		switch ev.NumForm {
		case sax.NumInt64:
			return IntOf(ev.Int64)
		case sax.NumDouble:
			return DoubleOf(ev.Double)
		default:
			return RawNumberOf(ev.RawNumber)
		}
	default:
		return Invalid()
	}
}

func (b *Builder) push(container *Value, isObject bool) {
	b.stack = append(b.stack, frame{container: container, isObject: isObject})
}

func (b *Builder) pop() error {
	if len(b.stack) == 0 {
		return NewError(ErrGeneric, "DOM builder: unbalanced container close")
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.attach(top.container)
	return nil
}

// attach places v into the currently open container (as a value, or as a
// value for the pending key if inside an object), or sets it as the root if
// the stack is empty (spec §4.4).
func (b *Builder) attach(v *Value) {
	if len(b.stack) == 0 {
		b.root = v
		return
	}
	top := &b.stack[len(b.stack)-1]
	if top.isObject {
		if b.pending == nil {
			// Malformed stream (value with no preceding key); drop it
			// rather than corrupt the object. The lexical bridge is
			// expected to never produce this.
			v.Release()
			return
		}
		_ = top.container.ObjectPut(b.pending.key, v)
		b.pending = nil
		return
	}
	_ = top.container.ArrayAppend(v)
}

// InjectDefault puts key->value into the innermost open object for an
// omitted property. schema.StreamValidator calls it while handling an
// EndObject, before the Builder itself closes that object (spec §4.5 "Defaults propagate only at the point the omission is
// detected"). key must be non-empty; value is consumed.
func (b *Builder) InjectDefault(key string, value *Value) {
	if len(b.stack) == 0 {
		return
	}
	top := &b.stack[len(b.stack)-1]
	if !top.isObject {
		value.Release()
		return
	}
	_ = top.container.ObjectPut(StringOf([]byte(key)), value)
}
