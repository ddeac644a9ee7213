package schema

import (
	"github.com/kfirtal/jsondom"
	"github.com/kfirtal/jsondom/sax"
)

// StreamValidator implements sax.Sink, validating an event stream against a
// compiled schema incrementally (spec §4.3/§4.5 "validate during parsing,
// not as a second pass"): each container is checked against its own
// keywords at the moment it closes, not at document end. It is dispatched
// ahead of the jsondom.Builder on the same sax.Dispatcher (spec §4.3
// "validator-first fan-out"), so a rejection aborts the parse before the
// builder ever commits the offending state.
//
// Keywords like uniqueItems/contains/minProperties need the fully-built
// subtree to check, so StreamValidator maintains its own small parallel
// value tree (built with the same public jsondom constructors the real
// Builder uses) purely as scratch space for Validator.Validate calls; each
// subtree is released once nothing above it still needs it.
type StreamValidator struct {
	root Validator

	stack      []svFrame
	pendingKey string
	hasPending bool

	// builder, if set via SetBuilder, receives default-value injections at
	// the moment this validator detects a missing defaulted property,
	// before the real Builder's own EndObject processing for that same
	// event runs (spec §4.5 Defaults).
	builder *jsondom.Builder
}

type svFrame struct {
	container *jsondom.Value
	isObject  bool
	validator Validator // governs values placed directly into this container
}

func newStreamValidator(root Validator) *StreamValidator {
	if root == nil {
		root = anyValidator{}
	}
	return &StreamValidator{root: root}
}

// SetBuilder wires sv to the real jsondom.Builder consuming the same event
// stream, enabling default-value injection (spec §4.5).
func (sv *StreamValidator) SetBuilder(b *jsondom.Builder) { sv.builder = b }

// HandleEvent implements sax.Sink.
func (sv *StreamValidator) HandleEvent(ev sax.Event) (bool, error) {
	switch ev.Kind {
	case sax.EvBeginObject:
		sv.stack = append(sv.stack, svFrame{
			container: jsondom.ObjectNew(0),
			isObject:  true,
			validator: sv.incomingValidator(),
		})
	case sax.EvBeginArray:
		sv.stack = append(sv.stack, svFrame{
			container: jsondom.ArrayNew(0),
			isObject:  false,
			validator: sv.incomingValidator(),
		})
	case sax.EvKey:
		sv.pendingKey = string(ev.Bytes)
		sv.hasPending = true
	case sax.EvEndObject, sax.EvEndArray:
		if len(sv.stack) == 0 {
			return false, &ValidationError{Keyword: "stream", Reason: "unbalanced container close"}
		}
		top := sv.stack[len(sv.stack)-1]
		sv.stack = sv.stack[:len(sv.stack)-1]
		if err := top.validator.Validate(top.container); err != nil {
			top.container.Release()
			return false, err
		}
		if top.isObject {
			sv.injectDefaults(top)
		}
		sv.attach(top.container)
	case sax.EvNull, sax.EvBoolean, sax.EvNumber, sax.EvString:
		childValidator := sv.incomingValidator()
		v := scalarFromEvent(ev)
		if err := childValidator.Validate(v); err != nil {
			v.Release()
			return false, err
		}
		sv.attach(v)
	case sax.EvError:
		return false, &ValidationError{Keyword: "lexical", Reason: ev.Msg}
	case sax.EvEOF:
		if len(sv.stack) != 0 {
			return false, &ValidationError{Keyword: "stream", Reason: "stream ended with open containers"}
		}
	}
	return true, nil
}

// incomingValidator returns the Validator that governs the next scalar or
// container value about to arrive, routed through the current top frame's
// own validator (ChildFor for an object's pending key, ChildForIndex for an
// array's next index), or sv.root at the top level.
func (sv *StreamValidator) incomingValidator() Validator {
	if len(sv.stack) == 0 {
		return sv.root
	}
	top := &sv.stack[len(sv.stack)-1]
	if top.isObject {
		if !sv.hasPending {
			return anyValidator{}
		}
		return top.validator.ChildFor(sv.pendingKey)
	}
	return top.validator.ChildForIndex(top.container.ArrayLen())
}

// attach places v into the currently open container, or — at the top level,
// where v has already been validated and nothing further needs it —
// releases it immediately.
func (sv *StreamValidator) attach(v *jsondom.Value) {
	if len(sv.stack) == 0 {
		v.Release()
		return
	}
	top := &sv.stack[len(sv.stack)-1]
	if top.isObject {
		if !sv.hasPending {
			v.Release()
			return
		}
		key := sv.pendingKey
		sv.hasPending = false
		_ = top.container.ObjectPut(jsondom.StringOf([]byte(key)), v)
		return
	}
	_ = top.container.ArrayAppend(v)
}

// injectDefaults fills in any "default"-bearing property absent from
// top.container, both in sv's own scratch subtree (so an ancestor's own
// Validate call sees it) and, if sv.builder is set, in the real tree under
// construction (spec §4.5 Defaults, §8 scenario 6).
func (sv *StreamValidator) injectDefaults(top svFrame) {
	seen := make(map[string]bool)
	for _, ov := range objectValidatorsOf(top.validator) {
		for key := range ov.defaults {
			if seen[key] || top.container.ObjectHas(key) {
				continue
			}
			dup, ok := ov.DefaultFor(key)
			if !ok {
				continue
			}
			_ = top.container.ObjectSet(key, dup)
			dup.Release()
			seen[key] = true
			if sv.builder != nil {
				if dup2, ok := ov.DefaultFor(key); ok {
					sv.builder.InjectDefault(key, dup2)
				}
			}
		}
	}
}

// objectValidatorsOf unwraps decorators (withDefault, allOfSchema, a
// resolved refValidator) to find every *objectValidator governing a node,
// so injectDefaults can see defaults declared anywhere in an allOf/$ref
// composition, not just a bare object schema.
func objectValidatorsOf(v Validator) []*objectValidator {
	switch t := v.(type) {
	case *objectValidator:
		return []*objectValidator{t}
	case *withDefault:
		return objectValidatorsOf(t.Validator)
	case *allOfSchema:
		var out []*objectValidator
		for _, c := range t.children {
			out = append(out, objectValidatorsOf(c)...)
		}
		return out
	case *refValidator:
		if t.resolved != nil {
			return objectValidatorsOf(t.resolved)
		}
		return nil
	default:
		return nil
	}
}

// scalarFromEvent converts a scalar sax.Event into a freshly retained
// jsondom.Value, mirroring jsondom.Builder's own valueFromEvent (duplicated
// here rather than exported, since it is a three-line dispatch and the two
// packages otherwise share nothing about event-to-value construction).
func scalarFromEvent(ev sax.Event) *jsondom.Value {
	switch ev.Kind {
	case sax.EvNull:
		return jsondom.Null()
	case sax.EvBoolean:
		return jsondom.BoolOf(ev.Bool)
	case sax.EvString:
		return jsondom.StringOf(ev.Bytes)
	case sax.EvNumber:
		switch ev.NumForm {
		case sax.NumInt64:
			return jsondom.IntOf(ev.Int64)
		case sax.NumDouble:
			return jsondom.DoubleOf(ev.Double)
		default:
			return jsondom.RawNumberOf(ev.RawNumber)
		}
	default:
		return jsondom.Invalid()
	}
}
