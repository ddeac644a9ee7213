// Package sax defines the lexical event vocabulary spec.md §4.3 describes
// and the fan-out dispatcher that drives a DOM builder and a validator from
// the same event stream (spec §2's "bytes -> lexer -> SAX events ->
// [builder], [validator]" pipeline). It has no dependency on the value tree
// or the schema validator so that both can depend on it without a cycle.
package sax

// EventKind enumerates the SAX event vocabulary of spec §4.3.
type EventKind int

const (
	EvBeginObject EventKind = iota
	EvKey
	EvEndObject
	EvBeginArray
	EvEndArray
	EvNumber
	EvString
	EvBoolean
	EvNull
	EvError
	EvEOF
)

func (k EventKind) String() string {
	switch k {
	case EvBeginObject:
		return "BeginObject"
	case EvKey:
		return "Key"
	case EvEndObject:
		return "EndObject"
	case EvBeginArray:
		return "BeginArray"
	case EvEndArray:
		return "EndArray"
	case EvNumber:
		return "Number"
	case EvString:
		return "String"
	case EvBoolean:
		return "Boolean"
	case EvNull:
		return "Null"
	case EvError:
		return "Error"
	case EvEOF:
		return "Eof"
	default:
		return "Unknown"
	}
}

// NumberForm tells a consumer which of Event's numeric fields is meaningful
// for an EvNumber event, mirroring the three-form number model of spec §3.2.
type NumberForm int

const (
	NumRaw NumberForm = iota
	NumInt64
	NumDouble
)

// Event is one SAX event (spec §4.3). Which fields are populated depends on
// Kind:
//   - EvKey, EvString: Bytes
//   - EvNumber: exactly one of RawNumber / Int64 / Double is meaningful,
//     selected by NumForm
//   - EvBoolean: Bool
//   - EvError: ErrCode, Msg
//
// Offset is the byte offset in the source at which the event's lexical
// token began, or -1 if unknown (spec §7, supplemented per SPEC_FULL §6.6).
type Event struct {
	Kind EventKind

	Bytes []byte

	NumForm   NumberForm
	RawNumber string
	Int64     int64
	Double    float64

	Bool bool

	ErrCode int
	Msg     string

	Offset int64
}

// Sink receives SAX events. Returning false (or a non-nil error) aborts the
// parse at that point (spec §4.3, §5 "Cancellation").
type Sink interface {
	HandleEvent(ev Event) (cont bool, err error)
}

// Dispatcher fans out each event to its sinks in order, validator-first
// (spec §4.3: "The validator sees events before the builder commits state").
// The first sink to stop the stream aborts the rest for that event; a
// dispatcher-level abort propagates to the driver (lexbridge), which then
// tears down any partial state.
type Dispatcher struct {
	sinks []Sink
}

// NewDispatcher builds a Dispatcher. Pass the validator sink, if any, before
// the builder sink to preserve the "validator sees it first" contract.
func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

// Dispatch delivers ev to every sink in order. It stops and returns the
// first sink's refusal/error.
func (d *Dispatcher) Dispatch(ev Event) (cont bool, err error) {
	for _, s := range d.sinks {
		if s == nil {
			continue
		}
		cont, err = s.HandleEvent(ev)
		if err != nil || !cont {
			return false, err
		}
	}
	return true, nil
}
