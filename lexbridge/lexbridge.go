// Package lexbridge adapts raw JSON bytes into the SAX event stream that
// drives jsondom's builder and schema validator (spec §4.3). It wraps
// encoding/json.Decoder as an ecosystem tokenizer rather than hand-rolling a
// scanner (grounded on simon-lentz-yammm's adapter/json/parse.go), using
// UseNumber() so every number reaches jsondom in its original lexical form
// first (spec §3.2's Raw form), never pre-lossy through float64.
package lexbridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/tidwall/jsonc"

	"github.com/kfirtal/jsondom/sax"
)

// Options configures a Run. The zero value parses strict JSON.
type Options struct {
	// AllowComments switches on jsonc.ToJSON preprocessing, stripping
	// JavaScript-style comments before tokenizing. The schema compilers
	// (schema.CompileBytes/CompileReader/CompileFile) set this
	// true; jsondom.Parse leaves it false (spec §6.1: comments are a
	// schema-only convenience, never valid in data documents).
	AllowComments bool
}

// TokenSource is the tokenizer contract lexbridge drives against. The
// default (and only) implementation wraps encoding/json.Decoder; it is
// exposed as an interface so a future tokenizer can be substituted without
// touching the event-production logic in Run.
type TokenSource interface {
	Token() (json.Token, error)
	More() bool
	InputOffset() int64
}

// Run reads all of r, tokenizes it per opts, and dispatches the resulting
// SAX event stream to disp. It returns the error returned by the dispatcher
// (a validator/builder refusal) or a lexical error constructed from a
// tokenizer failure, wrapped as *jsondom.Error-shaped sax.Event first so the
// receiving Sink can build the final typed error.
func Run(r io.Reader, opts Options, disp *sax.Dispatcher) error {
	data, err := io.ReadAll(r)
	if err != nil {
		_, derr := disp.Dispatch(errEvent(-1, err.Error()))
		if derr != nil {
			return derr
		}
		return err
	}
	if opts.AllowComments {
		data = jsonc.ToJSON(data)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	b := &bridge{dec: dec, disp: disp}
	if err := b.value(); err != nil {
		return err
	}
	// Trailing-content check: a well-formed single JSON document leaves the
	// decoder at EOF.
	if tok, err := dec.Token(); err != io.EOF {
		msg := "unexpected content after top-level value"
		if err == nil {
			msg = "unexpected content after top-level value: found additional token"
			_ = tok
		}
		return b.emitError(dec.InputOffset(), msg)
	}
	_, derr := disp.Dispatch(sax.Event{Kind: sax.EvEOF})
	return derr
}

type bridge struct {
	dec  TokenSource
	disp *sax.Dispatcher
}

func errEvent(offset int64, msg string) sax.Event {
	return sax.Event{Kind: sax.EvError, Msg: msg, Offset: offset}
}

func (b *bridge) emitError(offset int64, msg string) error {
	_, err := b.disp.Dispatch(errEvent(offset, msg))
	if err != nil {
		return err
	}
	// No sink refused the error event (e.g. a dispatcher with no sinks
	// installed); still fail Run so the caller never sees a nil error paired
	// with a truncated parse.
	return errors.New(msg)
}

// value reads and dispatches exactly one JSON value at the decoder's
// current position.
func (b *bridge) value() error {
	offset := b.dec.InputOffset()
	tok, err := b.dec.Token()
	if err != nil {
		return b.emitError(offset, "malformed JSON: "+err.Error())
	}
	return b.dispatchToken(tok, offset)
}

func (b *bridge) dispatchToken(tok json.Token, offset int64) error {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return b.object(offset)
		case '[':
			return b.array(offset)
		default:
			return b.emitError(offset, "unexpected delimiter")
		}
	case string:
		return b.emit(sax.Event{Kind: sax.EvString, Bytes: []byte(t), Offset: offset})
	case json.Number:
		return b.emitNumber(string(t), offset)
	case bool:
		return b.emit(sax.Event{Kind: sax.EvBoolean, Bool: t, Offset: offset})
	case nil:
		return b.emit(sax.Event{Kind: sax.EvNull, Offset: offset})
	default:
		return b.emitError(offset, "unrecognized JSON token")
	}
}

func (b *bridge) emitNumber(raw string, offset int64) error {
	return b.emit(sax.Event{Kind: sax.EvNumber, NumForm: sax.NumRaw, RawNumber: raw, Offset: offset})
}

func (b *bridge) emit(ev sax.Event) error {
	cont, err := b.disp.Dispatch(ev)
	if err != nil {
		return err
	}
	if !cont {
		return errors.New("parse aborted: a sink declined to continue")
	}
	return nil
}

func (b *bridge) object(offset int64) error {
	if err := b.emit(sax.Event{Kind: sax.EvBeginObject, Offset: offset}); err != nil {
		return err
	}
	for b.dec.More() {
		keyOffset := b.dec.InputOffset()
		keyTok, err := b.dec.Token()
		if err != nil {
			return b.emitError(keyOffset, "malformed object key: "+err.Error())
		}
		key, ok := keyTok.(string)
		if !ok {
			return b.emitError(keyOffset, "expected string object key")
		}
		if err := b.emit(sax.Event{Kind: sax.EvKey, Bytes: []byte(key), Offset: keyOffset}); err != nil {
			return err
		}
		if err := b.value(); err != nil {
			return err
		}
	}
	closeOffset := b.dec.InputOffset()
	if _, err := b.dec.Token(); err != nil { // consumes '}'
		return b.emitError(closeOffset, "malformed object: missing closing brace")
	}
	return b.emit(sax.Event{Kind: sax.EvEndObject, Offset: closeOffset})
}

func (b *bridge) array(offset int64) error {
	if err := b.emit(sax.Event{Kind: sax.EvBeginArray, Offset: offset}); err != nil {
		return err
	}
	for b.dec.More() {
		if err := b.value(); err != nil {
			return err
		}
	}
	closeOffset := b.dec.InputOffset()
	if _, err := b.dec.Token(); err != nil { // consumes ']'
		return b.emitError(closeOffset, "malformed array: missing closing bracket")
	}
	return b.emit(sax.Event{Kind: sax.EvEndArray, Offset: closeOffset})
}
