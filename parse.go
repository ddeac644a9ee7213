package jsondom

import (
	"bytes"
	"io"

	"github.com/kfirtal/jsondom/internal/diagnostic"
	"github.com/kfirtal/jsondom/lexbridge"
	"github.com/kfirtal/jsondom/sax"
)

// ParseOptions configures Parse/ParseReader (spec §6.3). The zero value
// parses strict JSON with no validator attached.
type ParseOptions struct {
	// Validator, if non-nil, is consulted on every SAX event before the
	// builder commits it (spec §4.3's validator-first fan-out). A refusal
	// aborts the parse and the partial DOM is released, never returned.
	Validator sax.Sink

	// AllowComments switches on schema-style comment stripping. Parse leaves
	// this false by default (spec §6.1); the schema compilers
	// (schema.CompileBytes/CompileReader/CompileFile) set it true.
	AllowComments bool
}

// defaultInjector is implemented by a validator that can inject "default"
// keyword values directly into the Builder building the real tree (spec
// §4.5). schema.StreamValidator implements this; ParseReader wires it up
// without importing the schema package (which itself imports jsondom),
// avoiding an import cycle.
type defaultInjector interface {
	SetBuilder(b *Builder)
}

// ParseReader reads a single JSON document from r and returns its root
// Value, driving lexbridge -> sax.Dispatcher -> [validator, builder] (spec
// §4.3/§4.4/§6.3). On any lexical or validation failure the partial DOM is
// released and a *Error is returned (spec §5 "Cancellation").
func ParseReader(r io.Reader, opts ParseOptions) (*Value, error) {
	builder := NewBuilder()
	sinks := make([]sax.Sink, 0, 2)
	if opts.Validator != nil {
		if di, ok := opts.Validator.(defaultInjector); ok {
			di.SetBuilder(builder)
		}
		sinks = append(sinks, opts.Validator)
	}
	sinks = append(sinks, builder)
	disp := sax.NewDispatcher(sinks...)

	err := lexbridge.Run(r, lexbridge.Options{AllowComments: opts.AllowComments}, disp)
	if err != nil {
		builder.Abandon()
		if perr, ok := err.(*Error); ok {
			return nil, perr
		}
		diagnostic.Logger().Warn("parse aborted", "error", err.Error())
		return nil, Wrap(ErrLexical, err, "parse aborted")
	}
	return builder.Root(), nil
}

// Parse is a convenience wrapper around ParseReader for an in-memory byte
// slice (spec §6.3 parse).
func Parse(data []byte, opts ParseOptions) (*Value, error) {
	return ParseReader(bytes.NewReader(data), opts)
}
