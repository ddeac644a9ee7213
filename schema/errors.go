// Package schema implements a JSON Schema (draft-04 family) validator as a
// composable tree of keyword validators, built from a jsondom.Value schema
// document and driven either against an already-built jsondom.Value or
// incrementally off a sax event stream (see Validate and StreamValidator).
package schema

import "fmt"

// ValidationError reports a single schema-constraint violation, named after
// the keyword that rejected the value and the JSON Pointer path at which it
// occurred (ported from the teacher's KeywordValidationError/
// SchemaValidationError, merged into one shape per DESIGN.md's structured-
// error-object decision).
type ValidationError struct {
	Path    string
	Keyword string
	Reason  string
}

func (e *ValidationError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("validation failed at %s: keyword %q: %s", path, e.Keyword, e.Reason)
}

// CompilationError reports a malformed schema document: a keyword with the
// wrong JSON type, an unparsable regular expression, and the like (ported
// from the teacher's SchemaCompilationError).
type CompilationError struct {
	Path string
	Err  string
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("schema compilation failed at %s: %s", e.Path, e.Err)
}

// ReferenceError reports a $ref that could not be resolved, or that pointed
// into a fragment that does not exist (ported from the teacher's
// InvalidReferenceError).
type ReferenceError struct {
	SchemaURI string
	Fragment  string
	Err       string
}

func (e *ReferenceError) Error() string {
	fragment := e.Fragment
	if fragment == "" {
		fragment = "/"
	}
	return fmt.Sprintf("%s: schema id %q, fragment %q", e.Err, e.SchemaURI, fragment)
}
