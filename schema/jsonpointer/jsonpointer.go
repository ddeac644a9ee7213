// Package jsonpointer implements RFC 6901 JSON Pointer evaluation directly
// against a *jsondom.Value, so looking up a $ref fragment never re-parses
// the document (adapted from the teacher's jsonpointer package, whose
// Evaluate re-unmarshaled the whole document into interface{} on every
// call — the "second pass" spec.md's streaming model rules out).
package jsonpointer

import (
	"strconv"
	"strings"

	"github.com/kfirtal/jsondom"
)

// Pointer is a parsed JSON Pointer: a sequence of reference tokens, each
// already unescaped (~1 -> "/", ~0 -> "~", per RFC 6901 §3).
type Pointer []string

// Parse splits path into a Pointer. path must be empty (whole-document
// pointer) or begin with "/"; anything else is a SyntaxError.
func Parse(path string) (Pointer, error) {
	if path == "" {
		return Pointer{}, nil
	}
	if path[0] != '/' {
		return nil, &SyntaxError{Path: path, Err: "pointer must be empty or start with '/'"}
	}
	raw := strings.Split(path[1:], "/")
	tokens := make(Pointer, len(raw))
	for i, t := range raw {
		tokens[i] = unescape(t)
	}
	return tokens, nil
}

func unescape(tok string) string {
	if !strings.Contains(tok, "~") {
		return tok
	}
	tok = strings.ReplaceAll(tok, "~1", "/")
	tok = strings.ReplaceAll(tok, "~0", "~")
	return tok
}

func escape(tok string) string {
	tok = strings.ReplaceAll(tok, "~", "~0")
	tok = strings.ReplaceAll(tok, "/", "~1")
	return tok
}

// String renders p back into RFC 6901 text form.
func (p Pointer) String() string {
	var b strings.Builder
	for _, t := range p {
		b.WriteByte('/')
		b.WriteString(escape(t))
	}
	return b.String()
}

// Evaluate walks doc following p's tokens, returning the addressed Value
// (not Retain'd; callers that keep it must Retain explicitly) or an error
// naming the first token that failed to resolve.
func Evaluate(doc *jsondom.Value, p Pointer) (*jsondom.Value, error) {
	cur := doc
	for i, tok := range p {
		switch {
		case cur.IsObject():
			if !cur.ObjectHas(tok) {
				return nil, MissingTokenError(tok)
			}
			cur = cur.ObjectGet(tok)
		case cur.IsArray():
			idx, err := strconv.Atoi(tok)
			if err != nil {
				return nil, &InvalidPointerError{Path: Pointer(p[:i+1]).String(), Reason: "array token is not an integer"}
			}
			if idx < 0 || idx >= cur.ArrayLen() {
				return nil, ArrayIndexError(idx)
			}
			cur = cur.ArrayGet(idx)
		default:
			return nil, &InvalidPointerError{Path: Pointer(p[:i]).String(), Reason: "pointer token applied to a scalar value"}
		}
	}
	return cur, nil
}

// EvaluateString is a convenience wrapper parsing path then evaluating it.
func EvaluateString(doc *jsondom.Value, path string) (*jsondom.Value, error) {
	p, err := Parse(path)
	if err != nil {
		return nil, err
	}
	return Evaluate(doc, p)
}
