package schema

import "github.com/kfirtal/jsondom"

// Validator is one node of a compiled schema tree (spec §3.8). Concrete
// kinds below mirror the teacher's keyword-group split in keywordvalidator.go,
// restructured as methods on a type per JSON kind instead of free functions
// taking a whole JsonSchema struct.
//
// Validate checks only this node's own keyword constraints against v — it
// does not recurse into v's children. Recursion is the caller's job, done
// either all at once by ValidateValue (for an already-fully-built Value) or
// incrementally by StreamValidator (one container at a time, as each closes).
type Validator interface {
	Validate(v *jsondom.Value) error

	// ChildFor returns the Validator that governs the value stored under
	// key in an object (properties / patternProperties / additionalProperties
	// routing, spec §3.8 "objectValidator"). Non-object validators return
	// anyValidator{}.
	ChildFor(key string) Validator

	// ChildForIndex returns the Validator that governs the i'th element of
	// an array (tuple items / single-schema items / additionalItems
	// routing). Non-array validators return anyValidator{}.
	ChildForIndex(i int) Validator

	// CollectSchemas records every still-unresolved $ref node in this
	// subtree with reg as a pending reference, recursing into every
	// sub-validator it owns. Registration by $id and by path is done earlier,
	// by parseSchema.
	CollectSchemas(reg *Registry)

	// Dup returns a node usable anywhere this one is, for diamond-shaped
	// schema graphs (spec §3.8). Compiled validator trees are immutable
	// once parseSchema returns, so it is always safe for Dup to return the receiver
	// itself rather than deep-copy.
	Dup() Validator

	// Default returns this node's own "default" keyword value (duplicated,
	// caller-owned) and whether one was declared (spec §3.8
	// "default_value()"). Most nodes never carry one; see withDefault.
	Default() (*jsondom.Value, bool)
}

// base supplies the permissive defaults most concrete validators want:
// no per-key/per-index routing, nothing to register, identity Dup, no
// default value.
type base struct{}

func (base) ChildFor(string) Validator               { return anyValidator{} }
func (base) ChildForIndex(int) Validator              { return anyValidator{} }
func (base) CollectSchemas(*Registry)                 {}
func (b base) Dup() Validator                         { return b }
func (base) Default() (*jsondom.Value, bool)          { return nil, false }

// withDefault decorates any compiled Validator with the "default" keyword
// value declared directly on that schema object (spec §4.5 Defaults). It
// forwards every other method to the wrapped node.
type withDefault struct {
	Validator
	def *jsondom.Value
}

func (w *withDefault) Default() (*jsondom.Value, bool) {
	if w.def == nil {
		return nil, false
	}
	return w.def.Duplicate(), true
}

func (w *withDefault) Dup() Validator { return w }

// anyValidator accepts every value (the schema `true`, or an empty schema
// object {}).
type anyValidator struct{ base }

func (anyValidator) Validate(*jsondom.Value) error { return nil }
func (anyValidator) Dup() Validator                { return anyValidator{} }

// noneValidator rejects every value (the schema `false`).
type noneValidator struct{ base }

func (noneValidator) Validate(v *jsondom.Value) error {
	return &ValidationError{Keyword: "false", Reason: "schema `false` rejects all instances"}
}
func (noneValidator) Dup() Validator { return noneValidator{} }

// ValidateValue recursively validates v against root: root's own
// constraints first, then (for composites) each child against the
// validator root routes it to. This is the non-streaming convenience
// entry point (spec §6.4 validate); StreamValidator achieves the same
// result incrementally, one container at a time, during parsing.
func ValidateValue(v *jsondom.Value, root Validator) error {
	if root == nil {
		return nil
	}
	if err := root.Validate(v); err != nil {
		return err
	}
	switch {
	case v.IsObject():
		for _, key := range v.ObjectKeys() {
			child := root.ChildFor(key)
			if err := ValidateValue(v.ObjectGet(key), child); err != nil {
				return err
			}
		}
	case v.IsArray():
		n := v.ArrayLen()
		for i := 0; i < n; i++ {
			child := root.ChildForIndex(i)
			if err := ValidateValue(v.ArrayGet(i), child); err != nil {
				return err
			}
		}
	}
	return nil
}
