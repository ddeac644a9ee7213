package schema

import "github.com/kfirtal/jsondom"

// combKind selects which of the boolean-combinator semantics spec §4.5
// describes a combinatorValidator implements.
type combKind int

const (
	combAllOf combKind = iota
	combAnyOf
	combOneOf
)

// combinatorValidator implements allOf/anyOf/oneOf (spec §3.8, §4.5). Each
// child is run to completion against the already-fully-built value (the
// non-streaming ValidateValue path). On the streaming path StreamValidator
// builds the subtree from the events itself and calls in once it is closed,
// so this type is the semantic core both paths use once a subtree is
// available.
type combinatorValidator struct {
	base
	kind     combKind
	children []Validator
}

func (c *combinatorValidator) Validate(v *jsondom.Value) error {
	switch c.kind {
	case combAllOf:
		for _, child := range c.children {
			if err := ValidateValue(v, child); err != nil {
				return err
			}
		}
		return nil
	case combAnyOf:
		var firstErr error
		for _, child := range c.children {
			if err := ValidateValue(v, child); err == nil {
				return nil
			} else if firstErr == nil {
				firstErr = err
			}
		}
		return &ValidationError{Keyword: "anyOf", Reason: "value matches none of the anyOf schemas"}
	case combOneOf:
		matches := 0
		for _, child := range c.children {
			if err := ValidateValue(v, child); err == nil {
				matches++
			}
		}
		if matches != 1 {
			return &ValidationError{Keyword: "oneOf", Reason: "value must match exactly one oneOf schema"}
		}
		return nil
	}
	return nil
}

func (c *combinatorValidator) CollectSchemas(reg *Registry) {
	for _, child := range c.children {
		child.CollectSchemas(reg)
	}
}

func (c *combinatorValidator) Dup() Validator { return c }

// notValidator implements the "not" keyword (spec §3.8): succeeds iff its
// single child fails.
type notValidator struct {
	base
	child Validator
}

func (n *notValidator) Validate(v *jsondom.Value) error {
	if err := ValidateValue(v, n.child); err == nil {
		return &ValidationError{Keyword: "not", Reason: "value must not match the not schema"}
	}
	return nil
}

func (n *notValidator) CollectSchemas(reg *Registry) { n.child.CollectSchemas(reg) }
func (n *notValidator) Dup() Validator                { return n }

// ifThenElseValidator implements SPEC_FULL §6.6's supplemented if/then/else
// (present in the teacher's keyword set, not excluded by any Non-goal).
type ifThenElseValidator struct {
	base
	ifSchema   Validator
	thenSchema Validator // may be nil
	elseSchema Validator // may be nil
}

func (c *ifThenElseValidator) Validate(v *jsondom.Value) error {
	if ValidateValue(v, c.ifSchema) == nil {
		if c.thenSchema != nil {
			return ValidateValue(v, c.thenSchema)
		}
		return nil
	}
	if c.elseSchema != nil {
		return ValidateValue(v, c.elseSchema)
	}
	return nil
}

func (c *ifThenElseValidator) CollectSchemas(reg *Registry) {
	c.ifSchema.CollectSchemas(reg)
	if c.thenSchema != nil {
		c.thenSchema.CollectSchemas(reg)
	}
	if c.elseSchema != nil {
		c.elseSchema.CollectSchemas(reg)
	}
}

func (c *ifThenElseValidator) Dup() Validator { return c }

// allOfSchema combines multiple independently-compiled validators that all
// apply to the same instance, used by the schema builder to merge a
// schema's own keyword constraints with its allOf/if-then-else siblings
// into one Validator without losing ChildFor/ChildForIndex routing from
// whichever sibling actually defines it.
type allOfSchema struct {
	base
	children []Validator
}

func (a *allOfSchema) Validate(v *jsondom.Value) error {
	for _, c := range a.children {
		if err := c.Validate(v); err != nil {
			return err
		}
	}
	return nil
}

func (a *allOfSchema) ChildFor(key string) Validator {
	for _, c := range a.children {
		if ov, ok := c.(*objectValidator); ok {
			if _, has := ov.properties[key]; has {
				return ov.ChildFor(key)
			}
		}
	}
	for _, c := range a.children {
		if s := c.ChildFor(key); !isAnyValidator(s) {
			return s
		}
	}
	return anyValidator{}
}

func (a *allOfSchema) ChildForIndex(i int) Validator {
	for _, c := range a.children {
		if s := c.ChildForIndex(i); !isAnyValidator(s) {
			return s
		}
	}
	return anyValidator{}
}

func (a *allOfSchema) CollectSchemas(reg *Registry) {
	for _, c := range a.children {
		c.CollectSchemas(reg)
	}
}

func (a *allOfSchema) Dup() Validator { return a }

func isAnyValidator(v Validator) bool {
	_, ok := v.(anyValidator)
	return ok
}
