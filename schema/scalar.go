package schema

import "github.com/kfirtal/jsondom"

// typeValidator implements the "type" keyword (spec §3.8: "Type
// validators accept only the matching scalar or container start event").
// JSON Schema's "integer" is accepted here for any number with a zero
// fractional part that fits in an int64 (spec.md §9 GLOSSARY-adjacent note carried from the teacher's TYPE_INTEGER
// handling), checked via Number.GetInt64 rather than string-sniffing.
type typeValidator struct {
	base
	allowed []string // one or more of: null, boolean, object, array, number, string, integer
}

func kindNames(v *jsondom.Value) []string {
	if v == nil {
		return nil
	}
	switch v.Kind() {
	case jsondom.KindNull:
		return []string{"null"}
	case jsondom.KindBool:
		return []string{"boolean"}
	case jsondom.KindObject:
		return []string{"object"}
	case jsondom.KindArray:
		return []string{"array"}
	case jsondom.KindString:
		return []string{"string"}
	case jsondom.KindNumber:
		num, _ := v.Number()
		if _, res := num.GetInt64(); res&jsondom.ConvOK != 0 {
			return []string{"number", "integer"}
		}
		return []string{"number"}
	default:
		return nil
	}
}

func (t *typeValidator) Validate(v *jsondom.Value) error {
	names := kindNames(v)
	for _, allowed := range t.allowed {
		for _, n := range names {
			if n == allowed {
				return nil
			}
		}
	}
	return &ValidationError{Keyword: "type", Reason: "value's type does not match the type keyword"}
}

func (t *typeValidator) Dup() Validator { return t }

// enumValidator accepts a value iff it structurally Equal()s one of its
// members (ported from the teacher's enum.validate, which compared lexical
// json.Marshal output — replaced with jsondom.Equal so "1" and "1.0" and
// reordered object keys compare the way spec §4.1 "Equality" defines, not
// by incidental lexical form).
type enumValidator struct {
	base
	members []*jsondom.Value
}

func (e *enumValidator) Validate(v *jsondom.Value) error {
	for _, m := range e.members {
		if jsondom.Equal(v, m) {
			return nil
		}
	}
	return &ValidationError{Keyword: "enum", Reason: "value does not match any member of enum"}
}
func (e *enumValidator) Dup() Validator { return e }

// constValidator is enum's single-member special case (spec draft-06+,
// present in the teacher as a distinct keyword).
type constValidator struct {
	base
	value *jsondom.Value
}

func (c *constValidator) Validate(v *jsondom.Value) error {
	if jsondom.Equal(v, c.value) {
		return nil
	}
	return &ValidationError{Keyword: "const", Reason: "value does not equal the const value"}
}
func (c *constValidator) Dup() Validator { return c }
