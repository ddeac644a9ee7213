package schema

import "github.com/kfirtal/jsondom"

// arrayValidator carries the array keyword set (spec §3.8/§4.5): either a
// single schema applied to every element ("items" as a schema) or a tuple of
// positional schemas with "additionalItems" governing the tail, plus
// min/maxItems and uniqueItems. Ported from the teacher's items/
// additionalItems/minItems/maxItems/uniqueItems keyword types.
type arrayValidator struct {
	base

	// itemsSingle is used when "items" was a single schema (applies to
	// every element). itemsTuple is used when "items" was an array of
	// schemas (positional). Exactly one of the two is set; both nil means
	// "items" was absent (every element is unconstrained).
	itemsSingle Validator
	itemsTuple  []Validator

	// additionalItems governs elements past len(itemsTuple) when itemsTuple
	// is in use. nil means unconstrained; additionalItemsFalse means no
	// further elements are allowed past the tuple.
	additionalItems      Validator
	additionalItemsFalse bool

	contains Validator // at least one element must validate against this

	hasMinItems bool
	minItems    int
	hasMaxItems bool
	maxItems    int

	uniqueItems bool
}

// Validate applies array keywords only when v is actually an array (see
// numberValidator.Validate's comment on applicator vs type semantics).
func (a *arrayValidator) Validate(v *jsondom.Value) error {
	if v == nil || !v.IsArray() {
		return nil
	}
	n := v.ArrayLen()
	if a.hasMinItems && n < a.minItems {
		return &ValidationError{Keyword: "minItems", Reason: "array has fewer than minItems elements"}
	}
	if a.hasMaxItems && n > a.maxItems {
		return &ValidationError{Keyword: "maxItems", Reason: "array has more than maxItems elements"}
	}
	if len(a.itemsTuple) > 0 {
		if a.additionalItemsFalse && n > len(a.itemsTuple) {
			return &ValidationError{Keyword: "additionalItems", Reason: "array has more elements than the items tuple allows"}
		}
	}
	if a.uniqueItems {
		// Structural (not lexical) dedup per DESIGN.md's Open Question
		// decision: HashKey only covers strings, so witness membership is
		// checked with jsondom.Equal over the accumulated set rather than a
		// raw hash-set lookup.
		seen := make([]*jsondom.Value, 0, n)
		for i := 0; i < n; i++ {
			elem := v.ArrayGet(i)
			for _, w := range seen {
				if jsondom.Equal(elem, w) {
					return &ValidationError{Keyword: "uniqueItems", Reason: "array contains duplicate elements"}
				}
			}
			seen = append(seen, elem)
		}
	}
	if a.contains != nil {
		found := false
		for i := 0; i < n; i++ {
			if a.contains.Validate(v.ArrayGet(i)) == nil {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{Keyword: "contains", Reason: "no element satisfies contains"}
		}
	}
	return nil
}

// ChildForIndex implements spec §4.5's tuple-vs-single items routing.
func (a *arrayValidator) ChildForIndex(i int) Validator {
	if len(a.itemsTuple) > 0 {
		if i < len(a.itemsTuple) {
			return a.itemsTuple[i]
		}
		if a.additionalItemsFalse {
			return noneValidator{}
		}
		if a.additionalItems != nil {
			return a.additionalItems
		}
		return anyValidator{}
	}
	if a.itemsSingle != nil {
		return a.itemsSingle
	}
	return anyValidator{}
}

func (a *arrayValidator) CollectSchemas(reg *Registry) {
	if a.itemsSingle != nil {
		a.itemsSingle.CollectSchemas(reg)
	}
	for _, s := range a.itemsTuple {
		s.CollectSchemas(reg)
	}
	if a.additionalItems != nil {
		a.additionalItems.CollectSchemas(reg)
	}
	if a.contains != nil {
		a.contains.CollectSchemas(reg)
	}
}

func (a *arrayValidator) Dup() Validator { return a }
