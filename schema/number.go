package schema

import (
	"math"
	"strconv"

	"github.com/kfirtal/jsondom"
)

// numberValidator carries the numeric keyword set (spec §3.8), field-for-
// field as the teacher's minimum/maximum/exclusiveMinimum/exclusiveMaximum/
// multipleOf types, restructured onto one node instead of one type per
// keyword.
type numberValidator struct {
	base

	hasMultipleOf bool
	multipleOf    float64

	hasMinimum bool
	minimum    float64

	hasMaximum bool
	maximum    float64

	hasExclusiveMinimum bool
	exclusiveMinimum    float64

	hasExclusiveMaximum bool
	exclusiveMaximum    float64
}

// Validate applies the numeric keywords only when v actually is a number
// (JSON Schema applicator semantics: a keyword whose instance kind doesn't
// match is vacuously satisfied; the separate "type" keyword, enforced by
// typeValidator, is what actually requires a number).
func (n *numberValidator) Validate(v *jsondom.Value) error {
	if v == nil || !v.IsNumber() {
		return nil
	}
	num, _ := v.Number()

	d, res := num.GetDouble()
	if res&jsondom.ConvOK == 0 {
		return &ValidationError{Keyword: "type", Reason: "number could not be evaluated numerically"}
	}

	if n.hasMultipleOf && math.Mod(d, n.multipleOf) != 0 {
		return &ValidationError{Keyword: "multipleOf",
			Reason: "value is not a multiple of " + strconv.FormatFloat(n.multipleOf, 'f', 6, 64)}
	}
	if n.hasMinimum && d < n.minimum {
		return &ValidationError{Keyword: "minimum",
			Reason: "value is less than " + strconv.FormatFloat(n.minimum, 'f', 6, 64)}
	}
	if n.hasMaximum && d > n.maximum {
		return &ValidationError{Keyword: "maximum",
			Reason: "value is greater than " + strconv.FormatFloat(n.maximum, 'f', 6, 64)}
	}
	if n.hasExclusiveMinimum && d <= n.exclusiveMinimum {
		return &ValidationError{Keyword: "exclusiveMinimum",
			Reason: "value is not greater than " + strconv.FormatFloat(n.exclusiveMinimum, 'f', 6, 64)}
	}
	if n.hasExclusiveMaximum && d >= n.exclusiveMaximum {
		return &ValidationError{Keyword: "exclusiveMaximum",
			Reason: "value is not less than " + strconv.FormatFloat(n.exclusiveMaximum, 'f', 6, 64)}
	}
	return nil
}

func (n *numberValidator) Dup() Validator { return n }
