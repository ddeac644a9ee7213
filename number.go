package jsondom

import (
	"math"
	"strconv"

	"github.com/kfirtal/jsondom/internal/diagnostic"
)

// numberForm is the internal representation a Number was constructed with
// (spec §3.2).
type numberForm int

const (
	formRaw numberForm = iota
	formInt64
	formDouble
)

// number is the value stored inline inside a Value of KindNumber. Conversion
// to int64/double from a raw form is lazy: once a conversion is attempted its
// outcome is cached in convDone/convResult of the number being read, so
// repeated reads through the same Number view don't redo the work (spec
// §3.2, §4.2). Value.Number hands out a copy, so the cache is not shared
// between separate Number views of one Value.
type number struct {
	form numberForm

	raw string
	i   int64
	d   float64

	// lazily populated when form == formRaw
	convDone   bool
	convToI    bool // true if raw converted to int64
	convResult ConvResult
}

func numberFromInt64(i int64) number       { return number{form: formInt64, i: i} }
func numberFromDouble(d float64) number    { return number{form: formDouble, d: d} }
func numberFromRaw(raw string) number      { return number{form: formRaw, raw: raw} }

// ConvResult is a bitmask describing the outcome of a numeric conversion
// (spec §4.2). Each call returns a single bit; a caller may OR the results
// of several calls together.
type ConvResult uint8

const (
	ConvOK ConvResult = 1 << iota
	ConvOverflow
	ConvPrecision
	ConvTruncated
	ConvNotARawNum
	ConvBadArgs
	ConvGeneric
)

// Number is a read-only view over a Value's numeric payload.
type Number struct {
	n number
}

// Form reports which internal representation backs n: "raw", "int64", or
// "double".
func (n *Number) Form() string {
	switch n.n.form {
	case formInt64:
		return "int64"
	case formDouble:
		return "double"
	default:
		return "raw"
	}
}

// GetRaw returns the original lexical string if n was constructed from raw
// bytes, otherwise ConvNotARawNum.
func (n *Number) GetRaw() (string, ConvResult) {
	if n.n.form != formRaw {
		return "", ConvNotARawNum
	}
	return n.n.raw, ConvOK
}

// resolveRaw performs the sticky raw->int64-or-double conversion described in
// spec §4.2: "Raw -> int64 first (exact if it fits); on failure, raw ->
// double; the first success is sticky for subsequent comparisons."
func (n *number) resolveRaw() {
	if n.convDone {
		return
	}
	n.convDone = true
	if i, err := strconv.ParseInt(n.raw, 10, 64); err == nil {
		n.i = i
		n.convToI = true
		n.convResult = ConvOK
		return
	}
	if d, err := strconv.ParseFloat(n.raw, 64); err == nil && !math.IsNaN(d) && !math.IsInf(d, 0) {
		n.d = d
		n.convToI = false
		n.convResult = ConvOK
		return
	}
	n.convResult = ConvGeneric
}

// GetInt64 returns the int64 value and a conversion-result bitmask. Lossy
// conversions (e.g. truncating a double) set bits without returning an error
// value for the int64 itself (spec §4.2).
func (n *Number) GetInt64() (int64, ConvResult) {
	switch n.n.form {
	case formInt64:
		return n.n.i, ConvOK
	case formDouble:
		d := n.n.d
		if d != math.Trunc(d) {
			return int64(d), ConvTruncated
		}
		if d >= math.MaxInt64 || d < math.MinInt64 {
			return 0, ConvOverflow
		}
		return int64(d), ConvOK
	default: // raw
		n.n.resolveRaw()
		if n.n.convResult != ConvOK {
			return 0, ConvGeneric
		}
		if n.n.convToI {
			return n.n.i, ConvOK
		}
		// raw converted only to double; narrowing to int64 may lose precision.
		d := n.n.d
		if d >= math.MaxInt64 || d < math.MinInt64 {
			return 0, ConvOverflow
		}
		if d != math.Trunc(d) {
			return int64(d), ConvPrecision
		}
		return int64(d), ConvOK
	}
}

// GetInt32 narrows GetInt64's result, adding ConvOverflow if it doesn't fit.
func (n *Number) GetInt32() (int32, ConvResult) {
	i, res := n.GetInt64()
	if res != ConvOK {
		return int32(i), res
	}
	if i > math.MaxInt32 || i < math.MinInt32 {
		return int32(i), ConvOverflow
	}
	return int32(i), ConvOK
}

// GetDouble returns the double value and a conversion-result bitmask.
func (n *Number) GetDouble() (float64, ConvResult) {
	switch n.n.form {
	case formDouble:
		return n.n.d, ConvOK
	case formInt64:
		d := float64(n.n.i)
		if int64(d) != n.n.i {
			return d, ConvPrecision
		}
		return d, ConvOK
	default: // raw
		n.n.resolveRaw()
		if n.n.convResult != ConvOK {
			return 0, ConvGeneric
		}
		if n.n.convToI {
			return float64(n.n.i), ConvOK
		}
		return n.n.d, ConvOK
	}
}

// asComparable reduces n to either an exact int64 or a double for comparison
// purposes, mirroring GetInt64/GetDouble's sticky raw resolution.
func (n *number) asComparable() (i int64, isInt bool, d float64, ok bool) {
	switch n.form {
	case formInt64:
		return n.i, true, 0, true
	case formDouble:
		return 0, false, n.d, true
	default:
		n.resolveRaw()
		if n.convResult != ConvOK {
			return 0, false, 0, false
		}
		if n.convToI {
			return n.i, true, 0, true
		}
		return 0, false, n.d, true
	}
}

// CompareNumbers implements the total order of spec §3.2: integers compare
// exactly when both fit int64, otherwise both promote to double. If either
// side's raw form fails to convert, ErrNumberNotComparable is returned and
// the failure is logged (spec §3.2: "the comparison is logged").
func CompareNumbers(a, b *Number) (int, error) {
	ai, aIsInt, ad, aok := a.n.asComparable()
	bi, bIsInt, bd, bok := b.n.asComparable()
	if !aok || !bok {
		diagnostic.Logger().Warn("number comparison failed: raw form not convertible",
			"a_ok", aok, "b_ok", bok)
		return 0, ErrNumberNotComparable
	}
	if aIsInt && bIsInt {
		switch {
		case ai < bi:
			return -1, nil
		case ai > bi:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if !aIsInt {
		ad = a.n.d
	} else {
		ad = float64(ai)
	}
	if !bIsInt {
		bd = b.n.d
	} else {
		bd = float64(bi)
	}
	switch {
	case ad < bd:
		return -1, nil
	case ad > bd:
		return 1, nil
	default:
		return 0, nil
	}
}
