package jsondom

import "sort"

// djb2 hashes key per spec §3.5/§4.1 ("Hash is djb2 over the key bytes").
func djb2(key []byte) uint64 {
	var h uint64 = 5381
	for _, c := range key {
		h = ((h << 5) + h) + uint64(c)
	}
	return h
}

// HashKey returns the djb2 hash of v's bytes if v is a String, and false
// otherwise (spec §3.5/§4.1: "only string keys are hashed").
func (v *Value) HashKey() (uint64, bool) {
	b, ok := v.StringBytes()
	if !ok {
		return 0, false
	}
	return djb2(b), true
}

// kindRank orders Kind for the "different kinds" branch of Compare (spec
// §4.1 Ordering). The exact order is unspecified by the spec beyond being
// fixed and total; this one follows JSON's own type-simplicity-ish order.
func kindRank(k Kind) int {
	switch k {
	case KindInvalid:
		return 0
	case KindNull:
		return 1
	case KindBool:
		return 2
	case KindNumber:
		return 3
	case KindString:
		return 4
	case KindArray:
		return 5
	case KindObject:
		return 6
	default:
		return 7
	}
}

// Equal reports structural equality (spec §4.1 "Equality"): same kind, and
// for composite kinds, equal content regardless of representation. Numbers
// compare by value, not by internal form.
func Equal(a, b *Value) bool {
	return Compare(a, b) == 0
}

// Compare implements the total order of spec §4.1 "Ordering". Numbers that
// are not comparable (raw-conversion failure) fall back to a byte-wise
// comparison of their raw text, and each such failure is logged at the
// Number layer (see CompareNumbers).
func Compare(a, b *Value) int {
	if a == nil {
		a = Invalid()
	}
	if b == nil {
		b = Invalid()
	}
	ra, rb := kindRank(a.kind), kindRank(b.kind)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindInvalid, KindNull:
		return 0
	case KindBool:
		if a.b == b.b {
			return 0
		}
		if !a.b {
			return -1
		}
		return 1
	case KindNumber:
		an, _ := a.Number()
		bn, _ := b.Number()
		c, err := CompareNumbers(an, bn)
		if err != nil {
			// Fall back to a stable, deterministic (if not mathematically
			// meaningful) order so Compare remains a total order even when
			// the numbers themselves are not comparable.
			return compareBytes([]byte(an.rawOrEmpty()), []byte(bn.rawOrEmpty()))
		}
		return c
	case KindString:
		ab, _ := a.StringBytes()
		bb, _ := b.StringBytes()
		return compareBytes(ab, bb)
	case KindArray:
		return compareArrays(a, b)
	case KindObject:
		return compareObjects(a, b)
	default:
		return 0
	}
}

func (n *Number) rawOrEmpty() string {
	if n.n.form == formRaw {
		return n.n.raw
	}
	return ""
}

func compareBytes(a, b []byte) int {
	la, lb := len(a), len(b)
	n := la
	if lb < n {
		n = lb
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	default:
		return 0
	}
}

// compareArrays: elementwise; shorter < longer on a tie over the common
// prefix (spec §4.1).
func compareArrays(a, b *Value) int {
	na, nb := a.a.len(), b.a.len()
	n := na
	if nb < n {
		n = nb
	}
	for i := 0; i < n; i++ {
		if c := Compare(a.a.at(i), b.a.at(i)); c != 0 {
			return c
		}
	}
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

// compareObjects: sort each side's keys lexicographically, then compare
// key/value pairs (spec §4.1).
func compareObjects(a, b *Value) int {
	ak := sortedKeys(a.o)
	bk := sortedKeys(b.o)
	n := len(ak)
	if len(bk) < n {
		n = len(bk)
	}
	for i := 0; i < n; i++ {
		if c := compareBytes([]byte(ak[i]), []byte(bk[i])); c != 0 {
			return c
		}
		av, _ := a.o.get(ak[i])
		bv, _ := b.o.get(bk[i])
		if c := Compare(av, bv); c != 0 {
			return c
		}
	}
	switch {
	case len(ak) < len(bk):
		return -1
	case len(ak) > len(bk):
		return 1
	default:
		return 0
	}
}

func sortedKeys(o *object) []string {
	keys := make([]string, 0, len(o.entries))
	for _, e := range o.entries {
		s, _ := e.key.String()
		keys = append(keys, s)
	}
	sort.Strings(keys)
	return keys
}
