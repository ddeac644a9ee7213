package jsondom

// smallBufferSize is the number of elements held inline in an array's header
// before it spills to a heap-allocated overflow bucket (spec §3.4, §9).
const smallBufferSize = 8

// array is the backing store for a KindArray Value. Size and capacity are
// tracked separately from len(overflow) so that removed slots can be nulled
// out in place rather than shrinking the backing storage (spec §3.4
// invariant: "slot [size..capacity) is NULL or Invalid").
type array struct {
	inline   [smallBufferSize]*Value
	overflow []*Value // used once size > smallBufferSize
	size     int
}

func newArray(capHint int) *array {
	a := &array{}
	if capHint > smallBufferSize {
		a.overflow = make([]*Value, 0, capHint-smallBufferSize)
	}
	return a
}

func (a *array) len() int { return a.size }

// at returns the borrowed element at i, or Invalid if out of range (spec
// §4.1: "indexing logic exists in one place").
func (a *array) at(i int) *Value {
	if i < 0 || i >= a.size {
		return Invalid()
	}
	if i < smallBufferSize {
		if a.inline[i] == nil {
			return Invalid()
		}
		return a.inline[i]
	}
	v := a.overflow[i-smallBufferSize]
	if v == nil {
		return Invalid()
	}
	return v
}

// setAt stores v (taking ownership) at i, releasing whatever was there. i
// must be < a.size.
func (a *array) setAt(i int, v *Value) {
	if i < smallBufferSize {
		if a.inline[i] != nil {
			a.inline[i].Release()
		}
		a.inline[i] = v
		return
	}
	idx := i - smallBufferSize
	if a.overflow[idx] != nil {
		a.overflow[idx].Release()
	}
	a.overflow[idx] = v
}

// grow appends a new trailing slot (uninitialized, i.e. nil/Invalid) and
// returns its index.
func (a *array) grow() int {
	i := a.size
	a.size++
	if i < smallBufferSize {
		return i
	}
	a.overflow = append(a.overflow, nil)
	return i
}

// removeAt deletes the element at i, shifting subsequent elements down by
// one and releasing the removed value.
func (a *array) removeAt(i int) {
	if i < 0 || i >= a.size {
		return
	}
	old := a.at(i)
	for j := i; j < a.size-1; j++ {
		a.setAtNoRelease(j, a.at(j+1))
	}
	a.size--
	a.clearSlot(a.size)
	old.Release()
}

// setAtNoRelease overwrites a slot without releasing the previous occupant
// (used while shifting during removeAt/splice, where the old occupant has
// already been accounted for or is being moved, not dropped).
func (a *array) setAtNoRelease(i int, v *Value) {
	if i < smallBufferSize {
		a.inline[i] = v
		return
	}
	a.overflow[i-smallBufferSize] = v
}

func (a *array) clearSlot(i int) {
	if i < smallBufferSize {
		a.inline[i] = nil
		return
	}
	idx := i - smallBufferSize
	if idx >= 0 && idx < len(a.overflow) {
		a.overflow[idx] = nil
	}
}

func (a *array) releaseAll() {
	for i := 0; i < a.size; i++ {
		if v := a.at(i); v != nil {
			v.Release()
		}
	}
}

// --- public Array API (spec §4.1, §6.3) ---

// ArrayLen returns the number of elements in v, or 0 if v is not an Array.
func (v *Value) ArrayLen() int {
	if !v.IsArray() {
		return 0
	}
	return v.a.len()
}

// ArrayGet returns the borrowed element at i (spec §3.7: caller must Retain
// before storing it elsewhere). Returns Invalid if v is not an Array or i is
// out of range.
func (v *Value) ArrayGet(i int) *Value {
	if !v.IsArray() {
		return Invalid()
	}
	return v.a.at(i)
}

// ArrayAppend appends elem (taking ownership) to v. Fails with
// ErrCycleDetected if elem's subtree contains v (spec §4.1 cycle check); on
// failure elem is released and v is unchanged.
func (v *Value) ArrayAppend(elem *Value) error {
	if !v.IsArray() {
		elem.Release()
		return NewError(ErrTypeMismatch, "ArrayAppend: receiver is not an array")
	}
	if wouldCycle(v, elem) {
		elem.Release()
		return NewError(ErrCycleDetected, "ArrayAppend: insertion would create a cycle")
	}
	i := v.a.grow()
	v.a.setAtNoRelease(i, elem)
	return nil
}

// ArrayPut replaces the element at i (taking ownership of value, releasing
// whatever was there). Fails with ErrCycleDetected (value released, v
// unchanged) or if i is out of range.
func (v *Value) ArrayPut(i int, value *Value) error {
	if !v.IsArray() {
		value.Release()
		return NewError(ErrTypeMismatch, "ArrayPut: receiver is not an array")
	}
	if i < 0 || i >= v.a.len() {
		value.Release()
		return NewError(ErrGeneric, "ArrayPut: index out of range")
	}
	if wouldCycle(v, value) {
		value.Release()
		return NewError(ErrCycleDetected, "ArrayPut: insertion would create a cycle")
	}
	v.a.setAt(i, value)
	return nil
}

// ArrayInsert inserts value (taking ownership) before index i, shifting
// subsequent elements up by one.
func (v *Value) ArrayInsert(i int, value *Value) error {
	if !v.IsArray() {
		value.Release()
		return NewError(ErrTypeMismatch, "ArrayInsert: receiver is not an array")
	}
	n := v.a.len()
	if i < 0 || i > n {
		value.Release()
		return NewError(ErrGeneric, "ArrayInsert: index out of range")
	}
	if wouldCycle(v, value) {
		value.Release()
		return NewError(ErrCycleDetected, "ArrayInsert: insertion would create a cycle")
	}
	v.a.grow()
	for j := n; j > i; j-- {
		v.a.setAtNoRelease(j, v.a.at(j-1))
	}
	v.a.setAtNoRelease(i, value)
	return nil
}

// ArrayRemove deletes the element at i.
func (v *Value) ArrayRemove(i int) error {
	if !v.IsArray() {
		return NewError(ErrTypeMismatch, "ArrayRemove: receiver is not an array")
	}
	if i < 0 || i >= v.a.len() {
		return NewError(ErrGeneric, "ArrayRemove: index out of range")
	}
	v.a.removeAt(i)
	return nil
}

// SpliceOwnership selects how Splice treats the elements it copies in from
// src (spec §4.1).
type SpliceOwnership int

const (
	// SpliceTransfer moves elements out of src (src's slots are vacated,
	// left as Invalid).
	SpliceTransfer SpliceOwnership = iota
	// SpliceCopy deep-copies each spliced-in element.
	SpliceCopy
	// SpliceNoChange bumps the refcount of each spliced-in element; src
	// keeps its own reference too.
	SpliceNoChange
)

// ArraySplice replaces dst[dstIndex : dstIndex+toRemove] with
// src[begin:end], per ownership (spec §4.1). dst and src may be the same
// array only when ownership is SpliceCopy (self-splice with transfer or
// no-change would double-release/alias; callers needing that must copy
// first).
func (v *Value) ArraySplice(dstIndex, toRemove int, src *Value, begin, end int, ownership SpliceOwnership) error {
	if !v.IsArray() || !src.IsArray() {
		return NewError(ErrTypeMismatch, "ArraySplice: both receiver and src must be arrays")
	}
	n := v.a.len()
	if dstIndex < 0 || toRemove < 0 || dstIndex+toRemove > n {
		return NewError(ErrGeneric, "ArraySplice: dst range out of bounds")
	}
	sn := src.a.len()
	if begin < 0 || end < begin || end > sn {
		return NewError(ErrGeneric, "ArraySplice: src range out of bounds")
	}

	// Materialize the incoming elements first (each owned per `ownership`),
	// validating against cycles before mutating dst at all.
	incoming := make([]*Value, 0, end-begin)
	for i := begin; i < end; i++ {
		var elem *Value
		switch ownership {
		case SpliceTransfer:
			elem = src.a.at(i)
			src.a.setAtNoRelease(i, Invalid())
		case SpliceCopy:
			elem = src.a.at(i).Duplicate()
		default: // SpliceNoChange
			elem = src.a.at(i).Retain()
		}
		if wouldCycle(v, elem) {
			elem.Release()
			for _, e := range incoming {
				e.Release()
			}
			return NewError(ErrCycleDetected, "ArraySplice: insertion would create a cycle")
		}
		incoming = append(incoming, elem)
	}

	// Release the removed range.
	for i := dstIndex; i < dstIndex+toRemove; i++ {
		v.a.at(i).Release()
	}

	tail := make([]*Value, 0, n-(dstIndex+toRemove))
	for i := dstIndex + toRemove; i < n; i++ {
		tail = append(tail, v.a.at(i))
	}

	newSize := dstIndex + len(incoming) + len(tail)
	for v.a.size < newSize {
		v.a.grow()
	}
	for v.a.size > newSize {
		v.a.size--
		v.a.clearSlot(v.a.size)
	}

	idx := dstIndex
	for _, e := range incoming {
		v.a.setAtNoRelease(idx, e)
		idx++
	}
	for _, e := range tail {
		v.a.setAtNoRelease(idx, e)
		idx++
	}
	return nil
}
