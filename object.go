package jsondom

// objEntry is one key/value pair of an object. Keys are always a KindString
// Value (spec §3.5: "Keys must be non-empty strings").
type objEntry struct {
	key *Value
	val *Value
}

// object is the backing store for a KindObject Value. Iteration follows the
// entries slice: insertion order until a removal, which moves the last entry
// into the vacated slot. Spec §3.5 only requires "stable across reads without
// mutation", which this satisfies, without promising insertion order to
// callers.
type object struct {
	entries []objEntry
	index   map[string]int // djb2-free: Go's own string map, keyed by exact bytes
}

func newObject(capHint int) *object {
	o := &object{index: make(map[string]int, capHint)}
	if capHint > 0 {
		o.entries = make([]objEntry, 0, capHint)
	}
	return o
}

func (o *object) len() int { return len(o.entries) }

func (o *object) get(key string) (*Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.entries[i].val, true
}

// put inserts key->val, taking ownership of both. If key already exists, the
// old key and value are released and replaced.
func (o *object) put(keyBytes string, key, val *Value) {
	if i, ok := o.index[keyBytes]; ok {
		o.entries[i].key.Release()
		o.entries[i].val.Release()
		o.entries[i] = objEntry{key: key, val: val}
		return
	}
	o.index[keyBytes] = len(o.entries)
	o.entries = append(o.entries, objEntry{key: key, val: val})
}

func (o *object) remove(keyBytes string) bool {
	i, ok := o.index[keyBytes]
	if !ok {
		return false
	}
	o.entries[i].key.Release()
	o.entries[i].val.Release()
	last := len(o.entries) - 1
	if i != last {
		o.entries[i] = o.entries[last]
		o.index[string(must(o.entries[i].key.StringBytes()))] = i
	}
	o.entries = o.entries[:last]
	delete(o.index, keyBytes)
	return true
}

func must(b []byte, ok bool) []byte {
	if !ok {
		return nil
	}
	return b
}

func (o *object) releaseAll() {
	for _, e := range o.entries {
		e.key.Release()
		e.val.Release()
	}
}

// --- public Object API (spec §3.5, §4.1, §6.3) ---

// ObjectLen returns the number of entries in v, or 0 if v is not an Object.
func (v *Value) ObjectLen() int {
	if !v.IsObject() {
		return 0
	}
	return v.o.len()
}

// ObjectGet returns the borrowed value for key, or Invalid if absent or v is
// not an Object (spec §3.7: caller must Retain before storing elsewhere).
func (v *Value) ObjectGet(key string) *Value {
	if !v.IsObject() {
		return Invalid()
	}
	val, ok := v.o.get(key)
	if !ok {
		return Invalid()
	}
	return val
}

// ObjectHas reports whether key is present.
func (v *Value) ObjectHas(key string) bool {
	if !v.IsObject() {
		return false
	}
	_, ok := v.o.get(key)
	return ok
}

// ObjectKeys returns the set of keys currently present, in the object's
// internal (unspecified but stable) order.
func (v *Value) ObjectKeys() []string {
	if !v.IsObject() {
		return nil
	}
	keys := make([]string, 0, len(v.o.entries))
	for _, e := range v.o.entries {
		s, _ := e.key.String()
		keys = append(keys, s)
	}
	return keys
}

// ObjectPut inserts or replaces key with value, taking ownership of both
// arguments in all cases, including failure (spec §4.1: "both are consumed
// on success and on failure"). key must be a non-empty String Value.
func (v *Value) ObjectPut(key, value *Value) error {
	if !v.IsObject() {
		key.Release()
		value.Release()
		return NewError(ErrTypeMismatch, "ObjectPut: receiver is not an object")
	}
	if !key.IsString() {
		key.Release()
		value.Release()
		return NewError(ErrTypeMismatch, "ObjectPut: key must be a string")
	}
	kb, _ := key.String()
	if kb == "" {
		key.Release()
		value.Release()
		return NewError(ErrGeneric, "ObjectPut: key must be non-empty")
	}
	if wouldCycle(v, value) {
		key.Release()
		value.Release()
		return NewError(ErrCycleDetected, "ObjectPut: insertion would create a cycle")
	}
	v.o.put(kb, key, value)
	return nil
}

// ObjectSet is ObjectPut's borrowed-argument counterpart: key and value are
// not consumed, v retains its own copies (spec §4.1 "object_set takes a
// borrowed key+value and duplicates").
func (v *Value) ObjectSet(key string, value *Value) error {
	return v.ObjectPut(StringOf([]byte(key)), value.Duplicate())
}

// ObjectRemove deletes key if present; it is not an error if key is absent.
func (v *Value) ObjectRemove(key string) error {
	if !v.IsObject() {
		return NewError(ErrTypeMismatch, "ObjectRemove: receiver is not an object")
	}
	v.o.remove(key)
	return nil
}
