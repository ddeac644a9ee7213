package jsondom

// Visitor is a set of per-kind callbacks driven over a Value tree by Walk
// (spec §4.9). Each callback returns false to short-circuit the remainder of
// the traversal. A nil callback is treated as always-continue.
type Visitor struct {
	EnterArray  func(v *Value) bool
	ExitArray   func(v *Value) bool
	EnterObject func(v *Value) bool
	// Key is called before visiting the value for each object entry. Return
	// false to stop the traversal, like any other callback.
	Key       func(key string) bool
	ExitObject func(v *Value) bool
	Scalar    func(v *Value) bool // Null, Bool, Number, String
}

// Walk performs a single-threaded, synchronous, depth-first traversal of v,
// calling the matching Visitor callbacks (spec §4.9). It returns false as
// soon as any callback returns false, propagating the short-circuit upward.
func Walk(v *Value, vis *Visitor) bool {
	if v == nil || !v.IsValid() {
		return true
	}
	switch v.kind {
	case KindArray:
		if vis.EnterArray != nil && !vis.EnterArray(v) {
			return false
		}
		for i := 0; i < v.a.len(); i++ {
			if !Walk(v.a.at(i), vis) {
				return false
			}
		}
		if vis.ExitArray != nil && !vis.ExitArray(v) {
			return false
		}
		return true
	case KindObject:
		if vis.EnterObject != nil && !vis.EnterObject(v) {
			return false
		}
		for _, e := range v.o.entries {
			if vis.Key != nil {
				keyStr, _ := e.key.String()
				if !vis.Key(keyStr) {
					return false
				}
			}
			if !Walk(e.val, vis) {
				return false
			}
		}
		if vis.ExitObject != nil && !vis.ExitObject(v) {
			return false
		}
		return true
	default:
		if vis.Scalar != nil {
			return vis.Scalar(v)
		}
		return true
	}
}
