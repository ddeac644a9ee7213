package schema

import (
	"sync"
	"sync/atomic"
)

// Scope carries the base URI in effect while compiling a subschema, so a
// relative $id or $ref can be resolved against it (spec §4.6). It is
// threaded down through parseSchema's recursion the way the teacher threads
// rootSchemaPool lookups, but as an explicit value instead of a package
// global.
type Scope struct {
	BaseURI string
}

// Child returns a Scope for a nested $id, resolving a relative id against
// the current BaseURI the same way a browser resolves a relative URL
// against its document's base (spec §4.6/§4.7).
func (s Scope) Child(id string) Scope {
	if id == "" {
		return s
	}
	if isAbsoluteURI(id) || s.BaseURI == "" {
		return Scope{BaseURI: id}
	}
	return Scope{BaseURI: s.BaseURI + id}
}

func isAbsoluteURI(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ':':
			return i > 0
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '+', c == '-', c == '.':
			continue
		default:
			return false
		}
	}
	return false
}

// ExternalResolver fetches the raw schema bytes for a URI not already held
// by a Registry (spec §6.2, §4.6 "the two-phase $ref resolution process").
// Implementations may hit the network, a filesystem, or an in-memory map;
// the registry never assumes which.
type ExternalResolver interface {
	Resolve(uri string) ([]byte, error)
}

// Registry replaces the teacher's package-level rootSchemaPool/subSchemaMap
// globals with an explicit, caller-owned value (spec §4.6): parseSchema
// registers every compiled node into one, CollectSchemas records its pending
// $refs, and $ref resolution looks keys up here first before falling back to
// an ExternalResolver.
type Registry struct {
	mu         sync.RWMutex
	byURI      map[string]Validator
	pendingRef []*refValidator
	unresolved int32 // atomic count of refValidators still unresolved
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byURI: make(map[string]Validator)}
}

// registerRef records rv as a $ref awaiting resolution, called by
// refValidator.CollectSchemas.
func (r *Registry) registerRef(rv *refValidator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingRef = append(r.pendingRef, rv)
	r.markUnresolved()
}

// Register associates uri with v. parseSchema calls it for each compiled
// node (by path, and by $id where one is present); an empty uri is ignored.
func (r *Registry) Register(uri string, v Validator) {
	if uri == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byURI[uri] = v
}

// Lookup returns the validator registered for uri, if any.
func (r *Registry) Lookup(uri string) (Validator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byURI[uri]
	return v, ok
}

// markUnresolved/markResolved track the live count of unresolved $refs so
// FullyResolved can answer in O(1).
func (r *Registry) markUnresolved() { atomic.AddInt32(&r.unresolved, 1) }
func (r *Registry) markResolved()   { atomic.AddInt32(&r.unresolved, -1) }

// FullyResolved reports whether every $ref registered against r has been
// resolved to a concrete Validator. Only once this is true is the compiled
// tree safe for concurrent read-only use across goroutines (spec §5).
func (r *Registry) FullyResolved() bool {
	return atomic.LoadInt32(&r.unresolved) == 0
}

// Resolve walks every ref registered in r that is still unresolved, and
// resolves it first against r itself (an internal, already-registered $id),
// then — only if that fails — against ext (spec §4.6/§4.7's two-phase
// process: "internal registry lookup, then an external resolver callback").
// It is idempotent and safe to call repeatedly (e.g. after registering more
// schemas) until FullyResolved reports true.
func (r *Registry) Resolve(ext ExternalResolver) error {
	r.mu.RLock()
	refs := make([]*refValidator, len(r.pendingRef))
	copy(refs, r.pendingRef)
	r.mu.RUnlock()

	for _, rv := range refs {
		if err := rv.resolve(r, ext); err != nil {
			return err
		}
	}
	return nil
}
