package schema

import (
	"strings"

	"github.com/kfirtal/jsondom"
	"github.com/kfirtal/jsondom/schema/jsonpointer"
)

// refValidator is a $ref node: unresolved until Resolve links it to the
// validator the URI addresses, resolved (called through) afterward (spec
// §3.8 "Reference (unresolved or resolved)"). Modeled as a weak lookup
// through the owning Registry rather than a direct owning pointer, since
// $ref naturally creates cycles a reference-counted owning link could never
// safely tear down (spec §9 "Model references as weak").
type refValidator struct {
	base
	uri      string // absolute target URI, including any "#/..." fragment
	resolved Validator
}

func (r *refValidator) Validate(v *jsondom.Value) error {
	if r.resolved == nil {
		return &ValidationError{Keyword: "$ref", Reason: "unresolved reference to " + r.uri}
	}
	return r.resolved.Validate(v)
}

func (r *refValidator) ChildFor(key string) Validator {
	if r.resolved == nil {
		return anyValidator{}
	}
	return r.resolved.ChildFor(key)
}

func (r *refValidator) ChildForIndex(i int) Validator {
	if r.resolved == nil {
		return anyValidator{}
	}
	return r.resolved.ChildForIndex(i)
}

// CollectSchemas registers r with reg as a pending reference rather than
// walking any children (a $ref node never has its own inline subschemas,
// spec §3.8).
func (r *refValidator) CollectSchemas(reg *Registry) {
	if r.resolved == nil {
		reg.registerRef(r)
	}
}

func (r *refValidator) Dup() Validator { return r }

// Default forwards to the resolved target, if any, so a $ref to a schema
// that itself declares "default" still injects it (spec §4.5).
func (r *refValidator) Default() (*jsondom.Value, bool) {
	if r.resolved == nil {
		return nil, false
	}
	return r.resolved.Default()
}

// resolve attempts to link r to a concrete Validator: first by looking r.uri
// up in reg itself (an already-registered $id or JSON-Pointer path, spec
// §4.7 "internal" phase), then — only on a local miss — by asking ext for
// the bytes of r.uri's base document and compiling + registering it (spec
// §4.7 "external" phase). Idempotent: a second call when already resolved
// is a no-op.
func (r *refValidator) resolve(reg *Registry, ext ExternalResolver) error {
	if r.resolved != nil {
		return nil
	}
	if v, ok := reg.Lookup(r.uri); ok {
		r.resolved = v
		reg.markResolved()
		return nil
	}
	if ext == nil {
		return &ReferenceError{SchemaURI: r.uri, Err: "$ref unresolved and no external resolver was supplied"}
	}
	base, fragment := splitFragment(r.uri)
	data, err := ext.Resolve(base)
	if err != nil {
		return &ReferenceError{SchemaURI: base, Fragment: fragment, Err: "external resolver failed: " + err.Error()}
	}
	root, doc, err := compileFromBytes(data, Scope{BaseURI: base}, reg)
	if err != nil {
		return &ReferenceError{SchemaURI: base, Fragment: fragment, Err: "failed to compile externally resolved schema: " + err.Error()}
	}
	reg.Register(base, root)
	if v, ok := reg.Lookup(r.uri); ok {
		r.resolved = v
		reg.markResolved()
		doc.Release()
		return nil
	}
	// The eager by-path registration walk in parseSchema missed this
	// fragment (e.g. a pointer into a part of the document the compiler
	// doesn't walk on its own, such as an entry under a non-keyword member
	// like "components", reached only via this $ref). Fall back to locating it directly by
	// JSON Pointer and compiling just that sub-value on demand.
	if len(fragment) > 1 {
		if ptr, perr := jsonpointer.Parse(fragment[1:]); perr == nil {
			if sub, everr := jsonpointer.Evaluate(doc, ptr); everr == nil {
				if compiled, cerr := parseSchema(sub, Scope{BaseURI: base}, ptr.String(), reg); cerr == nil {
					reg.Register(r.uri, compiled)
					r.resolved = compiled
					reg.markResolved()
					doc.Release()
					return nil
				}
			}
		}
	}
	doc.Release()
	return &ReferenceError{SchemaURI: base, Fragment: fragment, Err: "resolved document does not define the referenced fragment"}
}

// splitFragment separates a "base#/json/pointer" URI into its base document
// URI and fragment (spec §4.7 JSON Pointer escaping lives in jsonpointer;
// this just finds the "#").
func splitFragment(uri string) (base, fragment string) {
	if i := strings.IndexByte(uri, '#'); i >= 0 {
		return uri[:i], uri[i:]
	}
	return uri, ""
}
