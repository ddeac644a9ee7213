package schema

import (
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/kfirtal/jsondom"
)

// Schema is a compiled JSON Schema (spec §6.3 schema_create/schema_from_value).
// It owns the Registry every $id-bearing subtree and $ref was registered
// into during compilation, its own retained copy of the parsed schema
// document (doc), and — independently of doc — a retained copy of every
// enum member, const value, and default value compiled into Root. Release
// tears all of it down (spec §6.3 schema_release).
type Schema struct {
	Root     Validator
	Registry *Registry
	doc      *jsondom.Value
}

// Validate checks v against s's root (spec §6.3 parse(bytes, schema), the
// non-streaming entry point; see NewStreamValidator for the event-driven
// one used during parsing).
func (s *Schema) Validate(v *jsondom.Value) error {
	return ValidateValue(v, s.Root)
}

// Resolve runs the two-phase $ref resolution process against ext (spec
// §4.7). Safe to call repeatedly; idempotent.
func (s *Schema) Resolve(ext ExternalResolver) error {
	return s.Registry.Resolve(ext)
}

// FullyResolved reports whether every $ref this schema contains has been
// resolved (spec §4.7/§5: only then is concurrent read-sharing safe).
func (s *Schema) FullyResolved() bool {
	return s.Registry.FullyResolved()
}

// NewStreamValidator returns a sax.Sink that validates an event stream
// against s incrementally, one container at a time, as each closes (spec
// §4.3/§4.5).
func (s *Schema) NewStreamValidator() *StreamValidator {
	return newStreamValidator(s.Root)
}

// Release tears down every retained jsondom.Value this Schema holds onto —
// s.doc itself, plus every enum member, const value, and default value
// retained while compiling Root (spec §6.3 schema_release). Safe to call
// more than once; a second call is a no-op.
func (s *Schema) Release() {
	if s.doc == nil {
		return
	}
	releaseValidatorTree(s.Root, make(map[Validator]bool))
	s.doc.Release()
	s.doc = nil
}

// releaseValidatorTree walks v releasing every jsondom.Value a node owns by
// Retain (enumValidator.members, constValidator.value, withDefault.def,
// objectValidator.defaults), recursing into every child a node routes to.
// visited guards against releasing a shared node twice, which diamond-shaped
// $ref graphs make possible: a refValidator.resolved target can be the very
// same node also reachable through Root's own tree.
func releaseValidatorTree(v Validator, visited map[Validator]bool) {
	if v == nil || visited[v] {
		return
	}
	visited[v] = true
	switch t := v.(type) {
	case *enumValidator:
		for _, m := range t.members {
			m.Release()
		}
	case *constValidator:
		if t.value != nil {
			t.value.Release()
		}
	case *withDefault:
		if t.def != nil {
			t.def.Release()
		}
		releaseValidatorTree(t.Validator, visited)
	case *objectValidator:
		for _, child := range t.properties {
			releaseValidatorTree(child, visited)
		}
		for _, pe := range t.patternProperties {
			releaseValidatorTree(pe.schema, visited)
		}
		releaseValidatorTree(t.additionalProperties, visited)
		releaseValidatorTree(t.propertyNames, visited)
		for _, dep := range t.dependencies {
			if dep.schema != nil {
				releaseValidatorTree(dep.schema, visited)
			}
		}
		for _, dv := range t.defaults {
			dv.Release()
		}
	case *arrayValidator:
		releaseValidatorTree(t.itemsSingle, visited)
		for _, c := range t.itemsTuple {
			releaseValidatorTree(c, visited)
		}
		releaseValidatorTree(t.additionalItems, visited)
		releaseValidatorTree(t.contains, visited)
	case *combinatorValidator:
		for _, c := range t.children {
			releaseValidatorTree(c, visited)
		}
	case *notValidator:
		releaseValidatorTree(t.child, visited)
	case *ifThenElseValidator:
		releaseValidatorTree(t.ifSchema, visited)
		releaseValidatorTree(t.thenSchema, visited)
		releaseValidatorTree(t.elseSchema, visited)
	case *allOfSchema:
		for _, c := range t.children {
			releaseValidatorTree(c, visited)
		}
	case *definitionsValidator:
		for _, c := range t.entries {
			releaseValidatorTree(c, visited)
		}
	case *refValidator:
		releaseValidatorTree(t.resolved, visited)
	}
}

// CompileBytes parses data as a schema document (stripping JavaScript-style
// comments first, per spec §6.1 "tokenizer must accept... comments inside
// schema documents (only)") and compiles it into a Schema. $refs are left
// unresolved; call Schema.Resolve to link them. FromValue takes its own
// retained copy of the parsed document, so the copy owned here is released
// once it has been handed off; the Schema's own copy lives until Release.
func CompileBytes(data []byte) (*Schema, error) {
	v, err := jsondom.Parse(data, jsondom.ParseOptions{AllowComments: true})
	if err != nil {
		return nil, err
	}
	defer v.Release()
	return FromValue(v)
}

// CompileReader reads all of r and compiles it as a schema document.
func CompileReader(r io.Reader) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return CompileBytes(data)
}

// CompileFile reads and compiles the schema document at path (spec §6.3
// schema_from_file).
func CompileFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return CompileReader(f)
}

// FromValue compiles an already-parsed schema document (spec §6.3
// schema_from_value), taking ownership of a retained reference to v for the
// resulting Schema's lifetime.
func FromValue(v *jsondom.Value) (*Schema, error) {
	reg := NewRegistry()
	root, err := parseSchema(v, Scope{}, "", reg)
	if err != nil {
		return nil, err
	}
	root.CollectSchemas(reg)
	return &Schema{Root: root, Registry: reg, doc: v.Retain()}, nil
}

// compileFromBytes is ref.go's hook for the external-resolution phase: a
// freshly resolver-fetched document compiles and registers into the same
// Registry the original schema used (spec §4.7's "bytes are parsed and
// linked in"). It also returns the parsed document itself, retained, so a
// caller whose exact fragment didn't land on an eagerly-registered path can
// fall back to evaluating it directly (see ref.go's use of jsonpointer).
func compileFromBytes(data []byte, scope Scope, reg *Registry) (Validator, *jsondom.Value, error) {
	v, err := jsondom.Parse(data, jsondom.ParseOptions{AllowComments: true})
	if err != nil {
		return nil, nil, err
	}
	root, err := parseSchema(v, scope, "", reg)
	if err != nil {
		v.Release()
		return nil, nil, err
	}
	root.CollectSchemas(reg)
	return root, v, nil
}

// parseSchema compiles one schema node (spec §4.6 "turns a value tree...
// into a validator tree"), recursing into every keyword that carries a
// sub-schema. path is this node's JSON Pointer from the document root,
// used to register it in reg regardless of whether it carries its own
// $id (ported from the teacher's subSchemaMap, which is keyed purely by
// path; $id-bearing nodes are additionally registered under their own
// absolute URI). Boolean schemas and $ref nodes are returned without being
// registered, and a $ref node's other keywords are not compiled.
func parseSchema(v *jsondom.Value, scope Scope, path string, reg *Registry) (Validator, error) {
	if v.IsBool() {
		if b, _ := v.Bool(); b {
			return anyValidator{}, nil
		}
		return noneValidator{}, nil
	}
	if !v.IsObject() {
		return nil, &CompilationError{Path: path, Err: "a schema must be a JSON object or boolean"}
	}

	idStr := ""
	for _, key := range []string{"$id", "id"} {
		if v.ObjectHas(key) {
			if s, ok := v.ObjectGet(key).String(); ok {
				idStr = s
				break
			}
		}
	}
	newScope := scope.Child(idStr)

	if v.ObjectHas("$ref") {
		refStr, _ := v.ObjectGet("$ref").String()
		rv := &refValidator{uri: resolveRefURI(newScope, refStr)}
		return rv, nil
	}

	var parts []Validator

	if v.ObjectHas("type") {
		tv, err := parseType(v.ObjectGet("type"), path)
		if err != nil {
			return nil, err
		}
		parts = append(parts, tv)
	}
	if v.ObjectHas("enum") {
		ev := &enumValidator{}
		members := v.ObjectGet("enum")
		for i := 0; i < members.ArrayLen(); i++ {
			ev.members = append(ev.members, members.ArrayGet(i).Retain())
		}
		parts = append(parts, ev)
	}
	if v.ObjectHas("const") {
		parts = append(parts, &constValidator{value: v.ObjectGet("const").Retain()})
	}

	if nv := parseNumberKeywords(v); nv != nil {
		parts = append(parts, nv)
	}
	if sv := parseStringKeywords(v); sv != nil {
		parts = append(parts, sv)
	}

	ov, err := parseObjectKeywords(v, newScope, path, reg)
	if err != nil {
		return nil, err
	}
	if ov != nil {
		parts = append(parts, ov)
	}

	av, err := parseArrayKeywords(v, newScope, path, reg)
	if err != nil {
		return nil, err
	}
	if av != nil {
		parts = append(parts, av)
	}

	cv, err := parseCombinators(v, newScope, path, reg)
	if err != nil {
		return nil, err
	}
	parts = append(parts, cv...)

	var result Validator
	switch len(parts) {
	case 0:
		result = anyValidator{}
	case 1:
		result = parts[0]
	default:
		result = &allOfSchema{children: parts}
	}

	if v.ObjectHas("default") {
		result = &withDefault{Validator: result, def: v.ObjectGet("default").Retain()}
	}

	reg.Register(newScope.BaseURI+"#"+path, result)
	if idStr != "" {
		reg.Register(newScope.BaseURI, result)
	}
	return result, nil
}

// childPath extends a JSON Pointer path with a segment, for registering a
// nested subschema's compiled node under its location in the document.
// segment is appended as is: a key containing "~" or "/" is not escaped to
// "~0"/"~1", so such a subschema is registered under a path that a JSON
// Pointer $ref to it does not match.
func childPath(path, segment string) string { return path + "/" + segment }

func resolveRefURI(scope Scope, ref string) string {
	if ref == "" {
		return scope.BaseURI
	}
	if ref[0] == '#' {
		return scope.BaseURI + ref
	}
	base, frag := splitFragment(ref)
	return scope.Child(base).BaseURI + frag
}

func parseType(v *jsondom.Value, path string) (*typeValidator, error) {
	tv := &typeValidator{}
	if v.IsString() {
		s, _ := v.String()
		tv.allowed = []string{s}
		return tv, nil
	}
	if v.IsArray() {
		for i := 0; i < v.ArrayLen(); i++ {
			s, ok := v.ArrayGet(i).String()
			if !ok {
				return nil, &CompilationError{Path: path, Err: "type array must contain only strings"}
			}
			tv.allowed = append(tv.allowed, s)
		}
		return tv, nil
	}
	return nil, &CompilationError{Path: path, Err: "type must be a string or array of strings"}
}

func parseNumberKeywords(v *jsondom.Value) *numberValidator {
	nv := &numberValidator{}
	any := false
	getNum := func(key string) (float64, bool) {
		if !v.ObjectHas(key) {
			return 0, false
		}
		num, ok := v.ObjectGet(key).Number()
		if !ok {
			return 0, false
		}
		d, _ := num.GetDouble()
		return d, true
	}
	if d, ok := getNum("multipleOf"); ok {
		nv.hasMultipleOf, nv.multipleOf, any = true, d, true
	}
	if d, ok := getNum("minimum"); ok {
		nv.hasMinimum, nv.minimum, any = true, d, true
	}
	if d, ok := getNum("maximum"); ok {
		nv.hasMaximum, nv.maximum, any = true, d, true
	}
	if d, ok := getNum("exclusiveMinimum"); ok {
		nv.hasExclusiveMinimum, nv.exclusiveMinimum, any = true, d, true
	}
	if d, ok := getNum("exclusiveMaximum"); ok {
		nv.hasExclusiveMaximum, nv.exclusiveMaximum, any = true, d, true
	}
	if !any {
		return nil
	}
	return nv
}

func parseStringKeywords(v *jsondom.Value) *stringValidator {
	sv := &stringValidator{}
	any := false
	getInt := func(key string) (int, bool) {
		if !v.ObjectHas(key) {
			return 0, false
		}
		num, ok := v.ObjectGet(key).Number()
		if !ok {
			return 0, false
		}
		i, _ := num.GetInt64()
		return int(i), true
	}
	if n, ok := getInt("minLength"); ok {
		sv.hasMinLength, sv.minLength, any = true, n, true
	}
	if n, ok := getInt("maxLength"); ok {
		sv.hasMaxLength, sv.maxLength, any = true, n, true
	}
	if v.ObjectHas("pattern") {
		if p, ok := v.ObjectGet("pattern").String(); ok {
			if re, err := regexp.Compile(p); err == nil {
				sv.hasPattern, sv.pattern, any = true, re, true
			}
		}
	}
	if v.ObjectHas("format") {
		if f, ok := v.ObjectGet("format").String(); ok {
			sv.format, any = f, true
		}
	}
	if v.ObjectHas("contentMediaType") {
		if f, ok := v.ObjectGet("contentMediaType").String(); ok {
			sv.contentMediaType, any = f, true
		}
	}
	if v.ObjectHas("contentEncoding") {
		if f, ok := v.ObjectGet("contentEncoding").String(); ok {
			sv.contentEncoding, any = f, true
		}
	}
	if !any {
		return nil
	}
	return sv
}

func parseObjectKeywords(v *jsondom.Value, scope Scope, path string, reg *Registry) (Validator, error) {
	hasAny := false
	for _, k := range []string{"properties", "patternProperties", "additionalProperties",
		"required", "minProperties", "maxProperties", "dependencies", "propertyNames",
		"definitions", "$defs"} {
		if v.ObjectHas(k) {
			hasAny = true
			break
		}
	}
	if !hasAny {
		return nil, nil
	}
	ov := newObjectValidator()

	if v.ObjectHas("properties") {
		props := v.ObjectGet("properties")
		for _, key := range props.ObjectKeys() {
			child, err := parseSchema(props.ObjectGet(key), scope, childPath(path, "properties/"+key), reg)
			if err != nil {
				return nil, err
			}
			ov.properties[key] = child
			if dv, ok := child.Default(); ok {
				ov.defaults[key] = dv
			}
		}
	}
	if v.ObjectHas("patternProperties") {
		pp := v.ObjectGet("patternProperties")
		for _, key := range pp.ObjectKeys() {
			re, err := regexp.Compile(key)
			if err != nil {
				return nil, &CompilationError{Path: path, Err: "invalid patternProperties regex " + key}
			}
			child, err := parseSchema(pp.ObjectGet(key), scope, childPath(path, "patternProperties/"+key), reg)
			if err != nil {
				return nil, err
			}
			ov.patternProperties = append(ov.patternProperties, patternEntry{re: re, schema: child})
		}
	}
	if v.ObjectHas("additionalProperties") {
		ap := v.ObjectGet("additionalProperties")
		if ap.IsBool() {
			if b, _ := ap.Bool(); !b {
				ov.additionalPropertiesFalse = true
			}
		} else {
			child, err := parseSchema(ap, scope, childPath(path, "additionalProperties"), reg)
			if err != nil {
				return nil, err
			}
			ov.additionalProperties = child
		}
	}
	if v.ObjectHas("required") {
		req := v.ObjectGet("required")
		for i := 0; i < req.ArrayLen(); i++ {
			if s, ok := req.ArrayGet(i).String(); ok {
				ov.required = append(ov.required, s)
			}
		}
	}
	if v.ObjectHas("minProperties") {
		if num, ok := v.ObjectGet("minProperties").Number(); ok {
			i, _ := num.GetInt64()
			ov.hasMinProperties, ov.minProperties = true, int(i)
		}
	}
	if v.ObjectHas("maxProperties") {
		if num, ok := v.ObjectGet("maxProperties").Number(); ok {
			i, _ := num.GetInt64()
			ov.hasMaxProperties, ov.maxProperties = true, int(i)
		}
	}
	if v.ObjectHas("propertyNames") {
		child, err := parseSchema(v.ObjectGet("propertyNames"), scope, childPath(path, "propertyNames"), reg)
		if err != nil {
			return nil, err
		}
		ov.propertyNames = child
	}
	if v.ObjectHas("dependencies") {
		deps := v.ObjectGet("dependencies")
		for _, key := range deps.ObjectKeys() {
			depVal := deps.ObjectGet(key)
			if depVal.IsArray() {
				var props []string
				for i := 0; i < depVal.ArrayLen(); i++ {
					if s, ok := depVal.ArrayGet(i).String(); ok {
						props = append(props, s)
					}
				}
				ov.dependencies[key] = dependency{properties: props}
				continue
			}
			child, err := parseSchema(depVal, scope, childPath(path, "dependencies/"+key), reg)
			if err != nil {
				return nil, err
			}
			ov.dependencies[key] = dependency{schema: child}
		}
	}

	var defs Validator
	for _, k := range []string{"definitions", "$defs"} {
		if !v.ObjectHas(k) {
			continue
		}
		d := v.ObjectGet(k)
		dv := &definitionsValidator{entries: make(map[string]Validator)}
		for _, key := range d.ObjectKeys() {
			child, err := parseSchema(d.ObjectGet(key), scope, childPath(path, k+"/"+key), reg)
			if err != nil {
				return nil, err
			}
			dv.entries[key] = child
		}
		defs = dv
	}

	if defs != nil {
		return &allOfSchema{children: []Validator{ov, defs}}, nil
	}
	return ov, nil
}

func parseArrayKeywords(v *jsondom.Value, scope Scope, path string, reg *Registry) (Validator, error) {
	hasAny := false
	for _, k := range []string{"items", "additionalItems", "contains", "minItems", "maxItems", "uniqueItems"} {
		if v.ObjectHas(k) {
			hasAny = true
			break
		}
	}
	if !hasAny {
		return nil, nil
	}
	av := &arrayValidator{}

	if v.ObjectHas("items") {
		items := v.ObjectGet("items")
		if items.IsArray() {
			for i := 0; i < items.ArrayLen(); i++ {
				child, err := parseSchema(items.ArrayGet(i), scope, childPath(path, "items/"+strconv.Itoa(i)), reg)
				if err != nil {
					return nil, err
				}
				av.itemsTuple = append(av.itemsTuple, child)
			}
		} else {
			child, err := parseSchema(items, scope, childPath(path, "items"), reg)
			if err != nil {
				return nil, err
			}
			av.itemsSingle = child
		}
	}
	if v.ObjectHas("additionalItems") {
		ai := v.ObjectGet("additionalItems")
		if ai.IsBool() {
			if b, _ := ai.Bool(); !b {
				av.additionalItemsFalse = true
			}
		} else {
			child, err := parseSchema(ai, scope, childPath(path, "additionalItems"), reg)
			if err != nil {
				return nil, err
			}
			av.additionalItems = child
		}
	}
	if v.ObjectHas("contains") {
		child, err := parseSchema(v.ObjectGet("contains"), scope, childPath(path, "contains"), reg)
		if err != nil {
			return nil, err
		}
		av.contains = child
	}
	if v.ObjectHas("minItems") {
		if num, ok := v.ObjectGet("minItems").Number(); ok {
			i, _ := num.GetInt64()
			av.hasMinItems, av.minItems = true, int(i)
		}
	}
	if v.ObjectHas("maxItems") {
		if num, ok := v.ObjectGet("maxItems").Number(); ok {
			i, _ := num.GetInt64()
			av.hasMaxItems, av.maxItems = true, int(i)
		}
	}
	if v.ObjectHas("uniqueItems") {
		if b, ok := v.ObjectGet("uniqueItems").Bool(); ok {
			av.uniqueItems = b
		}
	}
	return av, nil
}

func parseCombinators(v *jsondom.Value, scope Scope, path string, reg *Registry) ([]Validator, error) {
	var out []Validator
	parseList := func(key string) ([]Validator, error) {
		arr := v.ObjectGet(key)
		var children []Validator
		for i := 0; i < arr.ArrayLen(); i++ {
			child, err := parseSchema(arr.ArrayGet(i), scope, childPath(path, key+"/"+strconv.Itoa(i)), reg)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return children, nil
	}
	if v.ObjectHas("allOf") {
		children, err := parseList("allOf")
		if err != nil {
			return nil, err
		}
		out = append(out, &combinatorValidator{kind: combAllOf, children: children})
	}
	if v.ObjectHas("anyOf") {
		children, err := parseList("anyOf")
		if err != nil {
			return nil, err
		}
		out = append(out, &combinatorValidator{kind: combAnyOf, children: children})
	}
	if v.ObjectHas("oneOf") {
		children, err := parseList("oneOf")
		if err != nil {
			return nil, err
		}
		out = append(out, &combinatorValidator{kind: combOneOf, children: children})
	}
	if v.ObjectHas("not") {
		child, err := parseSchema(v.ObjectGet("not"), scope, childPath(path, "not"), reg)
		if err != nil {
			return nil, err
		}
		out = append(out, &notValidator{child: child})
	}
	if v.ObjectHas("if") {
		ifChild, err := parseSchema(v.ObjectGet("if"), scope, childPath(path, "if"), reg)
		if err != nil {
			return nil, err
		}
		ite := &ifThenElseValidator{ifSchema: ifChild}
		if v.ObjectHas("then") {
			thenChild, err := parseSchema(v.ObjectGet("then"), scope, childPath(path, "then"), reg)
			if err != nil {
				return nil, err
			}
			ite.thenSchema = thenChild
		}
		if v.ObjectHas("else") {
			elseChild, err := parseSchema(v.ObjectGet("else"), scope, childPath(path, "else"), reg)
			if err != nil {
				return nil, err
			}
			ite.elseSchema = elseChild
		}
		out = append(out, ite)
	}
	return out, nil
}

// definitionsValidator is spec §3.8's "Definitions (named scope)" node: it
// never constrains validation directly (the teacher's "definitions" keyword
// "does not directly affect the validation result"), it exists purely so
// CollectSchemas can register its named sub-schemas for $ref to find.
type definitionsValidator struct {
	base
	entries map[string]Validator
}

func (d *definitionsValidator) Validate(*jsondom.Value) error { return nil }

func (d *definitionsValidator) CollectSchemas(reg *Registry) {
	for _, child := range d.entries {
		child.CollectSchemas(reg)
	}
}

func (d *definitionsValidator) Dup() Validator { return d }

