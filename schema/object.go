package schema

import (
	"regexp"

	"github.com/kfirtal/jsondom"
)

// dependency is either a property-list dependency (schema draft-04 style:
// presence of the key requires presence of each named property) or a full
// sub-schema dependency (draft-06+ style: presence of the key requires the
// whole instance to validate against the sub-schema), per spec §4.5
// objectValidator "dependencies (schema or key-list)".
type dependency struct {
	properties []string
	schema     Validator // nil if this is a property-list dependency
}

// objectValidator carries the object keyword set (spec §3.8/§4.5): required
// keys, properties/patternProperties/additionalProperties routing,
// min/maxProperties, dependencies, propertyNames. Ported field-for-field
// from the teacher's properties/additionalProperties/patternProperties/
// required/dependencies keyword types in keywordvalidator.go, merged onto
// one node.
type objectValidator struct {
	base

	properties        map[string]Validator
	patternProperties []patternEntry

	// additionalProperties governs a property name that matched neither
	// properties nor patternProperties. nil means "no constraint" (the
	// teacher's nil AdditionalProperties field, spec default: allowed).
	additionalProperties Validator
	// additionalPropertiesFalse marks the boolean-false short form
	// (additionalProperties: false rejects any such property outright).
	additionalPropertiesFalse bool

	required []string

	hasMinProperties bool
	minProperties    int
	hasMaxProperties bool
	maxProperties    int

	dependencies map[string]dependency

	propertyNames Validator

	// defaults holds, for each property with a "default" keyword, the
	// value to inject when that property is absent (spec §4.5 Defaults,
	// §8 scenario 6). Populated by parseSchema while compiling the
	// "properties" keyword.
	defaults map[string]*jsondom.Value
}

type patternEntry struct {
	re     *regexp.Regexp
	schema Validator
}

func newObjectValidator() *objectValidator {
	return &objectValidator{
		properties:   make(map[string]Validator),
		dependencies: make(map[string]dependency),
		defaults:     make(map[string]*jsondom.Value),
	}
}

// Validate applies object keywords only when v is actually an object (see
// numberValidator.Validate's comment on applicator vs type semantics).
func (o *objectValidator) Validate(v *jsondom.Value) error {
	if v == nil || !v.IsObject() {
		return nil
	}
	n := v.ObjectLen()
	if o.hasMinProperties && n < o.minProperties {
		return &ValidationError{Keyword: "minProperties", Reason: "object has fewer than minProperties properties"}
	}
	if o.hasMaxProperties && n > o.maxProperties {
		return &ValidationError{Keyword: "maxProperties", Reason: "object has more than maxProperties properties"}
	}
	for _, req := range o.required {
		if !v.ObjectHas(req) {
			return &ValidationError{Keyword: "required", Reason: "missing required property " + req}
		}
	}
	for key, dep := range o.dependencies {
		if !v.ObjectHas(key) {
			continue
		}
		if dep.schema != nil {
			if err := dep.schema.Validate(v); err != nil {
				return err
			}
			continue
		}
		for _, p := range dep.properties {
			if !v.ObjectHas(p) {
				return &ValidationError{Keyword: "dependencies",
					Reason: "property " + key + " requires property " + p}
			}
		}
	}
	if o.propertyNames != nil {
		for _, key := range v.ObjectKeys() {
			keyVal := jsondom.StringOf([]byte(key))
			err := o.propertyNames.Validate(keyVal)
			keyVal.Release()
			if err != nil {
				return err
			}
		}
	}
	if o.additionalPropertiesFalse || o.additionalProperties != nil {
		for _, key := range v.ObjectKeys() {
			if o.routedSchema(key) != nil {
				continue
			}
			if o.additionalPropertiesFalse {
				return &ValidationError{Keyword: "additionalProperties",
					Reason: "property " + key + " is not allowed"}
			}
		}
	}
	return nil
}

// routedSchema returns the properties/patternProperties schema(s) that
// explicitly govern key, or nil if none do (i.e. key would fall to
// additionalProperties).
func (o *objectValidator) routedSchema(key string) Validator {
	if s, ok := o.properties[key]; ok {
		return s
	}
	for _, pe := range o.patternProperties {
		if pe.re.MatchString(key) {
			return pe.schema
		}
	}
	return nil
}

// ChildFor implements spec §4.5's properties/patternProperties/
// additionalProperties dispatch: a key may match a property schema, one or
// more pattern schemas (unioned via allOf), and/or additionalProperties.
func (o *objectValidator) ChildFor(key string) Validator {
	var matched []Validator
	if s, ok := o.properties[key]; ok {
		matched = append(matched, s)
	}
	for _, pe := range o.patternProperties {
		if pe.re.MatchString(key) {
			matched = append(matched, pe.schema)
		}
	}
	if len(matched) == 0 {
		if o.additionalPropertiesFalse {
			return noneValidator{}
		}
		if o.additionalProperties != nil {
			return o.additionalProperties
		}
		return anyValidator{}
	}
	if len(matched) == 1 {
		return matched[0]
	}
	return &combinatorValidator{base: base{}, kind: combAllOf, children: matched}
}

func (o *objectValidator) CollectSchemas(reg *Registry) {
	for _, s := range o.properties {
		s.CollectSchemas(reg)
	}
	for _, pe := range o.patternProperties {
		pe.schema.CollectSchemas(reg)
	}
	if o.additionalProperties != nil {
		o.additionalProperties.CollectSchemas(reg)
	}
	if o.propertyNames != nil {
		o.propertyNames.CollectSchemas(reg)
	}
	for _, dep := range o.dependencies {
		if dep.schema != nil {
			dep.schema.CollectSchemas(reg)
		}
	}
}

func (o *objectValidator) Dup() Validator { return o }

// DefaultFor returns the default value registered for key (duplicated, so
// each injection owns its own copy) and whether one exists (spec §4.5
// Defaults).
func (o *objectValidator) DefaultFor(key string) (*jsondom.Value, bool) {
	d, ok := o.defaults[key]
	if !ok {
		return nil, false
	}
	return d.Duplicate(), true
}
