package schema_test

import (
	"strings"
	"testing"

	"github.com/kfirtal/jsondom"
	"github.com/kfirtal/jsondom/schema"
)

func mustCompile(t *testing.T, schemaJSON string) *schema.Schema {
	t.Helper()
	s, err := schema.CompileBytes([]byte(schemaJSON))
	if err != nil {
		t.Fatalf("CompileBytes: %v", err)
	}
	return s
}

func mustParse(t *testing.T, docJSON string) *jsondom.Value {
	t.Helper()
	v, err := jsondom.Parse([]byte(docJSON), jsondom.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return v
}

func TestTypeKeyword(t *testing.T) {
	s := mustCompile(t, `{"type": "string"}`)

	ok := mustParse(t, `"hello"`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected a string to satisfy type:string, got %v", err)
	}

	bad := mustParse(t, `42`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected a number to fail type:string")
	}
}

func TestTypeKeywordArrayForm(t *testing.T) {
	s := mustCompile(t, `{"type": ["string", "null"]}`)
	for _, doc := range []string{`"x"`, `null`} {
		v := mustParse(t, doc)
		if err := s.Validate(v); err != nil {
			t.Fatalf("expected %s to satisfy type:[string,null], got %v", doc, err)
		}
		v.Release()
	}
	bad := mustParse(t, `42`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected a number to fail type:[string,null]")
	}
}

func TestEnumStructuralNotLexical(t *testing.T) {
	s := mustCompile(t, `{"enum": [1, "a", {"x": 1, "y": 2}]}`)

	// Different key order, same structure, must still match.
	v := mustParse(t, `{"y": 2, "x": 1}`)
	defer v.Release()
	if err := s.Validate(v); err != nil {
		t.Fatalf("expected structurally-equal object to match enum, got %v", err)
	}

	bad := mustParse(t, `{"x": 1}`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected a non-member value to fail enum")
	}
}

func TestConstKeyword(t *testing.T) {
	s := mustCompile(t, `{"const": 1.0}`)
	v := mustParse(t, `1`)
	defer v.Release()
	if err := s.Validate(v); err != nil {
		t.Fatalf("expected 1 to satisfy const:1.0 structurally, got %v", err)
	}
}

func TestNumberKeywordsVacuousOnNonNumber(t *testing.T) {
	s := mustCompile(t, `{"minimum": 10}`)
	v := mustParse(t, `"short string, not a number"`)
	defer v.Release()
	if err := s.Validate(v); err != nil {
		t.Fatalf("expected minimum to vacuously pass a string, got %v", err)
	}
}

func TestNumberKeywordsEnforced(t *testing.T) {
	s := mustCompile(t, `{"minimum": 10, "maximum": 20, "multipleOf": 5}`)
	for _, n := range []string{"10", "15", "20"} {
		v := mustParse(t, n)
		if err := s.Validate(v); err != nil {
			t.Fatalf("expected %s to satisfy range/multipleOf, got %v", n, err)
		}
		v.Release()
	}
	for _, n := range []string{"9", "21", "12"} {
		v := mustParse(t, n)
		if err := s.Validate(v); err == nil {
			t.Fatalf("expected %s to violate range/multipleOf", n)
		}
		v.Release()
	}
}

func TestStringKeywordsVacuousOnNonString(t *testing.T) {
	s := mustCompile(t, `{"minLength": 5}`)
	v := mustParse(t, `42`)
	defer v.Release()
	if err := s.Validate(v); err != nil {
		t.Fatalf("expected minLength to vacuously pass a number, got %v", err)
	}
}

func TestStringLengthIsCodePointCount(t *testing.T) {
	s := mustCompile(t, `{"minLength": 2, "maxLength": 2}`)
	// Two code points, more than two UTF-8 bytes.
	v := mustParse(t, `"éè"`)
	defer v.Release()
	if err := s.Validate(v); err != nil {
		t.Fatalf("expected a 2-codepoint string to satisfy minLength/maxLength 2, got %v", err)
	}
}

func TestStringPattern(t *testing.T) {
	s := mustCompile(t, `{"pattern": "^[a-z]+$"}`)
	ok := mustParse(t, `"abc"`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected pattern match, got %v", err)
	}
	bad := mustParse(t, `"ABC"`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected pattern mismatch to fail")
	}
}

func TestObjectRequiredAndProperties(t *testing.T) {
	s := mustCompile(t, `{
		"type": "object",
		"properties": {"name": {"type": "string"}, "age": {"type": "integer"}},
		"required": ["name"]
	}`)

	ok := mustParse(t, `{"name": "a", "age": 3}`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected valid object, got %v", err)
	}

	missing := mustParse(t, `{"age": 3}`)
	defer missing.Release()
	if err := s.Validate(missing); err == nil {
		t.Fatal("expected missing required property to fail")
	}

	wrongType := mustParse(t, `{"name": "a", "age": "not a number"}`)
	defer wrongType.Release()
	if err := s.Validate(wrongType); err == nil {
		t.Fatal("expected wrong property type to fail")
	}
}

func TestObjectAdditionalPropertiesFalse(t *testing.T) {
	s := mustCompile(t, `{
		"type": "object",
		"properties": {"a": {"type": "number"}},
		"additionalProperties": false
	}`)
	ok := mustParse(t, `{"a": 1}`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected declared property alone to pass, got %v", err)
	}
	bad := mustParse(t, `{"a": 1, "b": 2}`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected an undeclared property to fail additionalProperties:false")
	}
}

func TestObjectPatternPropertiesUnionedWithProperties(t *testing.T) {
	s := mustCompile(t, `{
		"type": "object",
		"properties": {"a_x": {"type": "number"}},
		"patternProperties": {"^a_": {"minimum": 0}}
	}`)
	// a_x matches both properties and patternProperties: both must hold.
	ok := mustParse(t, `{"a_x": 5}`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected a value satisfying both routes to pass, got %v", err)
	}
	bad := mustParse(t, `{"a_x": -5}`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected the patternProperties minimum to still apply alongside properties")
	}
}

func TestArrayTupleAndAdditionalItems(t *testing.T) {
	s := mustCompile(t, `{
		"type": "array",
		"items": [{"type": "string"}, {"type": "number"}],
		"additionalItems": false
	}`)
	ok := mustParse(t, `["a", 1]`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected matching tuple to pass, got %v", err)
	}
	tooLong := mustParse(t, `["a", 1, "extra"]`)
	defer tooLong.Release()
	if err := s.Validate(tooLong); err == nil {
		t.Fatal("expected additionalItems:false to reject an extra element")
	}
}

func TestArrayUniqueItemsStructural(t *testing.T) {
	s := mustCompile(t, `{"type": "array", "uniqueItems": true}`)
	// 1 and 1.0 are structurally equal even though lexically different.
	bad := mustParse(t, `[1, 1.0]`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected structurally-duplicate array elements to fail uniqueItems")
	}
	ok := mustParse(t, `[1, 2, 3]`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected distinct elements to satisfy uniqueItems, got %v", err)
	}
}

func TestArrayMinMaxItems(t *testing.T) {
	s := mustCompile(t, `{"type": "array", "minItems": 1, "maxItems": 2}`)
	empty := mustParse(t, `[]`)
	defer empty.Release()
	if err := s.Validate(empty); err == nil {
		t.Fatal("expected an empty array to violate minItems:1")
	}
	tooMany := mustParse(t, `[1, 2, 3]`)
	defer tooMany.Release()
	if err := s.Validate(tooMany); err == nil {
		t.Fatal("expected three elements to violate maxItems:2")
	}
}

func TestAllOf(t *testing.T) {
	s := mustCompile(t, `{"allOf": [{"type": "number"}, {"minimum": 5}]}`)
	ok := mustParse(t, `10`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected 10 to satisfy allOf, got %v", err)
	}
	bad := mustParse(t, `3`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected 3 to fail allOf's minimum:5 branch")
	}
}

func TestAnyOf(t *testing.T) {
	s := mustCompile(t, `{"anyOf": [{"type": "string"}, {"type": "number"}]}`)
	for _, doc := range []string{`"x"`, `1`} {
		v := mustParse(t, doc)
		if err := s.Validate(v); err != nil {
			t.Fatalf("expected %s to satisfy anyOf, got %v", doc, err)
		}
		v.Release()
	}
	bad := mustParse(t, `true`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected a boolean to fail anyOf[string,number]")
	}
}

func TestOneOfExactlyOneBranch(t *testing.T) {
	s := mustCompile(t, `{"oneOf": [{"multipleOf": 2}, {"multipleOf": 3}]}`)
	// 4 matches only multipleOf:2.
	ok := mustParse(t, `4`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected 4 to satisfy exactly one branch, got %v", err)
	}
	// 6 matches both branches, violating oneOf's exactly-one rule.
	bothMatch := mustParse(t, `6`)
	defer bothMatch.Release()
	if err := s.Validate(bothMatch); err == nil {
		t.Fatal("expected 6 to fail oneOf by matching both branches")
	}
	neitherMatch := mustParse(t, `5`)
	defer neitherMatch.Release()
	if err := s.Validate(neitherMatch); err == nil {
		t.Fatal("expected 5 to fail oneOf by matching neither branch")
	}
}

func TestNot(t *testing.T) {
	s := mustCompile(t, `{"not": {"type": "string"}}`)
	ok := mustParse(t, `42`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected a non-string to satisfy not:{type:string}, got %v", err)
	}
	bad := mustParse(t, `"x"`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected a string to fail not:{type:string}")
	}
}

func TestIfThenElse(t *testing.T) {
	s := mustCompile(t, `{
		"if": {"properties": {"kind": {"const": "a"}}},
		"then": {"required": ["x"]},
		"else": {"required": ["y"]}
	}`)
	matchesIf := mustParse(t, `{"kind": "a", "x": 1}`)
	defer matchesIf.Release()
	if err := s.Validate(matchesIf); err != nil {
		t.Fatalf("expected the then-branch to apply, got %v", err)
	}
	missingThen := mustParse(t, `{"kind": "a"}`)
	defer missingThen.Release()
	if err := s.Validate(missingThen); err == nil {
		t.Fatal("expected the then-branch's required:x to be enforced")
	}
	matchesElse := mustParse(t, `{"kind": "b", "y": 1}`)
	defer matchesElse.Release()
	if err := s.Validate(matchesElse); err != nil {
		t.Fatalf("expected the else-branch to apply, got %v", err)
	}
}

func TestBooleanSchemas(t *testing.T) {
	allowAll := mustCompile(t, `true`)
	v := mustParse(t, `"anything"`)
	defer v.Release()
	if err := allowAll.Validate(v); err != nil {
		t.Fatalf("expected schema true to accept anything, got %v", err)
	}

	rejectAll := mustCompile(t, `false`)
	if err := rejectAll.Validate(v); err == nil {
		t.Fatal("expected schema false to reject everything")
	}
}

func TestDefinitionsAndInternalRef(t *testing.T) {
	s := mustCompile(t, `{
		"definitions": {"pos": {"type": "number", "minimum": 0}},
		"properties": {"x": {"$ref": "#/definitions/pos"}}
	}`)
	if err := s.Resolve(nil); err != nil {
		t.Fatalf("Resolve (internal-only refs): %v", err)
	}
	if !s.FullyResolved() {
		t.Fatal("expected an internal-only $ref graph to resolve without an ExternalResolver")
	}
	ok := mustParse(t, `{"x": 5}`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected x:5 to satisfy the referenced definition, got %v", err)
	}
	bad := mustParse(t, `{"x": -5}`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected x:-5 to fail the referenced definition's minimum")
	}
}

// memoryResolver hands back a fixed document for each known URI, modeling an
// ExternalResolver over an in-process registry rather than the network.
type memoryResolver struct {
	docs map[string][]byte
}

func (m *memoryResolver) Resolve(uri string) ([]byte, error) {
	if d, ok := m.docs[uri]; ok {
		return d, nil
	}
	return nil, &notFoundError{uri}
}

type notFoundError struct{ uri string }

func (e *notFoundError) Error() string { return "no document registered for " + e.uri }

func TestExternalRefResolution(t *testing.T) {
	s := mustCompile(t, `{"properties": {"x": {"$ref": "http://example.com/other.json"}}}`)
	ext := &memoryResolver{docs: map[string][]byte{
		"http://example.com/other.json": []byte(`{"type": "string"}`),
	}}
	if err := s.Resolve(ext); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !s.FullyResolved() {
		t.Fatal("expected the external $ref to resolve")
	}

	ok := mustParse(t, `{"x": "hi"}`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected x to satisfy the externally resolved schema, got %v", err)
	}
	bad := mustParse(t, `{"x": 1}`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected x:1 to fail the externally resolved type:string")
	}
}

// TestExternalRefResolutionByFragment exercises the jsonpointer fallback in
// refValidator.resolve: "components/schemas/pos" is not a keyword parseSchema
// ever recurses into on its own (unlike "definitions"/"$defs"), so the eager
// by-path registration walk never reaches it; only evaluating the fragment
// directly against the parsed document locates it.
func TestExternalRefResolutionByFragment(t *testing.T) {
	s := mustCompile(t, `{"properties": {"x": {"$ref": "http://example.com/defs.json#/components/schemas/pos"}}}`)
	ext := &memoryResolver{docs: map[string][]byte{
		"http://example.com/defs.json": []byte(`{"components": {"schemas": {"pos": {"type": "number", "minimum": 0}}}}`),
	}}
	if err := s.Resolve(ext); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !s.FullyResolved() {
		t.Fatal("expected the fragment $ref to resolve via the jsonpointer fallback")
	}

	ok := mustParse(t, `{"x": 3}`)
	defer ok.Release()
	if err := s.Validate(ok); err != nil {
		t.Fatalf("expected x:3 to satisfy the fragment-resolved schema, got %v", err)
	}
	bad := mustParse(t, `{"x": -3}`)
	defer bad.Release()
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected x:-3 to fail the fragment-resolved schema's minimum")
	}
}

func TestUnresolvedRefFailsValidation(t *testing.T) {
	s := mustCompile(t, `{"properties": {"x": {"$ref": "#/definitions/missing"}}}`)
	// Deliberately skip Resolve: the $ref stays unresolved.
	v := mustParse(t, `{"x": 1}`)
	defer v.Release()
	if err := s.Validate(v); err == nil {
		t.Fatal("expected validating through an unresolved $ref to fail")
	}
}

func TestValidateValueAcceptsMissingDefaultedProperty(t *testing.T) {
	s := mustCompile(t, `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"role": {"type": "string", "default": "member"}
		}
	}`)
	v := mustParse(t, `{"name": "a"}`)
	defer v.Release()
	if err := s.Validate(v); err != nil {
		t.Fatalf("expected object missing only a defaulted property to pass, got %v", err)
	}
}

func TestCompileRejectsNonObjectNonBooleanSchema(t *testing.T) {
	_, err := schema.CompileBytes([]byte(`"not a schema"`))
	if err == nil {
		t.Fatal("expected a bare string to be rejected as a schema document")
	}
}

func TestSchemaRelease(t *testing.T) {
	s := mustCompile(t, `{
		"enum": [1, "a", {"x": 1}],
		"const": 2,
		"properties": {"role": {"type": "string", "default": "member"}}
	}`)
	s.Release()
	// A second call must be a no-op rather than double-releasing s.doc or
	// any retained enum/const/default value.
	s.Release()
}

func TestCompileReaderAndFromValue(t *testing.T) {
	s1, err := schema.CompileReader(strings.NewReader(`{"type": "number"}`))
	if err != nil {
		t.Fatalf("CompileReader: %v", err)
	}
	v := mustParse(t, `5`)
	defer v.Release()
	if err := s1.Validate(v); err != nil {
		t.Fatalf("expected CompileReader's schema to accept a number, got %v", err)
	}

	doc := mustParse(t, `{"type": "number"}`)
	defer doc.Release()
	s2, err := schema.FromValue(doc)
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	if err := s2.Validate(v); err != nil {
		t.Fatalf("expected FromValue's schema to accept a number, got %v", err)
	}
}
