package jsonpointer_test

import (
	"testing"

	"github.com/kfirtal/jsondom"
	"github.com/kfirtal/jsondom/schema/jsonpointer"
)

func mustParse(t *testing.T, doc string) *jsondom.Value {
	t.Helper()
	v, err := jsondom.Parse([]byte(doc), jsondom.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return v
}

// The classic RFC 6901 §5 example document.
const rfcExample = `{
	"foo": ["bar", "baz"],
	"": 0,
	"a/b": 1,
	"c%d": 2,
	"e^f": 3,
	"g|h": 4,
	"i\\j": 5,
	"k\"l": 6,
	" ": 7,
	"m~n": 8
}`

func TestEvaluateWholeDocument(t *testing.T) {
	doc := mustParse(t, rfcExample)
	defer doc.Release()

	got, err := jsonpointer.EvaluateString(doc, "")
	if err != nil {
		t.Fatalf("EvaluateString(\"\"): %v", err)
	}
	if got != doc {
		t.Fatal("expected the empty pointer to address the document root")
	}
}

func TestEvaluateArrayIndex(t *testing.T) {
	doc := mustParse(t, rfcExample)
	defer doc.Release()

	got, err := jsonpointer.EvaluateString(doc, "/foo/0")
	if err != nil {
		t.Fatalf("EvaluateString(/foo/0): %v", err)
	}
	s, ok := got.String()
	if !ok || s != "bar" {
		t.Fatalf("expected /foo/0 to address \"bar\", got %q (ok=%v)", s, ok)
	}
}

func TestEvaluateTildeEscaping(t *testing.T) {
	doc := mustParse(t, rfcExample)
	defer doc.Release()

	// "~1" -> "/", "~0" -> "~" per RFC 6901 §3.
	got, err := jsonpointer.EvaluateString(doc, "/a~1b")
	if err != nil {
		t.Fatalf("EvaluateString(/a~1b): %v", err)
	}
	n, ok := got.Number()
	if !ok {
		t.Fatal("expected /a~1b to address a number")
	}
	i, _ := n.GetInt64()
	if i != 1 {
		t.Fatalf("expected /a~1b to address 1, got %d", i)
	}

	got, err = jsonpointer.EvaluateString(doc, "/m~0n")
	if err != nil {
		t.Fatalf("EvaluateString(/m~0n): %v", err)
	}
	n, ok = got.Number()
	if !ok {
		t.Fatal("expected /m~0n to address a number")
	}
	i, _ = n.GetInt64()
	if i != 8 {
		t.Fatalf("expected /m~0n to address 8, got %d", i)
	}
}

func TestEvaluateEmptyStringKey(t *testing.T) {
	doc := mustParse(t, rfcExample)
	defer doc.Release()

	// Object keys must be non-empty, so the DOM drops the example's ""
	// entry while parsing and "/" has nothing to address.
	if _, err := jsonpointer.EvaluateString(doc, "/"); err == nil {
		t.Fatal("expected EvaluateString(/) to fail: the empty-string key is not stored")
	}
}

func TestEvaluateMissingKey(t *testing.T) {
	doc := mustParse(t, rfcExample)
	defer doc.Release()

	if _, err := jsonpointer.EvaluateString(doc, "/nope"); err == nil {
		t.Fatal("expected a missing object key to fail")
	}
}

func TestEvaluateArrayIndexOutOfRange(t *testing.T) {
	doc := mustParse(t, rfcExample)
	defer doc.Release()

	if _, err := jsonpointer.EvaluateString(doc, "/foo/9"); err == nil {
		t.Fatal("expected an out-of-range array index to fail")
	}
}

func TestEvaluateTokenThroughScalar(t *testing.T) {
	doc := mustParse(t, rfcExample)
	defer doc.Release()

	if _, err := jsonpointer.EvaluateString(doc, "/a~1b/x"); err == nil {
		t.Fatal("expected a pointer token applied past a scalar to fail")
	}
}

func TestParseRejectsMissingLeadingSlash(t *testing.T) {
	if _, err := jsonpointer.Parse("foo/bar"); err == nil {
		t.Fatal("expected a pointer not starting with '/' to be a syntax error")
	}
}

func TestPointerStringRoundTrips(t *testing.T) {
	p, err := jsonpointer.Parse("/a~1b/m~0n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := p.String(), "/a~1b/m~0n"; got != want {
		t.Fatalf("String() round-trip mismatch: got %q, want %q", got, want)
	}
}
