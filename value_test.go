package jsondom

import "testing"

func TestSingletonRefcountInfinite(t *testing.T) {
	vals := []*Value{Null(), BoolOf(true), BoolOf(false), Invalid(), StringOf(nil)}
	for _, v := range vals {
		if v.RefCount() != refcountInfinite {
			t.Errorf("expected singleton refcount, got %d for kind %v", v.RefCount(), v.Kind())
		}
		v.Retain()
		v.Release()
		if v.RefCount() != refcountInfinite {
			t.Errorf("retain/release mutated a singleton's refcount: %d", v.RefCount())
		}
	}
}

func TestRefcountLifecycle(t *testing.T) {
	v := IntOf(42)
	if v.RefCount() != 1 {
		t.Fatalf("expected refcount 1, got %d", v.RefCount())
	}
	v.Retain()
	if v.RefCount() != 2 {
		t.Fatalf("expected refcount 2 after Retain, got %d", v.RefCount())
	}
	v.Release()
	if v.RefCount() != 1 {
		t.Fatalf("expected refcount 1 after Release, got %d", v.RefCount())
	}
	v.Release()
}

func TestObjectPutConsumesOnFailure(t *testing.T) {
	arr := ArrayNew(0)
	key := StringOf([]byte("x"))
	val := IntOf(1)
	err := arr.ObjectPut(key, val)
	if err == nil {
		t.Fatal("expected ObjectPut on a non-object to fail")
	}
	arr.Release()
}

func TestArrayAppendAndGet(t *testing.T) {
	a := ArrayNew(0)
	for i := 0; i < 20; i++ {
		if err := a.ArrayAppend(IntOf(int64(i))); err != nil {
			t.Fatalf("ArrayAppend(%d): %v", i, err)
		}
	}
	if a.ArrayLen() != 20 {
		t.Fatalf("expected length 20, got %d", a.ArrayLen())
	}
	for i := 0; i < 20; i++ {
		n, ok := a.ArrayGet(i).Number()
		if !ok {
			t.Fatalf("element %d is not a number", i)
		}
		got, _ := n.GetInt64()
		if got != int64(i) {
			t.Fatalf("element %d: expected %d, got %d", i, i, got)
		}
	}
	a.Release()
}

// TestArraySmallBufferBoundary exercises the inline/overflow transition at
// sizes 0, 1, smallBufferSize, smallBufferSize+1, and 2*smallBufferSize
// (spec §8 Boundaries).
func TestArraySmallBufferBoundary(t *testing.T) {
	for _, n := range []int{0, 1, smallBufferSize, smallBufferSize + 1, 2 * smallBufferSize} {
		a := ArrayNew(0)
		for i := 0; i < n; i++ {
			if err := a.ArrayAppend(IntOf(int64(i))); err != nil {
				t.Fatalf("n=%d: ArrayAppend(%d): %v", n, i, err)
			}
		}
		if a.ArrayLen() != n {
			t.Fatalf("n=%d: expected length %d, got %d", n, n, a.ArrayLen())
		}
		a.Release()
	}
}

func TestObjectEdgeCaseKeys(t *testing.T) {
	o := ObjectNew(0)
	keys := []string{"a/b", "a~b", "with\x00null", ""}
	for _, k := range keys {
		if k == "" {
			// Empty keys are rejected (spec §3.5 "Keys must be non-empty
			// strings"); ObjectPut must still consume both arguments.
			if err := o.ObjectPut(StringOf([]byte(k)), IntOf(1)); err == nil {
				t.Fatalf("expected empty key to be rejected")
			}
			continue
		}
		if err := o.ObjectPut(StringOf([]byte(k)), IntOf(1)); err != nil {
			t.Fatalf("key %q: %v", k, err)
		}
		if !o.ObjectHas(k) {
			t.Fatalf("key %q: expected ObjectHas true", k)
		}
	}
	o.Release()
}

func TestCycleRejected(t *testing.T) {
	a := ArrayNew(0)
	if err := a.ArrayAppend(a.Retain()); err == nil {
		t.Fatal("expected self-referential append to be rejected")
	} else if e, ok := err.(*Error); !ok || e.Code != ErrCycleDetected {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
	a.Release()
}

func TestCycleRejectedNested(t *testing.T) {
	outer := ArrayNew(0)
	inner := ArrayNew(0)
	if err := outer.ArrayAppend(inner.Retain()); err != nil {
		t.Fatalf("ArrayAppend: %v", err)
	}
	if err := inner.ArrayAppend(outer.Retain()); err == nil {
		t.Fatal("expected nested cycle to be rejected")
	}
	outer.Release()
}

func TestDuplicateIsIndependent(t *testing.T) {
	orig := ObjectNew(0)
	inner := ArrayNew(0)
	_ = inner.ArrayAppend(IntOf(1))
	_ = orig.ObjectSet("items", inner)
	inner.Release()

	dup := orig.Duplicate()
	dupItems := dup.ObjectGet("items")
	_ = dupItems.ArrayAppend(IntOf(2))

	if orig.ObjectGet("items").ArrayLen() != 1 {
		t.Fatalf("mutating the duplicate's subtree observably changed the original")
	}
	if dup.ObjectGet("items").ArrayLen() != 2 {
		t.Fatalf("expected duplicate's own subtree to reflect its mutation")
	}
	orig.Release()
	dup.Release()
}

func TestEqualStructuralNotLexical(t *testing.T) {
	a := RawNumberOf("1")
	b := IntOf(1)
	if !Equal(a, b) {
		t.Fatal("expected raw \"1\" to structurally equal int64 1")
	}

	o1 := ObjectNew(0)
	_ = o1.ObjectPut(StringOf([]byte("a")), IntOf(1))
	_ = o1.ObjectPut(StringOf([]byte("b")), IntOf(2))
	o2 := ObjectNew(0)
	_ = o2.ObjectPut(StringOf([]byte("b")), IntOf(2))
	_ = o2.ObjectPut(StringOf([]byte("a")), IntOf(1))
	if !Equal(o1, o2) {
		t.Fatal("expected objects with reordered keys to compare equal")
	}

	a.Release()
	b.Release()
	o1.Release()
	o2.Release()
}

func TestCompareTotalOrder(t *testing.T) {
	n1, n2 := IntOf(1), IntOf(2)
	if Compare(n1, n2) >= 0 {
		t.Fatal("expected 1 < 2")
	}
	if Compare(n2, n1) <= 0 {
		t.Fatal("expected 2 > 1")
	}
	if Compare(n1, IntOf(1)) != 0 {
		t.Fatal("expected 1 == 1")
	}
	n1.Release()
	n2.Release()
}

func TestNumberBoundaries(t *testing.T) {
	cases := []int64{0, 1, -1, 1 << 62, -(1 << 62), 1<<63 - 1, -(1 << 63)}
	for _, c := range cases {
		v := IntOf(c)
		n, _ := v.Number()
		got, res := n.GetInt64()
		if res&ConvOK == 0 || got != c {
			t.Errorf("IntOf(%d): GetInt64 returned (%d, %v)", c, got, res)
		}
		v.Release()
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	doc := ObjectNew(0)
	arr := ArrayNew(0)
	_ = arr.ArrayAppend(IntOf(1))
	_ = arr.ArrayAppend(StringOf([]byte("hi\nthere")))
	_ = arr.ArrayAppend(Null())
	_ = doc.ObjectSet("nums", arr)
	arr.Release()

	out, err := ToBytes(doc, GenerateOptions{Mode: Compact})
	if err != nil {
		t.Fatalf("ToBytes: %v", err)
	}
	reparsed, err := Parse(out, ParseOptions{})
	if err != nil {
		t.Fatalf("Parse(generated bytes): %v", err)
	}
	if !Equal(doc, reparsed) {
		t.Fatalf("round trip changed the value: %s", out)
	}
	doc.Release()
	reparsed.Release()
}

func TestPrettyAndCompactEquivalent(t *testing.T) {
	doc := ObjectNew(0)
	_ = doc.ObjectPut(StringOf([]byte("a")), IntOf(1))
	_ = doc.ObjectPut(StringOf([]byte("b")), StringOf([]byte("x")))

	compact, err := ToBytes(doc, GenerateOptions{Mode: Compact})
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	pretty, err := ToBytes(doc, GenerateOptions{Mode: Pretty})
	if err != nil {
		t.Fatalf("pretty: %v", err)
	}

	vc, err := Parse(compact, ParseOptions{})
	if err != nil {
		t.Fatalf("parse compact: %v", err)
	}
	vp, err := Parse(pretty, ParseOptions{})
	if err != nil {
		t.Fatalf("parse pretty: %v", err)
	}
	if !Equal(vc, vp) {
		t.Fatal("compact and pretty output parsed to different values")
	}
	doc.Release()
	vc.Release()
	vp.Release()
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"a": }`), ParseOptions{})
	if err == nil {
		t.Fatal("expected malformed JSON to fail to parse")
	}
}
