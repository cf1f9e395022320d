package pulp

import "testing"

func TestDocumentFieldDistinguishesNullFromAbsent(t *testing.T) {
	doc := NewDocument(map[string]any{"present": nil})

	f, ok := doc.Field("present")
	if !ok {
		t.Fatalf("present-with-null key should report ok")
	}
	if !f.IsNull() {
		t.Fatalf("expected null document")
	}

	if _, ok := doc.Field("absent"); ok {
		t.Fatalf("absent key should not report ok")
	}
}

func TestDocumentFieldOnNonObject(t *testing.T) {
	doc := NewDocument([]any{"a", "b"})

	if _, ok := doc.Field("anything"); ok {
		t.Fatalf("field lookup on an array should fail")
	}
	if _, ok := doc.Object(); ok {
		t.Fatalf("array is not an object")
	}
	arr, ok := doc.Array()
	if !ok || len(arr) != 2 {
		t.Fatalf("Array() = %#v, ok=%v", arr, ok)
	}
}

func TestDocumentStringSliceFieldSkipsNonStrings(t *testing.T) {
	doc := NewDocument(map[string]any{
		"resources": []any{"/pulp/api/v3/repo/1/", 42, "/pulp/api/v3/repo/2/"},
	})

	got, ok := doc.StringSliceField("resources")
	if !ok || len(got) != 2 {
		t.Fatalf("StringSliceField = %#v, ok=%v", got, ok)
	}
}

func TestDecodeDocumentInvalid(t *testing.T) {
	if _, err := DecodeDocument([]byte("{nope")); err == nil {
		t.Fatalf("expected decode error")
	}
}
